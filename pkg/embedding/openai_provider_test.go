package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingServer fails the first failures requests with failStatus,
// then serves a valid vector of the given width.
func fakeEmbeddingServer(t *testing.T, failures int, failStatus, dims int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		n := calls.Add(1)
		if int(n) <= failures {
			http.Error(w, `{"error":{"message":"boom"}}`, failStatus)
			return
		}
		vec := make([]float64, dims)
		for i := range vec {
			vec[i] = 0.1
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vec},
			},
			"model": "text-embedding-3-small",
			"usage": map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestProvider(url string, dims int) *OpenAIProvider {
	return NewOpenAIProvider("dummy", WithBaseURL(url), WithDimensions(dims))
}

func TestEmbed_Success(t *testing.T) {
	srv, calls := fakeEmbeddingServer(t, 0, 0, 4)
	p := newTestProvider(srv.URL, 4)

	vec, err := p.Embed(context.Background(), "csp core payout")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbed_RetriesTransientThenSucceeds(t *testing.T) {
	srv, calls := fakeEmbeddingServer(t, 2, http.StatusServiceUnavailable, 4)
	p := newTestProvider(srv.URL, 4)

	vec, err := p.Embed(context.Background(), "workshop eligibility")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbed_ExhaustsAttempts(t *testing.T) {
	srv, calls := fakeEmbeddingServer(t, 100, http.StatusTooManyRequests, 4)
	p := newTestProvider(srv.URL, 4)

	_, err := p.Embed(context.Background(), "workshop eligibility")
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestEmbed_NonTransientFailsFast(t *testing.T) {
	srv, calls := fakeEmbeddingServer(t, 100, http.StatusBadRequest, 4)
	p := newTestProvider(srv.URL, 4)

	_, err := p.Embed(context.Background(), "workshop eligibility")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	srv, calls := fakeEmbeddingServer(t, 0, 0, 8)
	p := newTestProvider(srv.URL, 4)

	_, err := p.Embed(context.Background(), "workshop eligibility")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
	assert.Equal(t, int32(1), calls.Load(), "misconfiguration must not be retried")
}

func TestEmbed_EmptyText(t *testing.T) {
	p := newTestProvider("http://127.0.0.1:1", 4)
	_, err := p.Embed(context.Background(), "")
	assert.Error(t, err)
}
