package llm

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

func fakeChatServer(t *testing.T, failures int, failStatus int, reply string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		n := calls.Add(1)
		if int(n) <= failures {
			http.Error(w, `{"error":{"message":"boom"}}`, failStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": reply},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestChat_Success(t *testing.T) {
	srv, calls := fakeChatServer(t, 0, 0, "ANSWER: The payout is 4% of core billed revenue.")
	p := NewOpenAIProvider("dummy", "gpt-4o-mini", WithBaseURL(srv.URL))

	out, err := p.Chat(context.Background(), []Message{
		{Role: "system", Content: "You answer partner incentive questions."},
		{Role: "user", Content: "what is the csp core payout?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ANSWER: The payout is 4% of core billed revenue.", out)
	assert.Equal(t, int32(1), calls.Load())
}

func TestChat_RetriesThenSucceeds(t *testing.T) {
	srv, calls := fakeChatServer(t, 2, http.StatusInternalServerError, "ok")
	p := NewOpenAIProvider("dummy", "gpt-4o-mini", WithBaseURL(srv.URL))

	out, err := p.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestChat_Exhausted(t *testing.T) {
	srv, calls := fakeChatServer(t, 100, http.StatusServiceUnavailable, "never")
	p := NewOpenAIProvider("dummy", "gpt-4o-mini", WithBaseURL(srv.URL))

	_, err := p.Generate(context.Background(), "hi")
	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestChat_NonTransientFailsFast(t *testing.T) {
	srv, calls := fakeChatServer(t, 100, http.StatusUnauthorized, "never")
	p := NewOpenAIProvider("dummy", "gpt-4o-mini", WithBaseURL(srv.URL))

	_, err := p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "auth errors must not be retried")
}
