package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultModel      = "text-embedding-3-small"
	DefaultDimensions = 1536

	maxAttempts     = 3
	initialInterval = 500 * time.Millisecond
	maxInterval     = 4 * time.Second
)

// OpenAIProvider calls the OpenAI embeddings API with a bounded retry:
// three attempts, exponential backoff with jitter. Client-internal retries
// are disabled so the backoff policy owns the attempt count.
type OpenAIProvider struct {
	client     openai.Client
	model      string
	dimensions int
}

var _ Provider = (*OpenAIProvider)(nil)

type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	model      string
	dimensions int
	baseURL    string
}

func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.model = model }
}

func WithDimensions(dimensions int) OpenAIOption {
	return func(c *openAIConfig) { c.dimensions = dimensions }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = baseURL }
}

func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	cfg := &openAIConfig{model: DefaultModel, dimensions: DefaultDimensions}
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAIProvider{
		client:     openai.NewClient(clientOpts...),
		model:      cfg.model,
		dimensions: cfg.dimensions,
	}
}

func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("embedding: text cannot be empty")
	}

	request := openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: openai.Int(int64(p.dimensions)),
	}

	operation := func() ([]float32, error) {
		response, err := p.client.Embeddings.New(ctx, request)
		if err != nil {
			if !isTransient(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if len(response.Data) == 0 {
			return nil, backoff.Permanent(errors.New("embedding: empty response"))
		}
		raw := response.Data[0].Embedding
		if len(raw) != p.dimensions {
			// Wrong width means a model/dimension misconfiguration, not a
			// transient fault.
			return nil, backoff.Permanent(fmt.Errorf(
				"embedding: got %d dimensions, configured %d", len(raw), p.dimensions))
		}
		vector := make([]float32, len(raw))
		for i, v := range raw {
			vector[i] = float32(v)
		}
		return vector, nil
	}

	vector, err := backoff.RetryWithData(operation, newPolicy(ctx))
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return vector, nil
}

func newPolicy(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	)
	return backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx)
}

// isTransient reports whether the failure is worth another attempt:
// connectivity errors, rate limits, and server-side 5xx.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// No structured API error means the request never completed.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
