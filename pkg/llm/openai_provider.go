package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	defaultTemperature = 0.0

	maxAttempts     = 3
	initialInterval = 500 * time.Millisecond
	maxInterval     = 4 * time.Second
)

// ErrExhausted wraps failures that survived every retry attempt.
var ErrExhausted = errors.New("llm: attempts exhausted")

// OpenAIProvider implements LLMProvider against the OpenAI chat-completions
// API. Transient failures (connectivity, 429, 5xx) are retried with
// exponential backoff and jitter; client-internal retries are disabled so
// the policy here owns the attempt count.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

var _ LLMProvider = (*OpenAIProvider)(nil)

type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = baseURL }
}

// WithRequestTimeout bounds each individual attempt.
func WithRequestTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) { c.timeout = d }
}

func NewOpenAIProvider(apiKey, model string, opts ...OpenAIOption) *OpenAIProvider {
	cfg := &openAIConfig{}
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
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &OpenAIProvider{client: openai.NewClient(clientOpts...), model: model}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	opts := &Options{Temperature: defaultTemperature, Model: p.model}
	for _, opt := range options {
		opt(opts)
	}

	request := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(opts.Model),
		Messages:    convertMessages(history),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		request.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	operation := func() (string, error) {
		completion, err := p.client.Chat.Completions.New(ctx, request)
		if err != nil {
			if !isTransient(err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if len(completion.Choices) == 0 {
			return "", backoff.Permanent(errors.New("empty completion"))
		}
		return completion.Choices[0].Message.Content, nil
	}

	text, err := backoff.RetryWithData(operation, newPolicy(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExhausted, err)
	}
	return text, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

func convertMessages(history []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(history))
	for i, msg := range history {
		switch msg.Role {
		case "system":
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		case "assistant":
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		default:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		}
	}
	return result
}

func newPolicy(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	)
	return backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx)
}

func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
