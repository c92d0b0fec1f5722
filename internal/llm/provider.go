package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Harshitk-cp/elders/internal/domain"
)

// Provider constants
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

// Options tune a provider client. Zero values pick provider defaults.
type Options struct {
	Model   string
	Timeout time.Duration
}

func (o Options) modelOr(def string) string {
	if o.Model == "" {
		return def
	}
	return o.Model
}

func (o Options) httpClient() *http.Client {
	return &http.Client{Timeout: o.Timeout}
}

// NewClient creates a generator based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(ctx context.Context, provider, apiKey string, opts Options) (domain.Generator, error) {
	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(ctx, apiKey, opts)

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey, opts), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey, opts), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasClient(apiKey, opts), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: gemini, openai, anthropic, cerebras, mock)", provider)
	}
}
