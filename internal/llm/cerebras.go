package llm

import (
	"context"
	"net/http"

	"github.com/Harshitk-cp/elders/internal/domain"
)

const (
	cerebrasAPIURL = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel  = "llama-3.3-70b"
)

// CerebrasClient talks to the OpenAI-compatible Cerebras inference API.
type CerebrasClient struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

func NewCerebrasClient(apiKey string, opts Options) *CerebrasClient {
	return &CerebrasClient{
		apiKey:     apiKey,
		url:        cerebrasAPIURL,
		model:      opts.modelOr(cerebrasModel),
		httpClient: opts.httpClient(),
	}
}

func (c *CerebrasClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	return completeChat(ctx, c.httpClient, ProviderCerebras, c.url, c.apiKey, c.model, req)
}
