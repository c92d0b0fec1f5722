package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/elders/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 1024
)

type AnthropicClient struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string, opts Options) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		url:        anthropicMessagesURL,
		model:      opts.modelOr(anthropicModel),
		httpClient: opts.httpClient(),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	var result anthropicResponse
	err := postJSON(ctx, c.httpClient, ProviderAnthropic, c.url,
		map[string]string{
			"x-api-key":         c.apiKey,
			"anthropic-version": anthropicVersion,
		},
		anthropicRequest{
			Model:       c.model,
			MaxTokens:   anthropicMaxTokens,
			System:      req.SystemPrompt,
			Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
			Temperature: req.Sampling.Temperature,
		},
		&result,
	)
	if err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", malformedError(ProviderAnthropic, fmt.Errorf("anthropic API error: %s", result.Error.Message))
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", malformedError(ProviderAnthropic, errNoContent)
	}
	return text, nil
}
