package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/elders/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

type OpenAIClient struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string, opts Options) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		url:        openAIChatURL,
		model:      opts.modelOr(chatModel),
		httpClient: opts.httpClient(),
	}
}

// chat types shared by OpenAI-compatible APIs
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func chatMessages(req domain.GenerationRequest) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	return append(messages, chatMessage{Role: "user", Content: req.UserPrompt})
}

// completeChat runs one chat completion against an OpenAI-compatible endpoint.
func completeChat(ctx context.Context, client *http.Client, provider, url, apiKey, model string, req domain.GenerationRequest) (string, error) {
	var result chatResponse
	err := postJSON(ctx, client, provider, url,
		map[string]string{"Authorization": "Bearer " + apiKey},
		chatRequest{
			Model:       model,
			Messages:    chatMessages(req),
			Temperature: req.Sampling.Temperature,
		},
		&result,
	)
	if err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", malformedError(provider, fmt.Errorf("chat API error: %s", result.Error.Message))
	}

	if len(result.Choices) == 0 {
		return "", malformedError(provider, errNoContent)
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", malformedError(provider, errNoContent)
	}
	return text, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	return completeChat(ctx, c.httpClient, ProviderOpenAI, c.url, c.apiKey, c.model, req)
}
