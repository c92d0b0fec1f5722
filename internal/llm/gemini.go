package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.5-flash"

// GeminiClient generates text through the Google generative AI SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey string, opts Options) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{
		client:  client,
		model:   opts.modelOr(geminiModel),
		timeout: opts.Timeout,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// GenerativeModel carries per-request settings, so each call gets its own.
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(req.Sampling.Temperature)
	if req.SystemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", malformedError(ProviderGemini, errNoContent)
	}
	return text, nil
}

// Close releases the underlying SDK connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func classifyGeminiError(err error) *domain.GenerationError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &domain.GenerationError{
			Kind:       kindForStatus(apiErr.Code),
			Provider:   ProviderGemini,
			StatusCode: apiErr.Code,
			Err:        err,
		}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return malformedError(ProviderGemini, err)
	}

	return networkError(ProviderGemini, err)
}
