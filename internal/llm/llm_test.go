package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRequest = domain.GenerationRequest{
	SystemPrompt: "You are the Ifá Priest.",
	UserPrompt:   "User's Scenario: change careers",
	Sampling:     domain.SamplingConfig{Temperature: 0.7},
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Make an Ebo of kola nuts.  "}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", Options{Model: "gpt-test"})
	c.url = srv.URL

	text, err := c.Generate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Make an Ebo of kola nuts.", text)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, float32(0.7), got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, testRequest.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAIClient_NoSystemPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", Options{})
	c.url = srv.URL

	_, err := c.Generate(context.Background(), domain.GenerationRequest{UserPrompt: "critique"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, chatModel, got.Model)
}

func TestCerebrasClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Consult the Umunna."}}]}`))
	}))
	defer srv.Close()

	c := NewCerebrasClient("key", Options{})
	c.url = srv.URL

	text, err := c.Generate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Consult the Umunna.", text)
}

func TestAnthropicClient_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Your Orí "},{"type":"text","text":"is strong."}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("key", Options{})
	c.url = srv.URL

	text, err := c.Generate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Your Orí is strong.", text)
	assert.Equal(t, testRequest.SystemPrompt, got.System)
	assert.Equal(t, float32(0.7), got.Temperature)
	assert.Equal(t, anthropicMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, testRequest.UserPrompt, got.Messages[0].Content)
}

func TestGenerate_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.GenerationErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, domain.GenerationAuth},
		{"forbidden", http.StatusForbidden, `{}`, domain.GenerationAuth},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.GenerationRateLimit},
		{"server error", http.StatusBadGateway, `{}`, domain.GenerationNetwork},
		{"bad request", http.StatusBadRequest, `{}`, domain.GenerationMalformed},
		{"invalid json", http.StatusOK, `not json`, domain.GenerationMalformed},
		{"no choices", http.StatusOK, `{"choices":[]}`, domain.GenerationMalformed},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, domain.GenerationMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOpenAIClient("key", Options{})
			c.url = srv.URL

			_, err := c.Generate(context.Background(), testRequest)
			genErr, ok := domain.AsGenerationError(err)
			require.True(t, ok, "expected GenerationError, got %v", err)
			assert.Equal(t, tt.want, genErr.Kind)
			assert.Equal(t, ProviderOpenAI, genErr.Provider)
		})
	}
}

func TestGenerate_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewAnthropicClient("key", Options{Timeout: 20 * time.Millisecond})
	c.url = srv.URL

	_, err := c.Generate(context.Background(), testRequest)
	genErr, ok := domain.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.GenerationNetwork, genErr.Kind)
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, domain.GenerationAuth, kindForStatus(401))
	assert.Equal(t, domain.GenerationRateLimit, kindForStatus(429))
	assert.Equal(t, domain.GenerationNetwork, kindForStatus(503))
	assert.Equal(t, domain.GenerationMalformed, kindForStatus(404))
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, ProviderOpenAI, "", Options{})
	assert.Error(t, err)

	_, err = NewClient(ctx, ProviderGemini, "", Options{})
	assert.Error(t, err)

	_, err = NewClient(ctx, "oracle", "key", Options{})
	assert.Error(t, err)

	g, err := NewClient(ctx, ProviderMock, "", Options{})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, g)

	g, err = NewClient(ctx, ProviderCerebras, "key", Options{})
	require.NoError(t, err)
	assert.IsType(t, &CerebrasClient{}, g)
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	text, err := m.Generate(ctx, testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Mock response", text)

	m.Error = errors.New("boom")
	_, err = m.Generate(ctx, testRequest)
	assert.EqualError(t, err, "boom")

	m.GenerateFunc = func(req domain.GenerationRequest) (string, error) {
		return "scripted: " + req.UserPrompt, nil
	}
	text, err = m.Generate(ctx, testRequest)
	require.NoError(t, err)
	assert.Equal(t, "scripted: "+testRequest.UserPrompt, text)
	assert.Equal(t, 3, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	text, err = m.Generate(ctx, testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Mock response", text)
}
