package llm

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/elders/internal/domain"
)

const defaultMockResponse = "Mock response"

// MockClient is a configurable generator for testing and offline play.
// Set GenerateFunc to script per-request behavior; otherwise Response and
// Error are returned for every call. Safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	Response     string
	Error        error
	GenerateFunc func(req domain.GenerationRequest) (string, error)

	// Call tracking for assertions
	Calls []domain.GenerationRequest
}

func NewMockClient() *MockClient {
	return &MockClient{Response: defaultMockResponse}
}

func (c *MockClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, req)
	fn, resp, err := c.GenerateFunc, c.Response, c.Error
	c.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

// CallCount returns how many requests have been made.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Response = defaultMockResponse
	c.Error = nil
	c.GenerateFunc = nil
	c.Calls = nil
}
