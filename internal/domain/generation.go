package domain

import (
	"context"
	"errors"
	"fmt"
)

// SamplingConfig carries the generation parameters for one request.
type SamplingConfig struct {
	Temperature float32 `json:"temperature"`
}

// GenerationRequest is a single prompt sent to the text generator.
// SystemPrompt is optional.
type GenerationRequest struct {
	SystemPrompt string         `json:"system_prompt,omitempty"`
	UserPrompt   string         `json:"user_prompt"`
	Sampling     SamplingConfig `json:"sampling"`
}

// Generator turns a prompt into one complete piece of text.
// Implementations never retry; failures are *GenerationError.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

type GenerationErrorKind string

const (
	GenerationAuth      GenerationErrorKind = "auth"
	GenerationRateLimit GenerationErrorKind = "rate_limit"
	GenerationNetwork   GenerationErrorKind = "network"
	GenerationMalformed GenerationErrorKind = "malformed"
)

// GenerationError is returned by every Generator on failure.
type GenerationError struct {
	Kind       GenerationErrorKind
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed (%s, status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// AsGenerationError reports whether err wraps a *GenerationError.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}
