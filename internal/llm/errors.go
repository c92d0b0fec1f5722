package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Harshitk-cp/elders/internal/domain"
)

// kindForStatus maps an HTTP status from a provider to an error kind.
func kindForStatus(status int) domain.GenerationErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.GenerationAuth
	case status == http.StatusTooManyRequests:
		return domain.GenerationRateLimit
	case status >= 500:
		return domain.GenerationNetwork
	default:
		return domain.GenerationMalformed
	}
}

func statusError(provider string, status int, body []byte) *domain.GenerationError {
	return &domain.GenerationError{
		Kind:       kindForStatus(status),
		Provider:   provider,
		StatusCode: status,
		Err:        fmt.Errorf("API returned status %d: %s", status, truncate(string(body), 512)),
	}
}

func networkError(provider string, err error) *domain.GenerationError {
	return &domain.GenerationError{Kind: domain.GenerationNetwork, Provider: provider, Err: err}
}

func malformedError(provider string, err error) *domain.GenerationError {
	return &domain.GenerationError{Kind: domain.GenerationMalformed, Provider: provider, Err: err}
}

// postJSON sends body to url and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return malformedError(provider, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return malformedError(provider, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return networkError(provider, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(provider, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(provider, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return malformedError(provider, fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

var errNoContent = errors.New("API returned no content")

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
