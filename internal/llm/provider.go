package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Provider is the common interface for all text-generation backends
type Provider interface {
	// Generate sends a prompt and returns the complete response text
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider name (gemini, openai, anthropic, ollama)
	Name() string
}

// Request represents a request to an LLM
type Request struct {
	Model         string
	SystemPrompt  string
	Prompt        string
	MaxTokens     int
	Temperature   float64
	ContextWindow int  // Max context window in tokens (ollama only)
	JSON          bool // Ask the backend for a JSON response where supported
}

// Response represents a response from an LLM
type Response struct {
	Text         string
	TokensInput  int
	TokensOutput int
	Model        string
	Provider     string
}

// APIError is a provider error normalised to an HTTP-like status code.
// StatusCode is zero when the backend gave none (transport failures).
type APIError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// quotaMarkers are lower-case message fragments backends use for
// exhausted quotas. Bare status numbers are left to APIError.StatusCode.
var quotaMarkers = []string{"quota", "resource_exhausted", "rate limit", "rate_limit", "too many requests"}

// IsQuotaError reports whether err signals a quota or rate-limit refusal
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
