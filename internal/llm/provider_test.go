package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &APIError{Provider: "gemini", StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")}, true},
		{"wrapped 429", fmt.Errorf("generate: %w", &APIError{Provider: "openai", StatusCode: 429, Err: errors.New("x")}), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"quota text", errors.New("You exceeded your current quota"), true},
		{"too many requests text", errors.New("429 Too Many Requests"), true},
		{"429 inside request id", errors.New("upstream failed, request id req_84291a"), false},
		{"429 inside address", &APIError{Provider: "ollama", Err: errors.New("dial tcp 127.0.0.1:54290: connection refused")}, false},
		{"server error", &APIError{Provider: "openai", StatusCode: 500, Err: errors.New("boom")}, false},
		{"transport", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuotaError(tt.err))
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Provider: "anthropic", StatusCode: 529, Err: errors.New("overloaded")}
	assert.Equal(t, "anthropic API error (status 529): overloaded", err.Error())
	assert.ErrorContains(t, &APIError{Provider: "ollama", Err: errors.New("refused")}, "ollama API error: refused")

	inner := errors.New("inner")
	assert.ErrorIs(t, &APIError{Provider: "gemini", Err: inner}, inner)
}

func TestCountTokens(t *testing.T) {
	n, _ := CountTokens("Generate 10 technical interview questions for a Software Development professional.")
	assert.Greater(t, n, 5)

	n, _ = CountTokens("")
	assert.Equal(t, 0, n)
}
