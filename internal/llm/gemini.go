package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Generate sends a non-streaming request to Gemini
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, &APIError{Provider: p.Name(), StatusCode: geminiStatus(err), Err: err}
	}

	text := resp.Text()
	if text == "" {
		return nil, &APIError{Provider: p.Name(), Err: fmt.Errorf("empty response from Gemini")}
	}

	out := &Response{
		Text:     text,
		Model:    req.Model,
		Provider: p.Name(),
	}
	if resp.UsageMetadata != nil {
		out.TokensInput = int(resp.UsageMetadata.PromptTokenCount)
		out.TokensOutput = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// geminiStatus extracts the HTTP status from a genai error, if any
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}
