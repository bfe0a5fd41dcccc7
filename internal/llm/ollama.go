package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements the Provider interface for Ollama
type OllamaProvider struct {
	client *api.Client
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider() (*OllamaProvider, error) {
	// Initialize client from environment (OLLAMA_HOST)
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Generate sends a chat request to Ollama and accumulates the streamed reply
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var messages []api.Message
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	// Use configured context window, default to 8192 if not set
	contextWindow := req.ContextWindow
	if contextWindow == 0 {
		contextWindow = 8192
	}

	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: messages,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
			"num_ctx":     contextWindow,
		},
	}
	if req.JSON {
		chatReq.Format = []byte(`"json"`)
	}

	var fullContent string
	var promptTokens, completionTokens int

	respFunc := func(resp api.ChatResponse) error {
		fullContent += resp.Message.Content

		// Capture token counts from final response
		if resp.Done {
			promptTokens = resp.PromptEvalCount
			completionTokens = resp.EvalCount
		}
		return nil
	}

	if err := p.client.Chat(ctx, chatReq, respFunc); err != nil {
		return nil, &APIError{Provider: p.Name(), StatusCode: ollamaStatus(err), Err: err}
	}

	return &Response{
		Text:         fullContent,
		TokensInput:  promptTokens,
		TokensOutput: completionTokens,
		Model:        req.Model,
		Provider:     p.Name(),
	}, nil
}

func ollamaStatus(err error) int {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	var statusErrPtr *api.StatusError
	if errors.As(err, &statusErrPtr) {
		return statusErrPtr.StatusCode
	}
	return 0
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// GetModelContextWindow queries Ollama for the model's context window size
func (p *OllamaProvider) GetModelContextWindow(ctx context.Context, modelName string) (int, error) {
	showReq := &api.ShowRequest{
		Name: modelName,
	}

	showResp, err := p.client.Show(ctx, showReq)
	if err != nil {
		return 0, fmt.Errorf("failed to get model info: %w", err)
	}

	// Check different possible field names for context length
	for _, key := range []string{
		"gemma3.context_length",
		"llama.context_length",
		"qwen2.context_length",
		"context_length",
	} {
		if val, ok := showResp.ModelInfo[key]; ok {
			if ctxLen, ok := val.(float64); ok {
				return int(ctxLen), nil
			}
		}
	}

	return 0, fmt.Errorf("context_length not found in model info")
}
