package cli

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/config"
	"github.com/alecf/careerprep/internal/llm"
)

// maxPracticalContext caps auto-detected Ollama context windows. Models
// may advertise more than a local Ollama can hold in memory.
const maxPracticalContext = 8192

// ProviderConfig holds the provider and its context window
type ProviderConfig struct {
	Provider      llm.Provider
	ContextWindow int
}

// CreateProvider initializes a provider based on the profile configuration
func CreateProvider(ctx context.Context, cfg *config.Config, profile *config.Profile, logger *zap.Logger) (*ProviderConfig, error) {
	var (
		provider llm.Provider
		err      error
	)
	contextWindow := profile.GetContextWindow()

	switch profile.Provider {
	case "gemini":
		apiKey := cfg.GetAPIKey("gemini")
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key not found. Set GEMINI_API_KEY environment variable")
		}
		provider, err = llm.NewGeminiProvider(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}

	case "openai":
		apiKey := cfg.GetAPIKey("openai")
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable")
		}
		var opts []option.RequestOption
		if baseURL := profile.Option("base_url"); baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
		provider, err = llm.NewOpenAIProvider(apiKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
		}

	case "anthropic":
		apiKey := cfg.GetAPIKey("anthropic")
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key not found. Set ANTHROPIC_API_KEY environment variable")
		}
		provider, err = llm.NewAnthropicProvider(apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
		}

	case "ollama":
		ollama, err := llm.NewOllamaProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama provider: %w", err)
		}
		provider = ollama

		// Auto-detect context window from Ollama if not configured
		if profile.ContextWindow == 0 {
			if detected, err := ollama.GetModelContextWindow(ctx, profile.Model); err == nil {
				contextWindow = min(detected, maxPracticalContext)
				logger.Info("auto-detected context window",
					zap.Int("advertised", detected),
					zap.Int("using", contextWindow))
			} else {
				logger.Debug("context window detection failed", zap.Error(err))
			}
		}

	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}

	return &ProviderConfig{
		Provider:      provider,
		ContextWindow: contextWindow,
	}, nil
}
