// Package pricing estimates the cost of provider calls from token usage.
package pricing

import (
	"fmt"
	"strings"
	"time"
)

// Database holds per-model prices as of LastUpdated
type Database struct {
	LastUpdated time.Time
	Models      map[string]*ModelPricing
}

// ModelPricing represents pricing for a specific model
type ModelPricing struct {
	Provider         string
	Model            string
	InputPerMillion  float64 // Cost per 1M input tokens
	OutputPerMillion float64 // Cost per 1M output tokens
	PricingURL       string
}

const (
	geminiPricingURL    = "https://ai.google.dev/gemini-api/docs/pricing"
	openaiPricingURL    = "https://openai.com/api/pricing/"
	anthropicPricingURL = "https://www.anthropic.com/pricing"
)

var database = &Database{
	LastUpdated: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
	Models: index(
		&ModelPricing{Provider: "gemini", Model: "gemini-2.5-pro", InputPerMillion: 1.25, OutputPerMillion: 10.00, PricingURL: geminiPricingURL},
		&ModelPricing{Provider: "gemini", Model: "gemini-2.5-flash", InputPerMillion: 0.30, OutputPerMillion: 2.50, PricingURL: geminiPricingURL},
		&ModelPricing{Provider: "gemini", Model: "gemini-2.0-flash", InputPerMillion: 0.10, OutputPerMillion: 0.40, PricingURL: geminiPricingURL},
		&ModelPricing{Provider: "gemini", Model: "gemini-1.5-flash", InputPerMillion: 0.075, OutputPerMillion: 0.30, PricingURL: geminiPricingURL},

		&ModelPricing{Provider: "openai", Model: "gpt-4o", InputPerMillion: 2.50, OutputPerMillion: 10.00, PricingURL: openaiPricingURL},
		&ModelPricing{Provider: "openai", Model: "gpt-4o-mini", InputPerMillion: 0.15, OutputPerMillion: 0.60, PricingURL: openaiPricingURL},
		&ModelPricing{Provider: "openai", Model: "gpt-4-turbo", InputPerMillion: 10.00, OutputPerMillion: 30.00, PricingURL: openaiPricingURL},

		&ModelPricing{Provider: "anthropic", Model: "claude-sonnet-4-5-20250924", InputPerMillion: 3.00, OutputPerMillion: 15.00, PricingURL: anthropicPricingURL},
		&ModelPricing{Provider: "anthropic", Model: "claude-3-5-haiku-20241022", InputPerMillion: 0.80, OutputPerMillion: 4.00, PricingURL: anthropicPricingURL},
	),
}

func index(models ...*ModelPricing) map[string]*ModelPricing {
	m := make(map[string]*ModelPricing, len(models))
	for _, p := range models {
		m[p.Model] = p
	}
	return m
}

// GetDatabase returns the embedded pricing database
func GetDatabase() *Database {
	return database
}

// GetPricing returns pricing for a model. Versioned names such as
// "gemini-2.0-flash-001" resolve to their base model.
func (db *Database) GetPricing(model string) *ModelPricing {
	if p, ok := db.Models[model]; ok {
		return p
	}
	var best *ModelPricing
	for name, p := range db.Models {
		if strings.HasPrefix(model, name+"-") && (best == nil || len(name) > len(best.Model)) {
			best = p
		}
	}
	return best
}

// CalculateCost calculates the cost for a given number of input and output tokens
func (mp *ModelPricing) CalculateCost(inputTokens, outputTokens int) float64 {
	inputCost := float64(inputTokens) / 1_000_000.0 * mp.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * mp.OutputPerMillion
	return inputCost + outputCost
}

// FormatCost formats cost with disclaimer
func (mp *ModelPricing) FormatCost(inputTokens, outputTokens int, lastUpdated time.Time) string {
	cost := mp.CalculateCost(inputTokens, outputTokens)

	warning := fmt.Sprintf("$%.4f (estimated, based on %s pricing)\n\n",
		cost, lastUpdated.Format("2006-01-02"))
	warning += "⚠️  Pricing may have changed. Check current rates:\n"
	warning += "    " + mp.PricingURL

	return warning
}

// FormatTokenUsage formats the token usage of a command's live calls
func FormatTokenUsage(provider string, calls, inputTokens, outputTokens int, mp *ModelPricing, lastUpdated time.Time) string {
	if calls == 0 {
		return "Token usage: none (all results served from cache or fallback)"
	}

	result := fmt.Sprintf("Token usage (%d live call(s)):\n", calls)
	result += fmt.Sprintf("  Input:  %s tokens\n", formatNumber(inputTokens))
	result += fmt.Sprintf("  Output: %s tokens\n", formatNumber(outputTokens))
	result += fmt.Sprintf("  Total:  %s tokens\n", formatNumber(inputTokens+outputTokens))

	switch {
	case mp != nil:
		result += "  Cost:   " + mp.FormatCost(inputTokens, outputTokens, lastUpdated)
	case provider == "ollama":
		result += "  Cost:   Free (local model)"
	default:
		result += "  Cost:   unknown for this model"
	}

	return result
}

// formatNumber adds commas to large numbers
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var b strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
