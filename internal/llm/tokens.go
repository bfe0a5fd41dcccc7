package llm

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// CountTokens estimates token count using tiktoken, falling back to
// a character count. The second result reports whether tiktoken was used.
func CountTokens(text string) (int, bool) {
	// Accurate for OpenAI, a decent estimate for Gemini/Claude/Llama
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err == nil {
		return len(tke.Encode(text, nil, nil)), true
	}

	return len(text) / 4, false
}
