// internal/render/excerpt.go
package render

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// getTokenizer lazily loads the cl100k_base encoding shared by the backend
// models.
func getTokenizer() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		tokenizer = enc
	})
	return tokenizer
}

// Excerpt truncates text to at most maxTokens tokens, appending a marker
// when content was cut. Falls back to a rune-count bound if the tokenizer
// is unavailable.
func Excerpt(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}

	enc := getTokenizer()
	if enc == nil {
		// Rough bound: ~4 chars per token.
		runes := []rune(text)
		limit := maxTokens * 4
		if len(runes) <= limit {
			return text
		}
		return strings.TrimSpace(string(runes[:limit])) + "\n\n[Content truncated]"
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return strings.TrimSpace(enc.Decode(tokens[:maxTokens])) + "\n\n[Content truncated]"
}

// CountTokens returns the token count for a string, or a rough estimate if
// the tokenizer is unavailable.
func CountTokens(text string) int {
	enc := getTokenizer()
	if enc == nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
