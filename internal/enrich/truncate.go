package enrich

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultMaxWebsiteTokens bounds scraped website text before it is summarized.
const DefaultMaxWebsiteTokens = 6000

// charsPerToken is the fallback estimate used when no encoding is available.
const charsPerToken = 3

// Truncator trims text to a token budget.
type Truncator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

// NewTruncator loads the cl100k_base encoding. If it cannot be loaded the
// truncator falls back to a character-based estimate.
func NewTruncator(logger *slog.Logger) *Truncator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("tiktoken encoding unavailable, using character estimate", "error", err)
		return &Truncator{}
	}
	return &Truncator{encoding: enc}
}

// CountTokens returns the number of tokens in text.
func (t *Truncator) CountTokens(text string) int {
	if t == nil || t.encoding == nil {
		return (len([]rune(text)) + charsPerToken - 1) / charsPerToken
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.encoding.Encode(text, nil, nil))
}

// Truncate returns text cut to at most maxTokens tokens.
// maxTokens <= 0 disables truncation.
func (t *Truncator) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	if t == nil || t.encoding == nil {
		runes := []rune(text)
		limit := maxTokens * charsPerToken
		if len(runes) <= limit {
			return text
		}
		return string(runes[:limit])
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:maxTokens])
}
