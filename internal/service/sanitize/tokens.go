package sanitize

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/rolecast/internal/core"
)

var (
	tkOnce sync.Once
	tk     *tiktoken.Tiktoken
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		// Load failure (offline environment) is fine: token counts degrade
		// to the chars/4 heuristic.
		tk, _ = tiktoken.GetEncoding("cl100k_base")
	})
	return tk
}

// CountTokens estimates the token footprint of a message list. Used for
// logging and summarizer budget sizing, never for hard cutoffs.
func CountTokens(msgs []core.Message) int {
	// Small per-message overhead for role framing.
	const perMessage = 4

	total := 0
	for _, m := range msgs {
		total += CountText(m.Content) + perMessage
	}
	return total
}

func CountText(text string) int {
	if text == "" {
		return 0
	}
	if t := getTokenizer(); t != nil {
		return len(t.Encode(text, nil, nil))
	}
	return len(text)/4 + 1
}
