// Package sanitize bounds the working message window before it is used for
// prompts or summarization. It always operates on a copy; persisted memory
// is never touched here.
package sanitize

import (
	"unicode/utf8"

	"github.com/sandevgo/rolecast/internal/core"
)

type Sanitizer struct {
	maxChars  int
	maxWindow int
}

func New(maxChars, maxWindow int) *Sanitizer {
	return &Sanitizer{maxChars: maxChars, maxWindow: maxWindow}
}

// Clean returns a bounded copy of msgs: each message's content is cut to
// the character cap (tail dropped, message kept) and the list is reduced to
// the most recent maxWindow entries.
func (s *Sanitizer) Clean(msgs []core.Message) []core.Message {
	start := 0
	if s.maxWindow > 0 && len(msgs) > s.maxWindow {
		start = len(msgs) - s.maxWindow
	}

	out := make([]core.Message, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		m.Content = truncate(m.Content, s.maxChars)
		out = append(out, m)
	}
	return out
}

func truncate(content string, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}
	// Back off to a rune boundary so the cut never produces invalid UTF-8.
	cut := max
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
