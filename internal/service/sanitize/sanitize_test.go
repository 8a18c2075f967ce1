package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sandevgo/rolecast/internal/core"
)

func TestClean_TruncatesContent(t *testing.T) {
	s := New(8000, 60)

	long := strings.Repeat("x", 9000)
	out := s.Clean([]core.Message{{Role: core.RoleUser, Content: long}})

	if len(out) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out))
	}
	if len(out[0].Content) != 8000 {
		t.Errorf("expected content cut to 8000 chars, got %d", len(out[0].Content))
	}
}

func TestClean_TruncatesOnRuneBoundary(t *testing.T) {
	s := New(5, 60)

	// Two-byte runes: a 5-byte cut would land mid-rune.
	out := s.Clean([]core.Message{{Role: core.RoleUser, Content: "ααααα"}})

	if !utf8.ValidString(out[0].Content) {
		t.Fatalf("truncation produced invalid UTF-8: %q", out[0].Content)
	}
	if out[0].Content != "αα" {
		t.Errorf("expected cut backed off to %q, got %q", "αα", out[0].Content)
	}
}

func TestClean_DropsOldest(t *testing.T) {
	s := New(100, 3)

	msgs := []core.Message{
		{Role: core.RoleUser, Content: "one"},
		{Role: core.RoleAssistant, Content: "two"},
		{Role: core.RoleUser, Content: "three"},
		{Role: core.RoleAssistant, Content: "four"},
	}
	out := s.Clean(msgs)

	if len(out) != 3 {
		t.Fatalf("expected window of 3, got %d", len(out))
	}
	if out[0].Content != "two" || out[2].Content != "four" {
		t.Errorf("expected the most recent 3 messages, got %+v", out)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	s := New(5, 10)

	msgs := []core.Message{{Role: core.RoleUser, Content: "0123456789"}}
	s.Clean(msgs)

	if msgs[0].Content != "0123456789" {
		t.Errorf("input mutated: %q", msgs[0].Content)
	}
}

func TestClean_ShortMessagesUntouched(t *testing.T) {
	s := New(8000, 60)

	out := s.Clean([]core.Message{{Role: core.RoleUser, Content: "hi"}})
	if out[0].Content != "hi" {
		t.Errorf("short message changed: %q", out[0].Content)
	}
}

func TestCountText_FallbackNonZero(t *testing.T) {
	if got := CountText("some words here"); got == 0 {
		t.Error("expected a non-zero token estimate")
	}
	if got := CountText(""); got != 0 {
		t.Errorf("empty text should count 0 tokens, got %d", got)
	}
}
