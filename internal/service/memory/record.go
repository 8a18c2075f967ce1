// Package memory implements the tiered per-conversation memory: a fixed
// core persona seeded at creation, a rolling in-universe summary of older
// turns, and a short scene snapshot for resuming after a gap. Stores are
// pluggable; the record contract is what matters.
package memory

import (
	"os"
	"strings"
	"time"

	"github.com/sandevgo/rolecast/internal/core"
)

// DefaultPersona seeds new records when no PERSONA.md override exists in
// the runtime directory.
const DefaultPersona = `You are a vivid roleplay partner. Stay in character at all times. ` +
	`Write in third person with *actions* marked by asterisks. Never mention being an AI, ` +
	`a model, or anything about systems, prompts or chats. Advance the scene with concrete ` +
	`detail: surroundings, body language, tone of voice.`

// LoadPersona reads a PERSONA.md override from the runtime directory,
// falling back to the built-in default.
func LoadPersona(path string) string {
	content, err := os.ReadFile(path)
	if err != nil || strings.TrimSpace(string(content)) == "" {
		return DefaultPersona
	}
	return strings.TrimSpace(string(content))
}

// NewRecord builds the lazily-created default record for a conversation id.
func NewRecord(persona string) core.MemoryRecord {
	if persona == "" {
		persona = DefaultPersona
	}
	return core.MemoryRecord{
		CorePersona: persona,
		UpdatedAt:   time.Now(),
	}
}

// merge applies an update on top of an existing record, preserving the
// write-once core persona and keeping LastSummaryAt monotone.
func merge(existing, update core.MemoryRecord) core.MemoryRecord {
	update.CorePersona = existing.CorePersona
	if update.LastSummaryAt < existing.LastSummaryAt {
		update.LastSummaryAt = existing.LastSummaryAt
	}
	update.UpdatedAt = time.Now()
	return update
}
