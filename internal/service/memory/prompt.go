package memory

import (
	"github.com/sandevgo/rolecast/internal/core"
)

const recapPreamble = "Story so far:\n"

const resumePreamble = "The scene resumes exactly here:\n"

// personaLock sits immediately before the live window because instruction
// following is recency-biased; the identity layers above it are the least
// volatile and go first.
const personaLock = `Stay fully in character. Continue the roleplay without any meta commentary. ` +
	`Keep *actions* in asterisks and never break the fourth wall.`

// Assembler reconstitutes the bounded context window from memory tiers.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Build produces the final upstream message list:
// persona, rolling summary, scene snapshot, persona lock, then the live
// window. Empty layers are omitted; the window is last and untouched.
func (a *Assembler) Build(rec core.MemoryRecord, window []core.Message) []core.Message {
	messages := make([]core.Message, 0, len(window)+4)

	if rec.CorePersona != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: rec.CorePersona})
	}
	if rec.RollingSummary != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: recapPreamble + rec.RollingSummary})
	}
	if rec.SceneSnapshot != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: resumePreamble + rec.SceneSnapshot})
	}
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: personaLock})
	messages = append(messages, window...)

	return messages
}
