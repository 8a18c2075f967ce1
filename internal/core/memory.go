package core

import (
	"context"
	"time"
)

// MemoryRecord is the tiered per-conversation memory. CorePersona is
// written once at creation and never replaced while the record exists;
// RollingSummary and SceneSnapshot are only overwritten by a successful
// summarization round.
type MemoryRecord struct {
	CorePersona    string    `json:"core"`
	RollingSummary string    `json:"summary"`
	SceneSnapshot  string    `json:"scene"`
	LastSummaryAt  int       `json:"lastSummaryAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MemoryStore is a keyed record store. Get creates a default record for
// unknown ids. Update persists the whole record in one write; concurrent
// updates to the same id are last-writer-wins.
type MemoryStore interface {
	Get(ctx context.Context, id string) (MemoryRecord, error)
	Update(ctx context.Context, id string, rec MemoryRecord) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
