package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/pkg/log"
)

// ForgetCmd wipes a single conversation's memory record.
type ForgetCmd struct {
	store core.MemoryStore
}

func NewForgetCmd(store core.MemoryStore) *ForgetCmd {
	return &ForgetCmd{store: store}
}

func (c *ForgetCmd) Name() string        { return "forget" }
func (c *ForgetCmd) Description() string { return "Erase this conversation's memory" }

func (c *ForgetCmd) Execute(ctx context.Context, conversationID string, args []string) (string, error) {
	if err := c.store.Delete(ctx, conversationID); err != nil {
		return "", fmt.Errorf("failed to wipe memory: %w", err)
	}
	log.FromCtx(ctx).Info().Str("conversation", conversationID).Msg("memory wiped")
	return "Memory for this conversation has been erased. The next message starts fresh.", nil
}

// ForgetAllCmd wipes every record in the store.
type ForgetAllCmd struct {
	store core.MemoryStore
}

func NewForgetAllCmd(store core.MemoryStore) *ForgetAllCmd {
	return &ForgetAllCmd{store: store}
}

func (c *ForgetAllCmd) Name() string        { return "forgetall" }
func (c *ForgetAllCmd) Description() string { return "Erase every conversation's memory" }

func (c *ForgetAllCmd) Execute(ctx context.Context, conversationID string, args []string) (string, error) {
	if err := c.store.Clear(ctx); err != nil {
		return "", fmt.Errorf("failed to wipe all memory: %w", err)
	}
	log.FromCtx(ctx).Info().Msg("all memory wiped")
	return "All conversation memory has been erased.", nil
}

// MemoryCmd shows the current record, mostly for debugging a session.
type MemoryCmd struct {
	store core.MemoryStore
}

func NewMemoryCmd(store core.MemoryStore) *MemoryCmd {
	return &MemoryCmd{store: store}
}

func (c *MemoryCmd) Name() string        { return "memory" }
func (c *MemoryCmd) Description() string { return "Show what is remembered about this conversation" }

func (c *MemoryCmd) Execute(ctx context.Context, conversationID string, args []string) (string, error) {
	rec, err := c.store.Get(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load memory: %w", err)
	}

	summary := rec.RollingSummary
	if summary == "" {
		summary = "(nothing summarized yet)"
	}
	scene := rec.SceneSnapshot
	if scene == "" {
		scene = "(no scene snapshot yet)"
	}
	return fmt.Sprintf("Story so far:\n%s\n\nCurrent scene:\n%s", summary, scene), nil
}
