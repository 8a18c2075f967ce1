// Package relay orchestrates a chat turn: command interception, window
// sanitization, memory load, cooldown-gated summarization, prompt assembly
// and the upstream call (retry-gated or streamed).
package relay

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/internal/service/memory"
	"github.com/sandevgo/rolecast/internal/service/sanitize"
	"github.com/sandevgo/rolecast/pkg/log"
)

type Relay struct {
	provider  core.Provider
	store     core.MemoryStore
	sanitizer *sanitize.Sanitizer
	scheduler *memory.Scheduler
	assembler *memory.Assembler
	commands  core.CmdRouter
	retrier   *RetryController

	showReasoning bool
}

func New(
	provider core.Provider,
	store core.MemoryStore,
	sanitizer *sanitize.Sanitizer,
	scheduler *memory.Scheduler,
	commands core.CmdRouter,
	retrier *RetryController,
	showReasoning bool,
) *Relay {
	return &Relay{
		provider:      provider,
		store:         store,
		sanitizer:     sanitizer,
		scheduler:     scheduler,
		assembler:     memory.NewAssembler(),
		commands:      commands,
		retrier:       retrier,
		showReasoning: showReasoning,
	}
}

// Turn is one prepared chat turn. When LocalReply is set the request was
// answered by an in-band command and nothing goes upstream.
type Turn struct {
	ConversationID string
	LocalReply     string
	Upstream       core.ChatRequest
}

// Prepare runs everything up to the upstream call. Commands are matched on
// the final message before any memory mutation or prompt work happens.
func (r *Relay) Prepare(ctx context.Context, id string, req core.ChatRequest) (Turn, error) {
	if len(req.Messages) == 0 {
		return Turn{}, fmt.Errorf("empty message list")
	}

	if reply, handled := r.commands.Execute(ctx, id, req.Messages[len(req.Messages)-1].Content); handled {
		return Turn{ConversationID: id, LocalReply: reply}, nil
	}

	window := r.sanitizer.Clean(req.Messages)

	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return Turn{}, fmt.Errorf("load memory: %w", err)
	}

	rec = r.scheduler.MaybeSummarize(ctx, id, window, rec)

	upstream := req
	upstream.Messages = r.assembler.Build(rec, window)

	log.FromCtx(ctx).Debug().
		Str("conversation", id).
		Int("window", len(window)).
		Int("prompt_messages", len(upstream.Messages)).
		Int("prompt_tokens_est", sanitize.CountTokens(upstream.Messages)).
		Msg("turn prepared")

	return Turn{ConversationID: id, Upstream: upstream}, nil
}

// Complete runs the non-streaming path through the quality-gated retrier
// and wraps the answer in an OpenAI-shaped envelope.
func (r *Relay) Complete(ctx context.Context, turn Turn) (core.ChatResponse, error) {
	msg, err := r.retrier.Chat(ctx, turn.Upstream)
	if err != nil {
		return core.ChatResponse{}, err
	}
	return envelope(turn.Upstream.Model, msg), nil
}

// StreamUpstream opens the streaming upstream call. The caller pumps the
// body through a Merger and must close it; cancelling ctx aborts the
// upstream consumption when the client goes away.
func (r *Relay) StreamUpstream(ctx context.Context, turn Turn) (io.ReadCloser, error) {
	return r.provider.ChatStream(ctx, turn.Upstream)
}

// NewMerger builds the per-stream state machine.
func (r *Relay) NewMerger() *Merger {
	return NewMerger(r.showReasoning)
}

// LocalResponse wraps a command reply in the same envelope a completion
// would use, so clients cannot tell the difference.
func LocalResponse(model, reply string) core.ChatResponse {
	return envelope(model, core.Message{Role: core.RoleAssistant, Content: reply})
}

func envelope(model string, msg core.Message) core.ChatResponse {
	if msg.Role == "" {
		msg.Role = core.RoleAssistant
	}
	return core.ChatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []core.Choice{{Index: 0, Message: msg, FinishReason: "stop"}},
	}
}
