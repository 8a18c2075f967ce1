package relay

import (
	"context"
	"strings"
	"testing"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/internal/service/command"
	"github.com/sandevgo/rolecast/internal/service/memory"
	"github.com/sandevgo/rolecast/internal/service/sanitize"
)

type relayPolicy struct{}

func (relayPolicy) GetSummaryTrigger() int      { return 60 }
func (relayPolicy) GetSummaryCooldown() int     { return 40 }
func (relayPolicy) GetRecentTail() int          { return 20 }
func (relayPolicy) GetMaxWindow() int           { return 60 }
func (relayPolicy) GetMaxMessageChars() int     { return 8000 }
func (relayPolicy) GetMaxRetries() int          { return 5 }
func (relayPolicy) GetMinResponseWords() int    { return 1 }
func (relayPolicy) GetTemperatureStep() float64 { return 0.05 }

// defaultsPolicy mirrors the MemoryConfig env defaults.
type defaultsPolicy struct{}

func (defaultsPolicy) GetSummaryTrigger() int      { return 60 }
func (defaultsPolicy) GetSummaryCooldown() int     { return 40 }
func (defaultsPolicy) GetRecentTail() int          { return 20 }
func (defaultsPolicy) GetMaxWindow() int           { return 100 }
func (defaultsPolicy) GetMaxMessageChars() int     { return 8000 }
func (defaultsPolicy) GetMaxRetries() int          { return 5 }
func (defaultsPolicy) GetMinResponseWords() int    { return 50 }
func (defaultsPolicy) GetTemperatureStep() float64 { return 0.05 }

func newTestRelay(provider core.Provider) (*Relay, core.MemoryStore) {
	store := memory.NewMapStore(memory.DefaultPersona)
	policy := relayPolicy{}
	sched := memory.NewScheduler(store, memory.NewSummarizer(provider), policy, 700, 180)
	return New(
		provider,
		store,
		sanitize.New(policy.GetMaxMessageChars(), policy.GetMaxWindow()),
		sched,
		command.NewRouter(store),
		NewRetryController(provider, policy),
		false,
	), store
}

func TestPrepare_CommandNeverReachesUpstream(t *testing.T) {
	provider := &scriptedProvider{replies: []string{goodReply}}
	r, store := newTestRelay(provider)

	ctx := context.Background()
	rec, _ := store.Get(ctx, "conv")
	rec.RollingSummary = "doomed"
	if err := store.Update(ctx, "conv", rec); err != nil {
		t.Fatal(err)
	}

	turn, err := r.Prepare(ctx, "conv", core.ChatRequest{
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "earlier message"},
			{Role: core.RoleUser, Content: "/forget"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if turn.LocalReply == "" {
		t.Fatal("command was not answered locally")
	}
	if provider.calls != 0 {
		t.Errorf("command text reached upstream: %d calls", provider.calls)
	}

	got, _ := store.Get(ctx, "conv")
	if got.RollingSummary != "" {
		t.Error("record not wiped")
	}
}

func TestPrepare_AssemblesMemoryLayers(t *testing.T) {
	provider := &scriptedProvider{replies: []string{goodReply}}
	r, store := newTestRelay(provider)

	ctx := context.Background()
	rec, _ := store.Get(ctx, "conv")
	rec.RollingSummary = "the journey north"
	rec.SceneSnapshot = "campfire at night"
	if err := store.Update(ctx, "conv", rec); err != nil {
		t.Fatal(err)
	}

	turn, err := r.Prepare(ctx, "conv", core.ChatRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "what now?"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	msgs := turn.Upstream.Messages
	if msgs[0].Content != memory.DefaultPersona {
		t.Error("persona must be the first layer")
	}
	var sawSummary, sawScene bool
	for _, m := range msgs[:len(msgs)-1] {
		if strings.Contains(m.Content, "the journey north") {
			sawSummary = true
		}
		if strings.Contains(m.Content, "campfire at night") {
			sawScene = true
		}
	}
	if !sawSummary || !sawScene {
		t.Errorf("memory tiers missing from prompt: summary=%v scene=%v", sawSummary, sawScene)
	}
	if msgs[len(msgs)-1].Content != "what now?" {
		t.Error("live window must be the final layer")
	}
}

func TestPrepare_TruncatesOversizedMessage(t *testing.T) {
	provider := &scriptedProvider{replies: []string{goodReply}}
	r, _ := newTestRelay(provider)

	long := strings.Repeat("y", 9000)
	turn, err := r.Prepare(context.Background(), "conv", core.ChatRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: long}},
	})
	if err != nil {
		t.Fatal(err)
	}

	last := turn.Upstream.Messages[len(turn.Upstream.Messages)-1]
	if len(last.Content) != 8000 {
		t.Errorf("expected 8000-char cap before upstream, got %d", len(last.Content))
	}
}

// A long conversation must trigger summarization under the default policy
// values: the window cap (100) sits above the trigger (60), so the
// sanitized window can actually exceed it.
func TestPrepare_DefaultPolicyCompressesLongConversation(t *testing.T) {
	summary := "They fled the burning keep and made camp in the pass."
	provider := &scriptedProvider{replies: []string{summary}}

	store := memory.NewMapStore(memory.DefaultPersona)
	policy := defaultsPolicy{}
	r := New(
		provider,
		store,
		sanitize.New(policy.GetMaxMessageChars(), policy.GetMaxWindow()),
		memory.NewScheduler(store, memory.NewSummarizer(provider), policy, 700, 180),
		command.NewRouter(store),
		NewRetryController(provider, policy),
		false,
	)

	msgs := make([]core.Message, 0, 200)
	for i := 0; i < 200; i++ {
		msgs = append(msgs, core.Message{Role: core.RoleUser, Content: "turn content"})
	}

	ctx := context.Background()
	turn, err := r.Prepare(ctx, "conv", core.ChatRequest{Messages: msgs})
	if err != nil {
		t.Fatal(err)
	}

	// One rolling-summary call plus one scene-snapshot call.
	if provider.calls != 2 {
		t.Fatalf("expected 2 summarizer calls, got %d", provider.calls)
	}

	var inPrompt bool
	for _, m := range turn.Upstream.Messages {
		if strings.Contains(m.Content, summary) {
			inPrompt = true
		}
	}
	if !inPrompt {
		t.Error("compressed memory missing from the assembled prompt")
	}

	rec, err := store.Get(ctx, "conv")
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastSummaryAt != policy.GetMaxWindow() {
		t.Errorf("lastSummaryAt = %d, want %d", rec.LastSummaryAt, policy.GetMaxWindow())
	}
}

func TestComplete_WrapsEnvelope(t *testing.T) {
	provider := &scriptedProvider{replies: []string{goodReply}}
	r, _ := newTestRelay(provider)

	ctx := context.Background()
	turn, err := r.Prepare(ctx, "conv", core.ChatRequest{
		Model:    "deepseek-chat",
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := r.Complete(ctx, turn)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Object != "chat.completion" || len(resp.Choices) != 1 {
		t.Errorf("malformed envelope: %+v", resp)
	}
	if resp.Choices[0].Message.Role != core.RoleAssistant {
		t.Errorf("expected assistant role, got %q", resp.Choices[0].Message.Role)
	}
	if !strings.HasPrefix(resp.ID, "chatcmpl-") {
		t.Errorf("unexpected id %q", resp.ID)
	}
}
