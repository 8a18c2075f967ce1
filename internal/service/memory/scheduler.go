package memory

import (
	"context"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/pkg/log"
)

// sceneTail is how many recent messages feed the scene snapshot.
const sceneTail = 25

// Scheduler decides, per request, whether the sanitized window has grown
// enough to compress older history into memory. There is no background
// job; the trigger is recomputed from persisted state on every turn.
type Scheduler struct {
	store      core.MemoryStore
	summarizer *Summarizer
	policy     core.MemoryPolicy

	summaryBudget int
	sceneBudget   int
}

func NewScheduler(store core.MemoryStore, summarizer *Summarizer, policy core.MemoryPolicy, summaryBudget, sceneBudget int) *Scheduler {
	return &Scheduler{
		store:         store,
		summarizer:    summarizer,
		policy:        policy,
		summaryBudget: summaryBudget,
		sceneBudget:   sceneBudget,
	}
}

// shouldFire applies the trigger/cooldown policy. The cooldown bounds the
// number and cost of summarization calls.
func (s *Scheduler) shouldFire(window int, rec core.MemoryRecord) bool {
	if window <= s.policy.GetSummaryTrigger() {
		return false
	}
	return window-rec.LastSummaryAt >= s.policy.GetSummaryCooldown()
}

// MaybeSummarize runs the two summarization calls when the policy fires and
// persists whatever succeeded. Failures are logged and swallowed: the turn
// proceeds on the last good memory. Returns the record to assemble from.
func (s *Scheduler) MaybeSummarize(ctx context.Context, id string, window []core.Message, rec core.MemoryRecord) core.MemoryRecord {
	if !s.shouldFire(len(window), rec) {
		return rec
	}

	logger := log.FromCtx(ctx)
	updated := rec
	anyOK := false

	// Rolling summary over everything except the recent tail, so near-term
	// continuity is never compressed away.
	tail := s.policy.GetRecentTail()
	if len(window) > tail {
		older := window[:len(window)-tail]
		if summary, err := s.summarizer.Condense(ctx, older, s.summaryBudget); err != nil {
			logger.Warn().Err(err).Str("conversation", id).Msg("rolling summary failed")
		} else {
			updated.RollingSummary = summary
			anyOK = true
		}
	}

	// Scene snapshot over just the most recent messages, small budget.
	recent := window
	if len(recent) > sceneTail {
		recent = recent[len(recent)-sceneTail:]
	}
	if scene, err := s.summarizer.Snapshot(ctx, recent, s.sceneBudget); err != nil {
		logger.Warn().Err(err).Str("conversation", id).Msg("scene snapshot failed")
	} else {
		updated.SceneSnapshot = scene
		anyOK = true
	}

	if !anyOK {
		return rec
	}

	updated.LastSummaryAt = len(window)
	if err := s.store.Update(ctx, id, updated); err != nil {
		logger.Warn().Err(err).Str("conversation", id).Msg("failed to persist memory")
		return rec
	}

	logger.Debug().
		Str("conversation", id).
		Int("window", len(window)).
		Msg("memory compressed")
	return updated
}
