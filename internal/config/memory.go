package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rolecast/pkg/log"
)

// MemoryConfig holds the summarization and windowing tunables. Observed
// deployments vary these widely, so everything is an env knob rather than
// a constant.
type MemoryConfig struct {
	// Summarization fires once the window exceeds SummaryTrigger and at
	// least SummaryCooldown new messages have arrived since the last round.
	SummaryTrigger  int `env:"SUMMARY_TRIGGER" envDefault:"60"`
	SummaryCooldown int `env:"SUMMARY_COOLDOWN" envDefault:"40"`

	// RecentTail messages are excluded from the rolling summary so near-term
	// continuity is never compressed away.
	RecentTail int `env:"SUMMARY_RECENT_TAIL" envDefault:"20"`

	// Sliding window and per-message sanitization caps. The trigger is
	// evaluated on the sanitized window, so MaxWindow must stay above
	// SummaryTrigger or summarization can never fire.
	MaxWindow       int `env:"MAX_WINDOW" envDefault:"100"`
	MaxMessageChars int `env:"MAX_MESSAGE_CHARS" envDefault:"8000"`

	// Token budgets for the two summary types.
	SummaryBudget int `env:"SUMMARY_BUDGET" envDefault:"700"`
	SceneBudget   int `env:"SCENE_BUDGET" envDefault:"180"`

	// Quality-gated retry policy.
	MaxRetries       int     `env:"MAX_RETRIES" envDefault:"5"`
	MinResponseWords int     `env:"MIN_RESPONSE_WORDS" envDefault:"50"`
	TemperatureStep  float64 `env:"TEMPERATURE_STEP" envDefault:"0.05"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	if c.MaxWindow > 0 && c.MaxWindow <= c.SummaryTrigger {
		log.FromCtx(ctx).Warn().
			Int("max_window", c.MaxWindow).
			Int("summary_trigger", c.SummaryTrigger).
			Msg("window cap does not exceed summary trigger; summarization will never fire")
	}
	return c
}

func (c MemoryConfig) GetSummaryTrigger() int      { return c.SummaryTrigger }
func (c MemoryConfig) GetSummaryCooldown() int     { return c.SummaryCooldown }
func (c MemoryConfig) GetRecentTail() int          { return c.RecentTail }
func (c MemoryConfig) GetMaxWindow() int           { return c.MaxWindow }
func (c MemoryConfig) GetMaxMessageChars() int     { return c.MaxMessageChars }
func (c MemoryConfig) GetMaxRetries() int          { return c.MaxRetries }
func (c MemoryConfig) GetMinResponseWords() int    { return c.MinResponseWords }
func (c MemoryConfig) GetTemperatureStep() float64 { return c.TemperatureStep }
