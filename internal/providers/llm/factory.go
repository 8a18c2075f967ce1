package llm

import (
	"context"

	"github.com/sandevgo/rolecast/internal/config"
	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/pkg/log"
)

// NewProvider creates the upstream completion client from configuration.
func NewProvider(ctx context.Context, cfg *config.UpstreamConfig) core.Provider {
	log.FromCtx(ctx).Info().
		Str("base_url", cfg.BaseURL).
		Str("model", cfg.Model).
		Msg("starting upstream provider")

	return NewOpenAICompatible(Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
}
