package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rolecast/pkg/log"
)

type UpstreamConfig struct {
	// BaseURL includes the API version prefix, e.g. https://api.deepseek.com/v1
	BaseURL string        `env:"UPSTREAM_BASE_URL,required,notEmpty"`
	APIKey  string        `env:"UPSTREAM_API_KEY"`
	Model   string        `env:"UPSTREAM_MODEL" envDefault:"deepseek-chat"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"120s"`
}

func NewUpstreamConfig(ctx context.Context) *UpstreamConfig {
	c := &UpstreamConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Upstream config")
	}
	return c
}

func (c UpstreamConfig) GetBaseURL() string { return c.BaseURL }
func (c UpstreamConfig) GetAPIKey() string  { return c.APIKey }
func (c UpstreamConfig) GetModel() string   { return c.Model }
