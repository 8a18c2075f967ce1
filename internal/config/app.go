package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rolecast/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"ROLECAST_RUNTIME_PATH" envDefault:".rolecast"`

	// HTTP listener
	ListenAddr string `env:"ROLECAST_LISTEN_ADDR" envDefault:":8090"`

	// Memory backend: memory | file | sqlite | redis
	MemoryBackend string `env:"MEMORY_BACKEND" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Splice upstream reasoning deltas into visible content instead of
	// stripping them.
	ShowReasoning bool `env:"SHOW_REASONING" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "rolecast.db")
}

func (c AppConfig) GetMemoryDirPath() string {
	return filepath.Join(c.RuntimePath, "memory")
}

func (c AppConfig) GetPersonaPath() string {
	return filepath.Join(c.RuntimePath, "PERSONA.md")
}
