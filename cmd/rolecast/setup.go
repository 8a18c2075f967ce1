package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/rolecast/internal/config"
	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/internal/providers/llm"
	"github.com/sandevgo/rolecast/internal/service/command"
	"github.com/sandevgo/rolecast/internal/service/memory"
	"github.com/sandevgo/rolecast/internal/service/relay"
	"github.com/sandevgo/rolecast/internal/service/sanitize"
	"github.com/sandevgo/rolecast/internal/storage/sqlite"
	"github.com/sandevgo/rolecast/internal/transport/httpapi"
	"github.com/sandevgo/rolecast/pkg/log"
	"github.com/sandevgo/rolecast/pkg/retry"
	"github.com/sandevgo/rolecast/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	upstreamCfg := config.NewUpstreamConfig(ctx)
	memCfg := config.NewMemoryConfig(ctx)

	// 2. Persona and memory backend
	persona := memory.LoadPersona(appCfg.GetPersonaPath())

	store, cleanup, err := initStore(ctx, appCfg, persona)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize memory store")
	}
	if cleanup != nil {
		services = append(services, srv.NewCleanup(cleanup))
	}

	// 3. Upstream provider
	provider := llm.NewProvider(ctx, upstreamCfg)

	// 4. Relay pipeline
	rly := relay.New(
		provider,
		store,
		sanitize.New(memCfg.GetMaxMessageChars(), memCfg.GetMaxWindow()),
		memory.NewScheduler(store, memory.NewSummarizer(provider), memCfg, memCfg.SummaryBudget, memCfg.SceneBudget),
		command.NewRouter(store),
		relay.NewRetryController(provider, memCfg),
		appCfg.ShowReasoning,
	)

	// 5. HTTP surface
	server := httpapi.NewServer(httpapi.NewHandler(rly), appCfg.ListenAddr)
	services = append(services, server)

	return services
}

func initStore(ctx context.Context, cfg *config.AppConfig, persona string) (core.MemoryStore, func() error, error) {
	switch cfg.MemoryBackend {
	case "file":
		store, err := memory.NewFileStore(cfg.GetMemoryDirPath(), persona)
		return store, nil, err

	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewMemoryRepo(db, persona), db.Close, nil

	case "redis":
		opts := memory.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		// The server may come up before Redis does; retry the dial with
		// backoff instead of dying on the first refused connection.
		var store *memory.RedisStore
		err := retry.NewDefaultRetrier().Do(ctx, func() error {
			var dialErr error
			store, dialErr = memory.NewRedisStore(ctx, opts, persona)
			return dialErr
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return memory.NewMapStore(persona), nil, nil
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
