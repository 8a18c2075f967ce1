package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/rolecast/internal/config"
	"github.com/sandevgo/rolecast/pkg/env"
	"github.com/sandevgo/rolecast/pkg/log"
)

var configCmd = &cobra.Command{
	Use:           "config",
	Short:         "Print the effective configuration in .env format",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			log.FromCtx(ctx).Fatal().Err(err).Msg("failed to init env")
		}

		appCfg := config.NewAppConfig(ctx)
		upstreamCfg := config.NewUpstreamConfig(ctx)
		memCfg := config.NewMemoryConfig(ctx)

		// Never print credentials.
		if upstreamCfg.APIKey != "" {
			upstreamCfg.APIKey = "********"
		}
		if appCfg.RedisPassword != "" {
			appCfg.RedisPassword = "********"
		}

		for _, cfg := range []any{appCfg, upstreamCfg, memCfg} {
			content, err := env.MarshalEnv(cfg)
			if err != nil {
				return err
			}
			fmt.Print(content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
