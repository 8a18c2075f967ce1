package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/rolecast/internal/config"
	"github.com/sandevgo/rolecast/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "rolecast",
	Short: "Rolecast is a roleplay memory relay",
	Long:  `Rolecast sits between chat frontends and any OpenAI-compatible upstream and gives stateless models a persistent character memory.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
