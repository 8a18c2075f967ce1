package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/rolecast/internal/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Rolecast version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", core.RolecastName, core.RolecastVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
