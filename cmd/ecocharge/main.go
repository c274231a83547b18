// Ecocharge is the operator console for EcoCharge charging stations.
//
// It provides an interactive charging terminal for connecting vehicles, an
// admin dashboard with live network stats, and headless commands for
// scripting the same operations. The console talks to the charging service
// over HTTP.
//
// Usage:
//
//	ecocharge [command] [flags]
//
// Running without arguments launches the interactive charging terminal.
// See 'ecocharge --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecocharge/console/internal/logging"
	"github.com/ecocharge/console/internal/version"
)

func main() {
	// Silent unless ECOCHARGE_LOG_LEVEL is set; log lines would corrupt the TUI
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecocharge",
	Short: "EcoCharge Operator Console",
	Long: `The operator console for EcoCharge charging stations.

Provides an interactive charging terminal, an admin dashboard with live
network statistics, and headless commands for scripting.

If no command is specified, the interactive charging terminal launches.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the charging terminal when no subcommand provided
		return runTerminal(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ecocharge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
