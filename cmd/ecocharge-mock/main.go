// Ecocharge-mock is a development simulator for the EcoCharge charging service.
//
// It serves the HTTP surface the operator console talks to, backed by an
// in-memory network of charging slots with a drifting solar/wind supply.
// Use it to develop and demo the console without a real charging network.
//
// Usage:
//
//	ecocharge-mock serve [flags]
//
// See 'ecocharge-mock serve --help' for available options.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecocharge/console/internal/logging"
	"github.com/ecocharge/console/internal/mockservice"
	"github.com/ecocharge/console/internal/version"
)

func main() {
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
	Use:   "ecocharge-mock",
	Short: "EcoCharge Service Simulator",
	Long: `A development simulator for the EcoCharge charging service.

Serves POST /connect, POST /admin/login, and GET /admin/dashboard_stats
against an in-memory charging network, so the operator console can run
without real infrastructure.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host       string
	port       int
	totalSlots int
	username   string
	password   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated charging service",
	Example: `  # Start on the default console address
  ecocharge-mock serve

  # Custom port and a tiny network for testing the no-free-slot path
  ecocharge-mock serve --port 9000 --slots 2

  # Custom admin credentials
  ecocharge-mock serve --username ops --password s3cret`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen address")
	serveCmd.Flags().IntVar(&port, "port", 8000, "Listen port")
	serveCmd.Flags().IntVar(&totalSlots, "slots", mockservice.DefaultTotalSlots, "Number of charging slots")
	serveCmd.Flags().StringVar(&username, "username", mockservice.DefaultUsername, "Admin username")
	serveCmd.Flags().StringVar(&password, "password", mockservice.DefaultPassword, "Admin password")
}

func runServe(cmd *cobra.Command, args []string) error {
	service := mockservice.NewService(
		mockservice.WithTotalSlots(totalSlots),
		mockservice.WithCredentials(username, password),
	)

	addr := fmt.Sprintf("%s:%d", host, port)
	logging.Info("Simulator listening", zap.String("addr", addr), zap.Int("slots", totalSlots))
	fmt.Printf("EcoCharge simulator listening on http://%s\n", addr)
	fmt.Printf("Admin credentials: %s / %s\n", username, password)

	if err := http.ListenAndServe(addr, service.Routes()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ecocharge-mock %s (commit: %s)\n", version.Version, version.Commit)
	},
}
