package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ecocharge/console/internal/api"
	"github.com/ecocharge/console/internal/auth"
	"github.com/ecocharge/console/internal/config"
	"github.com/ecocharge/console/internal/discovery"
	"github.com/ecocharge/console/internal/poller"
	"github.com/ecocharge/console/internal/session"
	"github.com/ecocharge/console/internal/tui"
	"github.com/ecocharge/console/internal/vehicle"
)

// Command flags
var (
	serverURL      string
	requestTimeout int
	outputFormat   string
	scanTimeout    int
	scanStation    string

	vehicleNumber string
	chargeMode    string
	customKWh     int

	loginUsername string
	loginPassword string
)

func init() {
	// Common flags for service commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Charging service base URL (overrides settings)")
	rootCmd.PersistentFlags().IntVar(&requestTimeout, "timeout", 10, "Request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")

	rootCmd.AddCommand(terminalCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(scanCmd)
}

// newClient builds an API client from flags and settings
func newClient() (*api.Client, error) {
	base := serverURL
	if base == "" {
		settings, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		base = settings.ServerURL
	}

	client := api.NewClient(base)
	client.SetTimeout(time.Duration(requestTimeout) * time.Second)
	return client, nil
}

// newGate builds a credential gate over the default store
func newGate(client *api.Client) (*auth.Gate, error) {
	store, err := auth.NewFileStore()
	if err != nil {
		return nil, err
	}
	return auth.NewGate(store, client), nil
}

// terminalCmd launches the interactive charging terminal
var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Launch the interactive charging terminal",
	Long: `Launch the interactive charging terminal.

The terminal collects a vehicle number across four input segments, lets the
operator pick a charge mode, and requests a charging slot from the service.
On success it shows the session receipt with the assigned slot, the energy
source, and the estimated bill.`,
	Example: `  # Launch the terminal (also the default with no command)
  ecocharge terminal
  ecocharge

  # Point the terminal at a specific service
  ecocharge terminal --server http://192.168.1.50:8000`,
	RunE: runTerminal,
}

func runTerminal(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	gate, err := newGate(client)
	if err != nil {
		return err
	}
	if _, err := gate.Resume(); err != nil {
		return err
	}

	flow := session.NewFlow(client)
	loop := newLoop(client, gate)

	model := tui.NewAppModel(tui.ScreenTerminal, flow, gate, loop)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal error: %w", err)
	}
	return nil
}

// adminCmd launches the admin dashboard
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Launch the admin dashboard",
	Long: `Launch the admin dashboard.

A persisted credential from a previous login opens the dashboard directly;
otherwise the login form shows first. The dashboard refreshes from the
service every two seconds and keeps the last snapshot on screen when a
refresh fails.`,
	Example: `  # Launch the dashboard
  ecocharge admin

  # Against a specific service
  ecocharge admin --server http://192.168.1.50:8000`,
	RunE: runAdmin,
}

func runAdmin(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	gate, err := newGate(client)
	if err != nil {
		return err
	}
	if _, err := gate.Resume(); err != nil {
		return err
	}

	flow := session.NewFlow(client)
	loop := newLoop(client, gate)

	model := tui.NewAppModel(tui.ScreenAdmin, flow, gate, loop)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("admin error: %w", err)
	}
	return nil
}

// newLoop builds the dashboard sync loop; the credential is re-read on each
// fetch so a login mid-session takes effect without rewiring.
func newLoop(client *api.Client, gate *auth.Gate) *poller.Loop {
	interval := poller.DefaultInterval
	if settings, err := config.Load(); err == nil {
		interval = settings.PollInterval()
	}

	fetch := func(ctx context.Context) (*api.DashboardSnapshot, error) {
		client.SetToken(gate.Token())
		return client.DashboardStats(ctx)
	}
	return poller.NewLoop(fetch, poller.WithInterval(interval))
}

// connectCmd requests a charging slot without the TUI
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Request a charging slot for a vehicle",
	Long: `Request a charging slot for a vehicle without the interactive terminal.

The vehicle number is the full four-segment identifier, e.g. KA-12-AB-3456.
Charge modes: now (immediate), full (cost-optimized full charge), or
custom (charge up to --kwh).`,
	Example: `  # Immediate charge
  ecocharge connect --vehicle KA-12-AB-3456 --mode now

  # Custom charge up to 30 kWh
  ecocharge connect --vehicle KA-12-AB-3456 --mode custom --kwh 30

  # JSON output for scripting
  ecocharge connect --vehicle KA-12-AB-3456 --mode full --format json`,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&vehicleNumber, "vehicle", "", "Vehicle number (e.g. KA-12-AB-3456)")
	connectCmd.Flags().StringVar(&chargeMode, "mode", "now", "Charge mode (now, full, custom)")
	connectCmd.Flags().IntVar(&customKWh, "kwh", session.DefaultLimitKWh, "Energy limit in kWh (custom mode only)")
	connectCmd.MarkFlagRequired("vehicle")
}

func runConnect(cmd *cobra.Command, args []string) error {
	composer, err := parseVehicleNumber(vehicleNumber)
	if err != nil {
		return err
	}

	mode := session.NewModeSelection()
	switch strings.ToLower(chargeMode) {
	case "now":
		// Default
	case "full":
		mode.Choose(session.ModeOptimized)
	case "custom":
		mode.Choose(session.ModeBounded)
		mode.SetLimit(customKWh)
	default:
		return fmt.Errorf("unknown charge mode %q (use now, full, or custom)", chargeMode)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	flow := session.NewFlow(client)
	outcome, err := flow.Submit(context.Background(), composer, mode)
	if err != nil {
		return fmt.Errorf("connect failed: %s", api.Reason(err))
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("✓ Charging session authorized")
	fmt.Println()
	fmt.Printf("  Vehicle:        %s\n", composer.String())
	fmt.Printf("  Slot:           #%d\n", outcome.SlotID)
	fmt.Printf("  Initial source: %s\n", outcome.InitialSource)
	fmt.Printf("  Estimated bill: %.2f\n", outcome.EstBill)
	return nil
}

// parseVehicleNumber splits a full identifier into composer segments
func parseVehicleNumber(s string) (*vehicle.Composer, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != vehicle.SegmentCount {
		return nil, fmt.Errorf("invalid vehicle number %q (expected form KA-12-AB-3456)", s)
	}

	var composer vehicle.Composer
	for i, part := range parts {
		composer.SetSegment(i, part)
	}
	if !composer.Valid() {
		return nil, fmt.Errorf("invalid vehicle number %q (expected form KA-12-AB-3456)", s)
	}
	return &composer, nil
}

// statsCmd fetches one dashboard snapshot
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a dashboard snapshot",
	Long: `Fetch one dashboard snapshot from the service and print it.

Requires a persisted credential from 'ecocharge login'.`,
	Example: `  # Human-readable snapshot
  ecocharge stats

  # JSON output for scripting
  ecocharge stats --format json`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	gate, err := newGate(client)
	if err != nil {
		return err
	}

	authenticated, err := gate.Resume()
	if err != nil {
		return err
	}
	if !authenticated {
		return fmt.Errorf("not logged in. Run 'ecocharge login' first")
	}
	client.SetToken(gate.Token())

	snapshot, err := client.DashboardStats(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %s", api.Reason(err))
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printSnapshot(snapshot)
	return nil
}

// printSnapshot renders a snapshot for terminal output
func printSnapshot(s *api.DashboardSnapshot) {
	rule := strings.Repeat("─", outputWidth())

	fmt.Println("EcoCharge network snapshot")
	fmt.Println(rule)
	fmt.Printf("  Delivered:    %.1f kWh\n", s.TotalDeliveredKWh)
	fmt.Printf("  Green users:  %d\n", s.RenewableUsers)
	fmt.Printf("  Grid users:   %d\n", s.ConventionalUsers)
	fmt.Printf("  Paused:       %d\n", s.PausedUsers)
	fmt.Printf("  Grid load:    %.1f / %.1f kW (%.0f%%)\n", s.ActiveLoadKW, s.GridCapacityKW, s.CapacityPercent())
	fmt.Printf("  Solar:        %.1f kW\n", s.SolarNowKW)
	fmt.Printf("  Wind:         %.1f kW\n", s.WindNowKW)
	fmt.Printf("  Green spare:  %.1f kW\n", s.NetGreenAvailableKW)
	fmt.Printf("  Green score:  %d/100\n", s.SystemHealth.GreenScore)
	fmt.Println(rule)

	fmt.Printf("Live sessions (%d):\n", len(s.LiveSessions))
	for _, live := range s.LiveSessions {
		fmt.Printf("  Slot %-3d %-14s %-12s %s\n",
			live.SlotID, live.VehicleNumber, live.Mode, live.CurrentSource)
	}
}

// outputWidth returns the terminal width capped for readability
func outputWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 60
	}
	if width > 100 {
		return 100
	}
	return width
}

// loginCmd authenticates and persists the credential
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the admin credential",
	Long: `Authenticate against the charging service and persist the credential.

Subsequent 'stats' and 'admin' invocations reuse the persisted credential
until 'ecocharge logout'.`,
	Example: `  ecocharge login --username admin --password secret`,
	RunE:    runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "Admin username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Admin password")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	gate, err := newGate(client)
	if err != nil {
		return err
	}

	if err := gate.Login(context.Background(), loginUsername, loginPassword); err != nil {
		return fmt.Errorf("login failed: %s", api.Reason(err))
	}

	fmt.Printf("✓ Logged in as %s\n", loginUsername)
	return nil
}

// logoutCmd removes the persisted credential
var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Log out and remove the persisted credential",
	Example: `  ecocharge logout`,
	RunE:    runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := auth.NewFileStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Println("✓ Logged out")
	return nil
}

// scanCmd discovers charging services on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for EcoCharge services on the network",
	Long: `Scan for EcoCharge services using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from EcoCharge services and
displays all discovered endpoints with their addresses and metadata.`,
	Example: `  # Scan with the settings timeout (10s unless configured)
  ecocharge scan

  # Quick 3-second scan
  ecocharge scan --scan-timeout 3

  # Wait for a specific station to appear
  ecocharge scan --station lot-b-east`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "Scan timeout in seconds (default from settings)")
	scanCmd.Flags().StringVar(&scanStation, "station", "", "Wait for the named station instead of listing all services")
}

// scanWindow resolves the scan timeout: the flag wins, then the
// discover_timeout_seconds setting.
func scanWindow() time.Duration {
	if scanTimeout > 0 {
		return time.Duration(scanTimeout) * time.Second
	}
	if settings, err := config.Load(); err == nil {
		return settings.DiscoverTimeout()
	}
	return discovery.DefaultScanTimeout
}

func runScan(cmd *cobra.Command, args []string) error {
	timeout := scanWindow()

	if scanStation != "" {
		fmt.Printf("Waiting for station %q (timeout: %s)...\n\n", scanStation, timeout)
		endpoint, err := discovery.WaitForStation(scanStation, timeout)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		fmt.Println(endpoint.String())
		fmt.Printf("\nUse 'ecocharge terminal --server %s' to connect\n", endpoint.BaseURL())
		return nil
	}

	fmt.Printf("Scanning for EcoCharge services (timeout: %s)...\n\n", timeout)

	endpoints, err := discovery.Scan(timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(endpoints) == 0 {
		fmt.Println("No services found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the charging service is running on this network")
		fmt.Println("  - Check that mDNS (UDP 5353) is not blocked by a firewall")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --server to specify the service address manually")
		return nil
	}

	fmt.Printf("Found %d service(s):\n\n", len(endpoints))

	for i, endpoint := range endpoints {
		fmt.Printf("%d. %s\n", i+1, endpoint.Instance)
		fmt.Printf("   Address: %s:%d\n", endpoint.IP, endpoint.Port)
		if station := endpoint.Station(); station != "" {
			fmt.Printf("   Station: %s\n", station)
		}
		if len(endpoint.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", endpoint.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'ecocharge terminal --server http://<address>:<port>' to connect")

	return nil
}
