package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ecocharge/console/internal/api"
	"github.com/ecocharge/console/internal/auth"
	"github.com/ecocharge/console/internal/poller"
)

// Messages for async operations
type loginDoneMsg struct {
	err error
}

type snapshotMsg struct {
	snapshot *api.DashboardSnapshot
}

// loginKeyMap defines key bindings for the login form
type loginKeyMap struct {
	NextField key.Binding
	Submit    key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k loginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k loginKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.Submit, k.Quit},
	}
}

// dashboardKeyMap defines key bindings for the dashboard view
type dashboardKeyMap struct {
	Logout key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Logout, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Logout, k.Quit},
	}
}

// AdminModel represents the admin dashboard screen state
type AdminModel struct {
	Gate *auth.Gate
	Loop *poller.Loop

	// Login form state
	Username textinput.Model
	Password textinput.Model
	Focused  int

	// Dashboard state
	Snapshot *api.DashboardSnapshot
	waiting  bool // a waitForSnapshot command is outstanding

	// Result state
	LastError error

	// UI state
	Width     int
	Height    int
	Spinner   spinner.Model
	Help      help.Model
	LoginKeys loginKeyMap
	DashKeys  dashboardKeyMap
}

// NewAdminModel creates a new admin screen model. The gate decides whether
// the login form or the dashboard shows first; call Gate.Resume before
// constructing the model.
func NewAdminModel(gate *auth.Gate, loop *poller.Loop) AdminModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	username := textinput.New()
	username.Placeholder = "admin"
	username.CharLimit = 64
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 64
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	loginKeys := loginKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "login"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}

	dashKeys := dashboardKeyMap{
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}

	return AdminModel{
		Gate:      gate,
		Loop:      loop,
		Username:  username,
		Password:  password,
		Spinner:   s,
		Help:      help.New(),
		LoginKeys: loginKeys,
		DashKeys:  dashKeys,
	}
}

// Init satisfies tea.Model. Starting the sync loop and arming its waiter
// happen in activate, driven through the app model's update path, so the
// armed state lands in the stored model rather than a discarded copy.
func (m AdminModel) Init() tea.Cmd {
	return textinput.Blink
}

// activate starts the sync loop when the gate is open and arms the updates
// waiter. Called on entry to the admin screen; safe to call repeatedly.
func (m AdminModel) activate() (AdminModel, tea.Cmd) {
	if !m.Gate.Authenticated() {
		return m, textinput.Blink
	}
	m.Loop.Start()
	var arm tea.Cmd
	m, arm = m.armWaiter()
	return m, tea.Batch(textinput.Blink, arm)
}

// armWaiter dispatches a waitForSnapshot command unless one is already
// outstanding. Exactly one waiter is parked on the updates channel at a
// time; stacking more would make every delivered snapshot fan out into
// extra parked goroutines.
func (m AdminModel) armWaiter() (AdminModel, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	m.waiting = true
	return m, waitForSnapshot(m.Loop)
}

// Update handles messages and updates the model
func (m AdminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.Gate.Authenticated() {
			return m.updateDashboard(msg)
		}
		return m.updateLogin(msg)

	case loginDoneMsg:
		if msg.err != nil {
			m.LastError = msg.err
			return m, nil
		}
		m.LastError = nil
		m.Password.SetValue("")
		m.Loop.Start()
		// A waiter from a previous session may still be parked on the
		// updates channel; armWaiter won't stack another one.
		var arm tea.Cmd
		m, arm = m.armWaiter()
		return m, arm

	case snapshotMsg:
		if msg.snapshot != nil {
			m.Snapshot = msg.snapshot
		}
		// This delivery consumed the outstanding waiter.
		m.waiting = false
		if m.Gate.Authenticated() {
			var arm tea.Cmd
			m, arm = m.armWaiter()
			return m, arm
		}
		return m, nil

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateLogin handles keyboard input on the login form
func (m AdminModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		if m.Focused == 0 {
			m.Focused = 1
			m.Username.Blur()
			m.Password.Focus()
		} else {
			m.Focused = 0
			m.Password.Blur()
			m.Username.Focus()
		}
		return m, nil

	case "enter":
		if m.Gate.Pending() {
			return m, nil
		}
		username := m.Username.Value()
		password := m.Password.Value()
		if username == "" || password == "" {
			m.LastError = api.NewValidationError("Username and password are required")
			return m, nil
		}
		m.LastError = nil
		return m, tea.Batch(
			loginCmd(m.Gate, username, password),
			m.Spinner.Tick,
		)
	}

	var cmd tea.Cmd
	if m.Focused == 0 {
		m.Username, cmd = m.Username.Update(msg)
	} else {
		m.Password, cmd = m.Password.Update(msg)
	}
	return m, cmd
}

// updateDashboard handles keyboard input on the dashboard view
func (m AdminModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.Loop.Stop()
		return m, tea.Quit

	case "ctrl+l":
		// Logout stops the sync loop before the gate closes
		m.Loop.Stop()
		if err := m.Gate.Logout(); err != nil {
			m.LastError = err
			return m, nil
		}
		m.Snapshot = nil
		m.LastError = nil
		m.Username.SetValue("")
		m.Password.SetValue("")
		m.Focused = 0
		m.Username.Focus()
		m.Password.Blur()
		return m, textinput.Blink
	}

	return m, nil
}

// loginCmd issues the login request off the UI loop
func loginCmd(gate *auth.Gate, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := gate.Login(context.Background(), username, password)
		return loginDoneMsg{err: err}
	}
}

// waitForSnapshot blocks on the next sync loop update
func waitForSnapshot(loop *poller.Loop) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{snapshot: <-loop.Updates()}
	}
}

// View renders the admin screen
func (m AdminModel) View() string {
	var content string
	var helpText string

	if m.Gate.Authenticated() {
		content = m.renderDashboard()
		helpText = m.Help.View(m.DashKeys)
	} else {
		content = m.renderLogin()
		helpText = m.Help.View(m.LoginKeys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderLogin renders the login form
func (m AdminModel) renderLogin() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Operator Login"))
	b.WriteString("\n\n")

	b.WriteString("  Username: ")
	b.WriteString(m.Username.View())
	b.WriteString("\n\n")
	b.WriteString("  Password: ")
	b.WriteString(m.Password.View())
	b.WriteString("\n\n")

	if m.Gate.Pending() {
		b.WriteString("  ")
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " Signing in..."))
		b.WriteString("\n\n")
	}

	if m.LastError != nil {
		b.WriteString(ErrorBoxStyle.Render("Login failed: " + api.Reason(m.LastError)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderDashboard renders the live network dashboard
func (m AdminModel) renderDashboard() string {
	var b strings.Builder

	b.WriteString(RenderTitle("⚡ Network Dashboard"))
	b.WriteString("\n")

	if m.Snapshot == nil {
		b.WriteString("  ")
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " Waiting for first snapshot..."))
		b.WriteString("\n")
		return b.String()
	}

	s := m.Snapshot

	// Stat tiles
	tiles := []string{
		m.renderStatTile("Delivered", fmt.Sprintf("%.1f kWh", s.TotalDeliveredKWh)),
		m.renderStatTile("Green users", fmt.Sprintf("%d", s.RenewableUsers)),
		m.renderStatTile("Grid users", fmt.Sprintf("%d", s.ConventionalUsers)),
		m.renderStatTile("Paused", fmt.Sprintf("%d", s.PausedUsers)),
		m.renderStatTile("Green score", fmt.Sprintf("%d/100", s.SystemHealth.GreenScore)),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	b.WriteString("\n\n")

	// Grid load and green supply
	load := fmt.Sprintf("  Grid load:   %.1f / %.1f kW (%.0f%%)\n",
		s.ActiveLoadKW, s.GridCapacityKW, s.CapacityPercent())
	load += fmt.Sprintf("  Solar:       %.1f kW\n", s.SolarNowKW)
	load += fmt.Sprintf("  Wind:        %.1f kW\n", s.WindNowKW)
	load += fmt.Sprintf("  Green spare: %.1f kW", s.NetGreenAvailableKW)
	b.WriteString(load)
	b.WriteString("\n\n")

	// Live sessions
	b.WriteString(fmt.Sprintf("  Live sessions (%d):\n\n", len(s.LiveSessions)))
	if len(s.LiveSessions) == 0 {
		b.WriteString(SubtitleStyle.Render("    No vehicles connected"))
		b.WriteString("\n")
	} else {
		for _, session := range s.LiveSessions {
			badge := RenderSourceBadge(string(session.CurrentSource), session.CurrentSource.IsRenewable())
			b.WriteString(fmt.Sprintf("    Slot %-3d %-14s %-12s %s\n",
				session.SlotID, session.VehicleNumber, session.Mode, badge))
		}
	}

	return b.String()
}

// renderStatTile renders one dashboard stat in a small bordered box
func (m AdminModel) renderStatTile(label, value string) string {
	tile := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2)

	content := lipgloss.NewStyle().Bold(true).Render(value) + "\n" +
		SubtitleStyle.Render(label)

	return tile.Render(content)
}
