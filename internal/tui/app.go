package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ecocharge/console/internal/auth"
	"github.com/ecocharge/console/internal/poller"
	"github.com/ecocharge/console/internal/session"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenTerminal Screen = "terminal"
	ScreenAdmin    Screen = "admin"
)

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen Screen

	// Screen models
	TerminalModel TerminalModel
	AdminModel    AdminModel

	// UI state
	Width  int
	Height int
}

// NewAppModel creates a new application model starting at the specified screen
func NewAppModel(startScreen Screen, flow *session.Flow, gate *auth.Gate, loop *poller.Loop) AppModel {
	return AppModel{
		CurrentScreen: startScreen,
		TerminalModel: NewTerminalModel(flow),
		AdminModel:    NewAdminModel(gate, loop),
	}
}

// adminActivateMsg routes admin-screen activation through Update so the
// loop start and waiter arming mutate the stored model, not the throwaway
// receiver Init is called on.
type adminActivateMsg struct{}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenAdmin:
		return func() tea.Msg { return adminActivateMsg{} }
	default:
		return m.TerminalModel.Init()
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case adminActivateMsg:
		var cmd tea.Cmd
		m.AdminModel, cmd = m.AdminModel.activate()
		return m, cmd

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.TerminalModel.Width = msg.Width
		m.TerminalModel.Height = msg.Height
		m.AdminModel.Width = msg.Width
		m.AdminModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.AdminModel.Loop.Stop()
			return m, tea.Quit

		case "ctrl+a":
			if m.CurrentScreen == ScreenTerminal {
				return m.transitionTo(ScreenAdmin)
			}

		case "ctrl+t":
			if m.CurrentScreen == ScreenAdmin {
				return m.transitionTo(ScreenTerminal)
			}
		}
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenAdmin:
		updated, c := m.AdminModel.Update(msg)
		m.AdminModel = updated.(AdminModel)
		cmd = c

	default:
		updated, c := m.TerminalModel.Update(msg)
		m.TerminalModel = updated.(TerminalModel)
		cmd = c
	}

	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	// Leaving the dashboard halts polling; returning restarts it
	if m.CurrentScreen == ScreenAdmin && screen != ScreenAdmin {
		m.AdminModel.Loop.Stop()
	}

	m.CurrentScreen = screen

	var cmd tea.Cmd
	switch screen {
	case ScreenAdmin:
		m.AdminModel, cmd = m.AdminModel.activate()
	default:
		cmd = m.TerminalModel.Init()
	}

	return m, cmd
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenAdmin:
		return m.AdminModel.View()
	default:
		return m.TerminalModel.View()
	}
}
