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
	"github.com/ecocharge/console/internal/session"
	"github.com/ecocharge/console/internal/vehicle"
)

// Messages for async operations
type connectDoneMsg struct {
	outcome *api.ConnectionOutcome
	err     error
}

// terminalKeyMap defines key bindings for the charging terminal screen
type terminalKeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Mode      key.Binding
	Adjust    key.Binding
	Connect   key.Binding
	Admin     key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k terminalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Mode, k.Adjust, k.Connect, k.Admin, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k terminalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Mode, k.Adjust},
		{k.Connect, k.Admin, k.Quit},
	}
}

// receiptKeyMap defines key bindings for the receipt view
type receiptKeyMap struct {
	Disconnect key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k receiptKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Disconnect, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k receiptKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Disconnect, k.Quit},
	}
}

// TerminalModel represents the charging terminal screen state
type TerminalModel struct {
	Flow     *session.Flow
	Composer *vehicle.Composer
	Mode     session.ModeSelection

	// Identifier entry state, one input per segment
	Inputs  []textinput.Model
	Focused int

	// Mode selection state
	ModeFocused bool

	// Result state
	LastError error

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    terminalKeyMap
	RKeys   receiptKeyMap
}

// NewTerminalModel creates a new charging terminal screen model
func NewTerminalModel(flow *session.Flow) TerminalModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	inputs := make([]textinput.Model, vehicle.SegmentCount)
	placeholders := []string{"KA", "01", "AB", "1234"}
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = vehicle.SegmentLength(i)
		in.Width = vehicle.SegmentLength(i) + 1
		in.Prompt = ""
		inputs[i] = in
	}
	inputs[0].Focus()

	keys := terminalKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Mode: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "charge mode"),
		),
		Adjust: key.NewBinding(
			key.WithKeys("+", "-"),
			key.WithHelp("+/-", "adjust kWh"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Admin: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "admin"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}

	rKeys := receiptKeyMap{
		Disconnect: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "disconnect"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}

	return TerminalModel{
		Flow:     flow,
		Composer: &vehicle.Composer{},
		Mode:     session.NewModeSelection(),
		Inputs:   inputs,
		Spinner:  s,
		Help:     help.New(),
		Keys:     keys,
		RKeys:    rKeys,
	}
}

// Init initializes the terminal model
func (m TerminalModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m TerminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.Flow.State() {
		case session.StateSubmitting:
			// Input is locked while a request is in flight
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case session.StateAuthorized:
			return m.updateReceipt(msg)
		default:
			return m.updateEntry(msg)
		}

	case connectDoneMsg:
		if msg.err != nil {
			m.Flow.Fail(msg.err)
			m.LastError = msg.err
		} else {
			m.Flow.Complete(msg.outcome)
			m.LastError = nil
		}
		return m, nil

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateEntry handles keyboard input on the identifier entry screen
func (m TerminalModel) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// "q" stays typeable here: the identifier segments accept letters.
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		if m.ModeFocused {
			m.setFocus(0)
		} else if m.Focused == len(m.Inputs)-1 {
			m.focusMode()
		} else {
			m.setFocus(m.Focused + 1)
		}
		return m, nil

	case "shift+tab":
		if m.ModeFocused {
			m.setFocus(len(m.Inputs) - 1)
		} else if m.Focused > 0 {
			m.setFocus(m.Focused - 1)
		}
		return m, nil

	case "left":
		m.cycleMode(-1)
		return m, nil

	case "right":
		m.cycleMode(1)
		return m, nil

	case "+", "=":
		if kwh, ok := m.Mode.Limit(); ok {
			m.Mode.SetLimit(kwh + 5)
		}
		return m, nil

	case "-", "_":
		if kwh, ok := m.Mode.Limit(); ok {
			m.Mode.SetLimit(kwh - 5)
		}
		return m, nil

	case "enter":
		return m.startConnect()
	}

	if m.ModeFocused {
		return m, nil
	}

	// Feed the keystroke to the focused input, then mirror its sanitized
	// value back so the composer stays the single source of truth.
	var cmd tea.Cmd
	m.Inputs[m.Focused], cmd = m.Inputs[m.Focused].Update(msg)

	full := m.Composer.SetSegment(m.Focused, m.Inputs[m.Focused].Value())
	m.Inputs[m.Focused].SetValue(m.Composer.Segment(m.Focused))
	m.Inputs[m.Focused].CursorEnd()

	// Auto-advance once a segment fills
	if full && m.Focused < len(m.Inputs)-1 {
		m.setFocus(m.Focused + 1)
	}

	return m, cmd
}

// updateReceipt handles keyboard input on the receipt view
func (m TerminalModel) updateReceipt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "d":
		if err := m.Flow.Reset(); err != nil {
			return m, nil
		}
		m.Composer.Reset()
		m.Mode = session.NewModeSelection()
		m.LastError = nil
		for i := range m.Inputs {
			m.Inputs[i].SetValue("")
		}
		m.setFocus(0)
		m.ModeFocused = false
		return m, textinput.Blink
	}

	return m, nil
}

// startConnect validates the identifier and dispatches the connect request
func (m TerminalModel) startConnect() (tea.Model, tea.Cmd) {
	req, err := m.Flow.Begin(m.Composer, m.Mode)
	if err != nil {
		m.LastError = err
		return m, nil
	}
	m.LastError = nil

	return m, tea.Batch(
		connectCmd(m.Flow, req),
		m.Spinner.Tick,
	)
}

// connectCmd issues the connect request off the UI loop
func connectCmd(flow *session.Flow, req api.ConnectRequest) tea.Cmd {
	return func() tea.Msg {
		outcome, err := flow.Dispatch(context.Background(), req)
		return connectDoneMsg{outcome: outcome, err: err}
	}
}

func (m *TerminalModel) setFocus(i int) {
	m.ModeFocused = false
	for j := range m.Inputs {
		if j == i {
			m.Inputs[j].Focus()
		} else {
			m.Inputs[j].Blur()
		}
	}
	m.Focused = i
}

func (m *TerminalModel) focusMode() {
	m.ModeFocused = true
	for j := range m.Inputs {
		m.Inputs[j].Blur()
	}
}

func (m *TerminalModel) cycleMode(delta int) {
	order := []session.ModeKind{session.ModeImmediate, session.ModeOptimized, session.ModeBounded}
	current := 0
	for i, kind := range order {
		if kind == m.Mode.Kind() {
			current = i
			break
		}
	}
	next := (current + delta + len(order)) % len(order)
	m.Mode.Choose(order[next])
}

// View renders the terminal screen
func (m TerminalModel) View() string {
	var content string
	var helpText string

	switch m.Flow.State() {
	case session.StateSubmitting:
		content = m.renderSubmitting()
		helpText = "requesting a slot..."
	case session.StateAuthorized:
		content = m.renderReceipt()
		helpText = m.Help.View(m.RKeys)
	default:
		content = m.renderEntry()
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderEntry renders the identifier entry and mode selection form
func (m TerminalModel) renderEntry() string {
	var b strings.Builder

	b.WriteString(RenderTitle("⚡ Connect Your Vehicle"))
	b.WriteString("\n\n")

	b.WriteString("  Vehicle number:\n\n")
	b.WriteString("  ")
	for i, in := range m.Inputs {
		box := InfoBoxStyle.Padding(0, 1).MarginTop(0).MarginBottom(0)
		if i == m.Focused && !m.ModeFocused {
			box = box.BorderForeground(HighlightColor)
		}
		b.WriteString(box.Render(in.View()))
		if i < len(m.Inputs)-1 {
			b.WriteString(" - ")
		}
	}
	b.WriteString("\n\n")

	b.WriteString("  Charge mode:\n\n")
	b.WriteString(m.renderModeCards())
	b.WriteString("\n\n")

	if kwh, ok := m.Mode.Limit(); ok {
		b.WriteString(fmt.Sprintf("  Energy limit: %d kWh  (+/- to adjust, %d-%d)\n\n",
			kwh, session.MinLimitKWh, session.MaxLimitKWh))
	}

	if m.LastError != nil {
		b.WriteString(ErrorBoxStyle.Render("Error: " + api.Reason(m.LastError)))
		b.WriteString("\n\n")
	}

	if m.Composer.Valid() {
		b.WriteString(SubtleReadyLine())
	}

	return b.String()
}

// SubtleReadyLine renders the ready-to-connect hint
func SubtleReadyLine() string {
	return SubtitleStyle.Render("  Press enter to connect") + "\n"
}

// renderModeCards renders the three charge mode cards side by side
func (m TerminalModel) renderModeCards() string {
	order := []session.ModeKind{session.ModeImmediate, session.ModeOptimized, session.ModeBounded}
	descriptions := map[session.ModeKind]string{
		session.ModeImmediate: "Start immediately",
		session.ModeOptimized: "Cheapest full charge",
		session.ModeBounded:   "Charge up to a limit",
	}

	cards := make([]string, 0, len(order))
	for _, kind := range order {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 2).
			MarginLeft(2)
		if kind == m.Mode.Kind() {
			style = style.BorderForeground(HighlightColor).Bold(true)
		}
		cards = append(cards, style.Render(kind.String()+"\n"+descriptions[kind]))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderSubmitting renders the in-flight request panel
func (m TerminalModel) renderSubmitting() string {
	var b strings.Builder

	b.WriteString("\n\n")
	status := fmt.Sprintf("%s Requesting a charging slot for %s...", m.Spinner.View(), m.Composer.String())
	b.WriteString(lipgloss.Place(CalculateBoxWidth(m.Width)-4, 0, lipgloss.Center, lipgloss.Top,
		SpinnerStyle.Render(status)))
	b.WriteString("\n")

	return b.String()
}

// renderReceipt renders the authorized session receipt
func (m TerminalModel) renderReceipt() string {
	var b strings.Builder

	outcome := m.Flow.Outcome()
	if outcome == nil {
		return ""
	}

	b.WriteString(RenderTitle("✓ Charging Session Authorized"))
	b.WriteString("\n\n")

	badge := RenderSourceBadge(string(outcome.InitialSource), outcome.InitialSource.IsRenewable())

	receipt := fmt.Sprintf("  Vehicle:        %s\n", m.Composer.String())
	receipt += fmt.Sprintf("  Slot:           #%d\n", outcome.SlotID)
	receipt += fmt.Sprintf("  Charge mode:    %s\n", m.Mode.Kind())
	if kwh, ok := m.Mode.Limit(); ok {
		receipt += fmt.Sprintf("  Energy limit:   %d kWh\n", kwh)
	}
	receipt += fmt.Sprintf("  Initial source: %s\n", badge)
	receipt += fmt.Sprintf("  Estimated bill: ₹%.2f\n", outcome.EstBill)

	b.WriteString(InfoBoxStyle.Render(receipt))
	b.WriteString("\n\n")

	b.WriteString(MenuItemStyle.Render("  d - Disconnect and start a new session"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q - Exit application"))
	b.WriteString("\n")

	return b.String()
}
