// Package tui renders a local table in the terminal and collects the human
// player's decisions. The model is event-driven: the game session pushes
// messages into the program and reads decisions back over a channel, so the
// engine never blocks on rendering.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/poker"
)

// LogMsg appends a line to the game log.
type LogMsg string

// ActionRequestMsg asks the human to act.
type ActionRequestMsg struct {
	PlayerID  string
	HoleCards []poker.Card
	Board     []poker.Card
	Pot       int
	Actions   game.ValidActions
	Rejection string // set when the previous submission was rejected
	Hint      string // training hint, empty when training is off
}

// SessionDoneMsg ends the program.
type SessionDoneMsg struct{}

// Model is the Bubble Tea model for local play.
type Model struct {
	logView viewport.Model
	input   textinput.Model

	decisions chan<- game.PlayerAction

	lines    []string
	request  *ActionRequestMsg
	errLine  string
	width    int
	height   int
	quitting bool
}

// NewModel creates the model. Decisions are delivered on the given channel.
func NewModel(decisions chan<- game.PlayerAction) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, bet 50, raise 60, allin"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	return &Model{
		logView:   vp,
		input:     ti,
		decisions: decisions,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width
		m.logView.Height = max(msg.Height-6, 3)
		m.refreshLog()

	case LogMsg:
		m.lines = append(m.lines, string(msg))
		m.refreshLog()

	case ActionRequestMsg:
		request := msg
		m.request = &request
		m.errLine = ""
		m.input.SetValue("")

	case SessionDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.submit()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() {
	if m.request == nil {
		return
	}
	action, err := ParseActionInput(m.input.Value(), m.request.PlayerID, m.request.Actions)
	if err != nil {
		m.errLine = err.Error()
		return
	}

	select {
	case m.decisions <- action:
		m.request = nil
		m.errLine = ""
		m.input.SetValue("")
	default:
		m.errLine = "decision already submitted"
	}
}

func (m *Model) refreshLog() {
	m.logView.SetContent(logStyle.Render(strings.Join(m.lines, "\n")))
	m.logView.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("holdem"))
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n")

	if m.request != nil {
		b.WriteString(fmt.Sprintf("cards: %s  board: %s  %s\n",
			RenderCards(m.request.HoleCards),
			RenderCards(m.request.Board),
			potStyle.Render(fmt.Sprintf("pot %d", m.request.Pot))))
		b.WriteString(actionsStyle.Render(describeActions(m.request.Actions)))
		b.WriteString("\n")
		if m.request.Hint != "" {
			b.WriteString(hintStyle.Render("hint: " + m.request.Hint))
			b.WriteString("\n")
		}
		if m.request.Rejection != "" {
			b.WriteString(errorStyle.Render("rejected: " + m.request.Rejection))
			b.WriteString("\n")
		}
	}
	if m.errLine != "" {
		b.WriteString(errorStyle.Render(m.errLine))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return lipgloss.NewStyle().Width(m.width).Render(b.String())
}

// describeActions summarizes the legality surface for the prompt line.
func describeActions(va game.ValidActions) string {
	var parts []string
	if va.CanCheck {
		parts = append(parts, "check")
	}
	if va.CanCall {
		parts = append(parts, fmt.Sprintf("call %d", va.CallAmount))
	}
	if va.CanBet {
		parts = append(parts, fmt.Sprintf("bet %d-%d", va.MinBet, va.MaxBet))
	}
	if va.CanRaise {
		parts = append(parts, fmt.Sprintf("raise to %d-%d", va.MinRaiseTo, va.MaxRaiseTo))
	}
	if va.CanAllIn {
		parts = append(parts, fmt.Sprintf("allin (%d)", va.AllInAmount))
	}
	parts = append(parts, "fold")
	return strings.Join(parts, " | ")
}

// ParseActionInput turns a typed command into a PlayerAction. Amounts are the
// total street commitment ("raise 60" raises to 60). Legality is only roughly
// pre-checked here; the engine remains the authority and rejections flow back
// through the next ActionRequestMsg.
func ParseActionInput(input, playerID string, va game.ValidActions) (game.PlayerAction, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return game.PlayerAction{}, fmt.Errorf("enter an action")
	}

	// tolerate "raise to 60"
	if len(fields) == 3 && fields[1] == "to" {
		fields = []string{fields[0], fields[2]}
	}

	actionType, ok := game.ParseActionType(fields[0])
	if !ok {
		return game.PlayerAction{}, fmt.Errorf("unknown action %q", fields[0])
	}

	action := game.PlayerAction{PlayerID: playerID, Type: actionType}
	switch actionType {
	case game.Bet, game.Raise:
		if len(fields) < 2 {
			return game.PlayerAction{}, fmt.Errorf("%s needs an amount", fields[0])
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil || amount <= 0 {
			return game.PlayerAction{}, fmt.Errorf("bad amount %q", fields[1])
		}
		action.Amount = amount
	case game.Check:
		if !va.CanCheck {
			return game.PlayerAction{}, fmt.Errorf("cannot check, call %d or fold", va.CallAmount)
		}
	}
	return action, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
