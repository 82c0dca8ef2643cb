// Package tui is a terminal blackjack client built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/game"
)

// Backend is the API surface the terminal client drives
type Backend interface {
	PlayerByName(ctx context.Context, name string) (client.Player, error)
	RegisterPlayer(ctx context.Context, name string) (client.Player, error)
	NewGame(ctx context.Context, playerName string) (game.View, error)
	Hit(ctx context.Context, id string) (game.View, error)
	Stand(ctx context.Context, id string) (game.View, error)
}

type phase int

const (
	phaseName phase = iota
	phasePlaying
	phaseFinished
)

// Messages produced by commands
type (
	playerMsg struct{ player client.Player }
	gameMsg   struct {
		view   game.View
		action string
	}
	errMsg struct{ err error }
)

// Model is the Bubble Tea model
type Model struct {
	ctx     context.Context
	backend Backend
	logger  *log.Logger
	styles  Styles

	phase  phase
	input  textinput.Model
	logVP  viewport.Model
	lines  []string
	busy   bool
	player client.Player
	game   game.View
	err    error

	width    int
	height   int
	quitting bool
}

// NewModel creates the model. If name is set the prompt is skipped.
func NewModel(ctx context.Context, backend Backend, logger *log.Logger, styles Styles, name string) *Model {
	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.Prompt = "Name: "
	ti.PromptStyle = styles.Prompt
	ti.CharLimit = 64
	ti.Width = 40
	ti.SetValue(name)
	ti.Focus()

	return &Model{
		ctx:     ctx,
		backend: backend,
		logger:  logger.WithPrefix("tui"),
		styles:  styles,
		phase:   phaseName,
		input:   ti,
		logVP:   viewport.New(60, 8),
	}
}

// Init starts the cursor, or joins straight away when a name was given
func (m *Model) Init() tea.Cmd {
	if name := strings.TrimSpace(m.input.Value()); name != "" {
		m.busy = true
		return m.join(name)
	}
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logVP.Width = max(msg.Width-4, 20)
		m.logVP.Height = max(msg.Height-16, 3)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case playerMsg:
		m.player = msg.player
		if m.phase == phaseName {
			m.addLine(m.styles.Info.Render(fmt.Sprintf("Welcome, %s", msg.player.Name)))
			return m, m.newGame()
		}
		return m, nil

	case gameMsg:
		m.busy = false
		m.err = nil
		m.game = msg.view
		m.addLine(m.describe(msg.action, msg.view))
		if msg.view.Status.Terminal() {
			m.phase = phaseFinished
			m.addLine(m.outcome(msg.view))
			return m, m.refreshPlayer()
		}
		m.phase = phasePlaying
		return m, nil

	case errMsg:
		m.busy = false
		m.err = msg.err
		m.logger.Debug("Request failed", "error", msg.err)
		m.addLine(m.styles.Error.Render(msg.err.Error()))
		return m, nil
	}

	if m.phase == phaseName {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.logVP, cmd = m.logVP.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	if m.phase == phaseName {
		if msg.Type == tea.KeyEnter {
			name := strings.TrimSpace(m.input.Value())
			if name == "" || m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.join(name)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "h":
		if m.phase == phasePlaying && !m.busy {
			m.busy = true
			return m, m.act("hit", m.backend.Hit)
		}
	case "s":
		if m.phase == phasePlaying && !m.busy {
			m.busy = true
			return m, m.act("stand", m.backend.Stand)
		}
	case "n":
		if m.phase == phaseFinished && !m.busy {
			m.busy = true
			return m, m.newGame()
		}
	case "up", "k":
		m.logVP.ScrollUp(1)
	case "down", "j":
		m.logVP.ScrollDown(1)
	}
	return m, nil
}

// join looks the player up and registers them on first visit
func (m *Model) join(name string) tea.Cmd {
	return func() tea.Msg {
		p, err := m.backend.PlayerByName(m.ctx, name)
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.IsNotFound() {
			p, err = m.backend.RegisterPlayer(m.ctx, name)
		}
		if err != nil {
			return errMsg{err}
		}
		return playerMsg{p}
	}
}

func (m *Model) newGame() tea.Cmd {
	name := m.player.Name
	return func() tea.Msg {
		v, err := m.backend.NewGame(m.ctx, name)
		if err != nil {
			return errMsg{err}
		}
		return gameMsg{view: v, action: "deal"}
	}
}

func (m *Model) act(action string, fn func(context.Context, string) (game.View, error)) tea.Cmd {
	id := m.game.ID
	return func() tea.Msg {
		v, err := fn(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return gameMsg{view: v, action: action}
	}
}

func (m *Model) refreshPlayer() tea.Cmd {
	name := m.player.Name
	return func() tea.Msg {
		p, err := m.backend.PlayerByName(m.ctx, name)
		if err != nil {
			return errMsg{err}
		}
		return playerMsg{p}
	}
}

func (m *Model) addLine(line string) {
	m.lines = append(m.lines, line)
	m.logVP.SetContent(strings.Join(m.lines, "\n"))
	m.logVP.GotoBottom()
}

// Lines returns the round log
func (m *Model) Lines() []string {
	return append([]string(nil), m.lines...)
}
