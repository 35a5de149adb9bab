// Package tui implements an interactive terminal front end for the
// research agent using Bubble Tea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/smhanov/wikifacts"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type statusMsg string

type chunkMsg string

type doneMsg struct {
	result wikifacts.Result
	err    error
}

// Model drives the interactive session.
type Model struct {
	agent  *wikifacts.Agent
	format wikifacts.OutputFormat

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	events chan tea.Msg
	cancel context.CancelFunc

	running bool
	status  string
	answer  string
	ready   bool
}

// New builds the TUI model around a configured agent.
func New(agent *wikifacts.Agent, format wikifacts.OutputFormat) Model {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Focus()
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	return Model{
		agent:    agent,
		format:   format,
		input:    input,
		spin:     spin,
		renderer: renderer,
		events:   make(chan tea.Msg, 32),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// listen waits for the next event from the in-flight query.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) startQuery(question string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	m.status = "Starting research process..."
	m.answer = ""

	events := m.events
	agent := m.agent
	format := m.format
	go func() {
		result, err := agent.QueryStream(ctx, question,
			func(chunk string) { events <- chunkMsg(chunk) },
			wikifacts.WithFormat(format),
			wikifacts.WithStatusFunc(func(msg string) { events <- statusMsg(msg) }),
		)
		events <- doneMsg{result: result, err: err}
	}()
	return tea.Batch(m.spin.Tick, m.listen())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.running {
				return m, nil
			}
			m.input.SetValue("")
			return m, m.startQuery(question)
		}

	case tea.WindowSizeMsg:
		viewHeight := msg.Height - 6
		if viewHeight < 3 {
			viewHeight = 3
		}
		if !m.ready {
			m.view = viewport.New(msg.Width, viewHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = viewHeight
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, m.listen()

	case chunkMsg:
		m.answer += string(msg)
		m.setContent(m.answer)
		m.view.GotoBottom()
		return m, m.listen()

	case doneMsg:
		m.running = false
		m.status = ""
		if msg.err != nil {
			m.setContent(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			m.setContent(msg.result.Text)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// setContent renders markdown answers through glamour when possible.
func (m *Model) setContent(text string) {
	if !m.ready {
		return
	}
	if m.format == wikifacts.FormatCitation && m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			m.view.SetContent(rendered)
			return
		}
	}
	m.view.SetContent(text)
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("wikifacts"))
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	if m.running {
		b.WriteString(m.spin.View())
		b.WriteString(" ")
		b.WriteString(statusStyle.Render(m.status))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: ask  •  esc: quit"))
	return b.String()
}

// Run starts the interactive session and blocks until the user quits.
func Run(agent *wikifacts.Agent, format wikifacts.OutputFormat) error {
	p := tea.NewProgram(New(agent, format), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
