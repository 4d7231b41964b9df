package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"bootstrap/agent"
	"bootstrap/message"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(1).
			MarginBottom(1)
)

// model is the bubbletea state for a single prompt round-trip.
type model struct {
	ctx      context.Context
	agent    *agent.Agent
	prompt   string
	spinner  spinner.Model
	viewport viewport.Model
	reply    message.Message
	err      error
	elapsed  time.Duration
	finished bool
	quitting bool
	ready    bool
}

// replyMsg carries the outcome of the prompt.
type replyMsg struct {
	reply   message.Message
	err     error
	elapsed time.Duration
}

func newModel(ctx context.Context, a *agent.Agent, prompt string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	return model{ctx: ctx, agent: a, prompt: prompt, spinner: s}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sendPrompt())
}

func (m model) sendPrompt() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		reply, err := m.agent.SendPrompt(m.ctx, message.PromptRequest{
			message.System(assistantPersona + " Format answers as markdown."),
			message.User(m.prompt),
		})
		return replyMsg{reply: reply, err: err, elapsed: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.YPosition = 1
			m.ready = true
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		if m.finished {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		if m.finished {
			switch msg.String() {
			case "home", "g":
				m.viewport.GotoTop()
			case "end", "G":
				m.viewport.GotoBottom()
			}
		}

	case spinner.TickMsg:
		if !m.finished && !m.quitting {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case replyMsg:
		m.reply = msg.reply
		m.err = msg.err
		m.elapsed = msg.elapsed
		m.finished = true
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
	}

	if m.finished && m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting {
		return "\nGoodbye! 👋\n"
	}
	if !m.finished {
		return fmt.Sprintf("\n%s Agent %s is waiting for the model...\n\n", m.spinner.View(), m.agent.ID())
	}
	if !m.ready {
		return "\nInitializing...\n"
	}

	header := titleStyle.Render(fmt.Sprintf("🤖 Agent %s replied in %v", m.agent.ID(), m.elapsed.Round(time.Millisecond)))
	footer := "\n" + lipgloss.NewStyle().Faint(true).Render("↑/↓: scroll • q/ctrl+c: quit • g/G: top/bottom")
	return header + "\n" + m.viewport.View() + footer
}

// renderContent renders the reply as markdown, or the error.
func (m model) renderContent() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Agent: %s\nError: %s", m.agent.ID(), m.err))
	}
	if m.reply.Empty() {
		return "_No content produced._"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.viewport.Width-4),
	)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to create markdown renderer: %v", err)) + "\n" + m.reply.Content
	}
	rendered, err := renderer.Render(m.reply.Content)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to render markdown: %v", err)) + "\n" + m.reply.Content
	}
	return strings.TrimRight(rendered, "\n")
}

// runTUI sends one prompt and shows the reply in a scrollable view.
func runTUI(ctx context.Context, a *app, args []string) error {
	prompt := strings.Join(args, " ")
	if prompt == "" {
		prompt = "Explain recursion in programming with a short Go example."
	}

	// Keep routine logs from drawing over the alternate screen.
	a.logger.SetLevel(log.WarnLevel)

	program := tea.NewProgram(newModel(ctx, a.newAgent("0"), prompt), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return err
	}
	a.saveUsage()
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}
