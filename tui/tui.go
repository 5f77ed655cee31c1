// Package tui provides the interactive chat surface.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragdoc"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sourceStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

// answerMsg carries the result of one Session.Ask call.
type answerMsg struct {
	question string
	answer   *ragdoc.Answer
	err      error
}

// Model is the bubbletea model of a chat session. Questions are asked one
// at a time; input is ignored while an answer is pending.
type Model struct {
	ctx     context.Context
	session *ragdoc.Session
	title   string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	pending bool
	lastErr error
	width   int
	ready   bool
}

// NewModel creates a chat model that asks questions through session.
func NewModel(ctx context.Context, session *ragdoc.Session, title string) *Model {
	in := textinput.New()
	in.Placeholder = "Ask a question about the documentation"
	in.Prompt = "> "
	in.Focus()

	return &Model{
		ctx:      ctx,
		session:  session,
		title:    title,
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:    80,
	}
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys, window resizes and answers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-5, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.pending = false
		m.lastErr = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	question := strings.TrimSpace(m.input.Value())
	if m.pending || question == "" {
		return nil
	}
	if question == "/exit" || question == "/quit" {
		return tea.Quit
	}

	m.input.SetValue("")
	m.pending = true
	m.lastErr = nil

	ask := func() tea.Msg {
		answer, err := m.session.Ask(m.ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
	return tea.Batch(ask, m.spinner.Tick)
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.Transcript())
	m.viewport.GotoBottom()
}

// Transcript renders the session history.
func (m *Model) Transcript() string {
	var b strings.Builder
	for _, turn := range m.session.Turns() {
		b.WriteString(questionStyle.Render("Q: " + turn.Question))
		b.WriteString("\n")
		b.WriteString(turn.Answer.Text)
		b.WriteString("\n")
		if urls := turn.Answer.SourceURLs(); len(urls) > 0 {
			b.WriteString(sourceStyle.Render("Sources: " + strings.Join(urls, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the screen.
func (m *Model) View() string {
	var status string
	switch {
	case m.pending:
		status = m.spinner.View() + " thinking..."
	case m.lastErr != nil:
		status = errorStyle.Render("error: "+errorText(m.lastErr)) + statusStyle.Render("  (press enter to retry with a new question)")
	default:
		status = statusStyle.Render(fmt.Sprintf("%d turns  enter: ask  pgup/pgdn: scroll  esc: quit", m.session.Len()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		m.viewport.View(),
		status,
		m.input.View(),
	)
}

// Run starts the full-screen chat until the user quits or ctx is done.
func Run(ctx context.Context, session *ragdoc.Session, title string, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(NewModel(ctx, session, title),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
