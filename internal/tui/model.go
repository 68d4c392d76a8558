package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AskPort is the TUI-facing subset of the engine.
type AskPort interface {
	Ask(ctx context.Context, id, question string) (string, error)
}

type turn struct {
	question string
	answer   string
	failed   bool
}

// Model is the Bubble Tea model for the chat client: one ingested video,
// its summary on top, a question/answer loop below.
type Model struct {
	service   AskPort
	sessionID string
	summary   string
	input     textinput.Model
	viewport  viewport.Model
	turns     []turn
	status    string
	ready     bool
	waiting   bool
}

type answerMsg struct {
	question string
	answer   string
	err      error
}

// New creates a chat model for an already-ingested session.
func New(service AskPort, sessionID, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the video and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:   service,
		sessionID: sessionID,
		summary:   summary,
		input:     ti,
		viewport:  vp,
		status:    "Video loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil
	case answerMsg:
		m.waiting = false
		t := turn{question: msg.question}
		if msg.err != nil {
			t.answer = msg.err.Error()
			t.failed = true
			m.status = "Error. Try again."
		} else {
			t.answer = msg.answer
			m.status = "Answered. Ask another."
		}
		m.turns = append(m.turns, t)
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.input.SetValue("")
				m.waiting = true
				m.status = "Thinking..."
				service, id := m.service, m.sessionID
				return m, func() tea.Msg {
					answer, err := service.Ask(context.Background(), id, q)
					return answerMsg{question: q, answer: answer, err: err}
				}
			}
		}
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ytlearn  " + m.sessionID)
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	var b strings.Builder
	b.WriteString(summaryStyle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(m.summary)
	for _, t := range m.turns {
		b.WriteString("\n\n")
		b.WriteString(questionStyle.Render(fmt.Sprintf("You: %s", t.question)))
		b.WriteString("\n")
		if t.failed {
			b.WriteString(errorStyle.Render(t.answer))
		} else {
			b.WriteString(t.answer)
		}
	}
	return b.String()
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
