// Package tui implements the conversational interface: a chat history, a
// question input and per-answer source attribution.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gnss-assistant/internal/engine"
)

// Temperature bounds exposed to the user.
const (
	minTemperature  = 0.0
	maxTemperature  = 1.5
	temperatureStep = 0.1
)

// Asker is the TUI-facing subset of the query engine.
type Asker interface {
	Answer(ctx context.Context, question string, opts engine.Options) (engine.Answer, error)
}

// message is one (role, content) turn of the conversation.
type message struct {
	role    string
	content string
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	engine      Asker
	input       textinput.Model
	viewport    viewport.Model
	messages    []message
	temperature float64
	status      string
	thinking    bool
	ready       bool
}

type answerMsg struct {
	answer engine.Answer
}

type answerErrMsg struct {
	err error
}

// New creates a new chat model instance.
func New(eng Asker, temperature float64) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What do you want to know..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if temperature < minTemperature || temperature > maxTemperature {
		temperature = engine.DefaultTemperature
	}
	return Model{
		engine:      eng,
		input:       ti,
		viewport:    vp,
		temperature: temperature,
		status:      "Ask a GNSS question.",
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
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderConversation())
		return m, nil
	case answerMsg:
		m.thinking = false
		m.status = "Ready."
		m.messages = append(m.messages, message{role: "assistant", content: formatAnswer(msg.answer)})
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil
	case answerErrMsg:
		m.thinking = false
		m.status = "Ready."
		// The failure stays in the conversation as the assistant's turn.
		m.messages = append(m.messages, message{role: "assistant", content: "Error: " + msg.err.Error()})
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.thinking {
				m.messages = append(m.messages, message{role: "user", content: q})
				m.input.SetValue("")
				m.thinking = true
				m.status = "Hmm... let me think..."
				m.viewport.SetContent(m.renderConversation())
				m.viewport.GotoBottom()
				return m, m.ask(q)
			}
		case "ctrl+up":
			m.temperature = clamp(m.temperature+temperatureStep, minTemperature, maxTemperature)
			return m, nil
		case "ctrl+down":
			m.temperature = clamp(m.temperature-temperatureStep, minTemperature, maxTemperature)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the query off the event loop and reports back as a message.
func (m Model) ask(question string) tea.Cmd {
	eng := m.engine
	temperature := m.temperature
	return func() tea.Msg {
		answer, err := eng.Answer(context.Background(), question, engine.Options{Temperature: temperature})
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{answer: answer}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ProfessorNav · GNSS Assistant")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(fmt.Sprintf("%s  temp=%.1f (ctrl+↑/↓)", m.status, m.temperature))
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		return "No messages yet. Ask about GNSS theory, algorithms or satellite data."
	}
	parts := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		label := userLabelStyle.Render("You")
		if msg.role == "assistant" {
			label = assistantLabelStyle.Render("ProfessorNav")
		}
		parts = append(parts, label+"\n"+msg.content)
	}
	return strings.Join(parts, "\n\n")
}

// formatAnswer appends the source documents under the answer text.
func formatAnswer(a engine.Answer) string {
	if len(a.Sources) == 0 {
		return a.Text
	}
	var sb strings.Builder
	sb.WriteString(a.Text)
	sb.WriteString("\n\nSources:")
	for _, src := range a.Sources {
		sb.WriteString("\n- ")
		sb.WriteString(src.Source)
	}
	return sb.String()
}

var (
	chatBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
