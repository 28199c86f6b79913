package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnss-assistant/internal/domain"
	"gnss-assistant/internal/engine"
)

type stubAsker struct {
	question string
	answer   engine.Answer
}

func (s *stubAsker) Answer(ctx context.Context, question string, opts engine.Options) (engine.Answer, error) {
	s.question = question
	return s.answer, nil
}

func TestNew_ClampsTemperature(t *testing.T) {
	m := New(&stubAsker{}, 9.9)
	assert.InDelta(t, engine.DefaultTemperature, m.temperature, 1e-9)

	m = New(&stubAsker{}, 1.2)
	assert.InDelta(t, 1.2, m.temperature, 1e-9)
}

func TestUpdate_TemperatureKeys(t *testing.T) {
	m := New(&stubAsker{}, 1.4)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlUp})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlUp})
	m = next.(Model)
	assert.InDelta(t, maxTemperature, m.temperature, 1e-9)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlDown})
	m = next.(Model)
	assert.InDelta(t, maxTemperature-temperatureStep, m.temperature, 1e-9)
}

func TestUpdate_EnterSubmitsQuestion(t *testing.T) {
	asker := &stubAsker{answer: engine.Answer{Text: "answer"}}
	m := New(asker, 0.7)
	m.input.SetValue("  What is a pseudorange?  ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.thinking)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "user", m.messages[0].role)
	assert.Equal(t, "What is a pseudorange?", m.messages[0].content)

	// Running the command performs the query and reports back.
	msg := cmd()
	require.IsType(t, answerMsg{}, msg)
	assert.Equal(t, "What is a pseudorange?", asker.question)

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.False(t, m.thinking)
	require.Len(t, m.messages, 2)
	assert.Equal(t, "assistant", m.messages[1].role)
	assert.Equal(t, "answer", m.messages[1].content)
}

func TestUpdate_EmptyInputIgnored(t *testing.T) {
	m := New(&stubAsker{}, 0.7)
	m.input.SetValue("   ")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Empty(t, m.messages)
	assert.False(t, m.thinking)
}

func TestFormatAnswer(t *testing.T) {
	a := engine.Answer{
		Text: "the answer",
		Sources: []domain.ChunkMetadata{
			{Source: "gnss_intro.txt"},
			{Source: "orbits.txt"},
		},
	}
	assert.Equal(t, "the answer\n\nSources:\n- gnss_intro.txt\n- orbits.txt", formatAnswer(a))

	assert.Equal(t, "bare", formatAnswer(engine.Answer{Text: "bare"}))
}
