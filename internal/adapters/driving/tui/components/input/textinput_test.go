package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
)

func TestNewTextInput(t *testing.T) {
	s := styles.DefaultStyles()
	input := NewTextInput(s, "Label", "placeholder")

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.Equal(t, "Label", input.Label())
	assert.True(t, input.Focused())
}

func TestNewTextInput_NilStyles(t *testing.T) {
	input := NewTextInput(nil, "Label", "")

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestPresetInputs(t *testing.T) {
	assert.Equal(t, "Ask", NewQuestionInput(nil).Label())
	assert.Equal(t, "File", NewPathInput(nil).Label())
}

func TestTextInput_Init(t *testing.T) {
	input := NewQuestionInput(nil)

	cmd := input.Init()

	// Blink command should be returned
	assert.NotNil(t, cmd)
}

func TestTextInput_Update(t *testing.T) {
	input := NewQuestionInput(nil)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
	updated, _ := input.Update(msg)

	assert.Equal(t, input, updated)
	assert.Equal(t, "a", input.Value())
}

func TestTextInput_View(t *testing.T) {
	input := NewQuestionInput(nil)

	view := input.View()

	assert.NotEmpty(t, view)
	assert.Contains(t, view, "Ask")
}

func TestTextInput_SetValueAndReset(t *testing.T) {
	input := NewQuestionInput(nil)

	input.SetValue("what is the return policy?")
	assert.Equal(t, "what is the return policy?", input.Value())

	input.Reset()
	assert.Equal(t, "", input.Value())
}

func TestTextInput_FocusBlur(t *testing.T) {
	input := NewQuestionInput(nil)

	input.Blur()
	assert.False(t, input.Focused())

	input.Focus()
	assert.True(t, input.Focused())
}

func TestTextInput_SetWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
	}{
		{"normal width", 100},
		{"small width", 10},
		{"zero width", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewQuestionInput(nil)
			input.SetWidth(tt.width)
			assert.Equal(t, tt.width, input.Width())
			assert.GreaterOrEqual(t, input.textinput.Width, 20)
		})
	}
}
