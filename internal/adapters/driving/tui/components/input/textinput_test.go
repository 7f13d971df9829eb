package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

func TestNewChatInput(t *testing.T) {
	s := styles.DefaultStyles()
	input := NewChatInput(s)

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
}

func TestNewChatInput_NilStyles(t *testing.T) {
	input := NewChatInput(nil)

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestChatInput_Init(t *testing.T) {
	input := NewChatInput(nil)

	// Blink command should be returned
	assert.NotNil(t, input.Init())
}

func TestChatInput_Update(t *testing.T) {
	input := NewChatInput(nil)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("稅")}
	updated, _ := input.Update(msg)

	assert.Equal(t, input, updated)
	assert.Equal(t, "稅", input.Value())
}

func TestChatInput_View(t *testing.T) {
	input := NewChatInput(nil)

	view := input.View()

	assert.Contains(t, view, "You:")
}

func TestChatInput_SetValueAndReset(t *testing.T) {
	input := NewChatInput(nil)

	input.SetValue("what applies to X?")
	assert.Equal(t, "what applies to X?", input.Value())

	input.Reset()
	assert.Equal(t, "", input.Value())
}

func TestChatInput_CharLimit(t *testing.T) {
	input := NewChatInput(nil)

	input.SetValue(strings.Repeat("a", questionLimit+50))

	assert.Len(t, input.Value(), questionLimit)
}

func TestChatInput_FocusAndBlur(t *testing.T) {
	input := NewChatInput(nil)

	input.Blur()
	assert.False(t, input.Focused())

	input.Focus()
	assert.True(t, input.Focused())
}

func TestChatInput_SetWidth(t *testing.T) {
	tests := []struct {
		name          string
		width         int
		expectedInner int
	}{
		{"wide terminal", 100, 90},
		{"narrow terminal clamps", 15, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewChatInput(nil)

			input.SetWidth(tt.width)

			assert.Equal(t, tt.width, input.Width())
			assert.Equal(t, tt.expectedInner, input.textinput.Width)
		})
	}
}
