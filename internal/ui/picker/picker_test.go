package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func options() []Option {
	return []Option{
		{Label: "alpha", Value: "alpha"},
		{Label: "bravo", Value: "bravo"},
		{Label: "charlie", Value: "charlie"},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigation(t *testing.T) {
	m := New("Pick a bot", options())
	assert.Equal(t, "alpha", m.Selected().Value)

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	assert.Equal(t, "charlie", m.Selected().Value)

	// Clamped at the bottom
	m, _ = m.Update(key("j"))
	assert.Equal(t, 2, m.SelectedIndex())

	m, _ = m.Update(key("k"))
	assert.Equal(t, "bravo", m.Selected().Value)
}

func TestNavigationClampsAtTop(t *testing.T) {
	m := New("Pick a bot", options())
	m, _ = m.Update(key("k"))
	assert.Equal(t, 0, m.SelectedIndex())
}

func TestViewShowsSelection(t *testing.T) {
	m := New("Pick a bot", options())
	view := m.View()
	assert.Contains(t, view, "Pick a bot")
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, ">")
}

func TestSelectedOnEmptyOptions(t *testing.T) {
	m := New("Empty", nil)
	assert.Equal(t, Option{}, m.Selected())
}
