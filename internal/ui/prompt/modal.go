package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pitcrew/internal/ui/overlay"
	"pitcrew/internal/ui/picker"
	"pitcrew/internal/ui/styles"
)

// Model renders the currently pending prompt request, one at a time.
type Model struct {
	request *Request
	input   textinput.Model
	picker  picker.Model
	width   int
	height  int
}

// New creates an idle prompt model.
func New() Model {
	return Model{}
}

// Active reports whether a prompt is waiting for the operator.
func (m Model) Active() bool {
	return m.request != nil
}

// SetSize updates viewport dimensions for overlay placement.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.picker = m.picker.SetSize(width, height)
	return m
}

// Open starts rendering req. Any previously pending request is dismissed
// first so its workflow goroutine is not left hanging.
func (m Model) Open(req *Request) Model {
	if m.request != nil {
		m.request.Answer(Response{OK: false})
	}
	m.request = req

	switch req.Kind {
	case KindInput:
		input := textinput.New()
		input.Placeholder = req.Default
		input.CharLimit = 80
		input.Width = 40
		input.Prompt = "> "
		input.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor)
		input.Focus()
		m.input = input
	case KindPick:
		options := make([]picker.Option, len(req.Options))
		for i, label := range req.Options {
			options[i] = picker.Option{Label: label, Value: label}
		}
		m.picker = picker.New(req.Title, options).SetSize(m.width, m.height)
	}
	return m
}

// Update handles key input while a prompt is active.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.request == nil {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "ctrl+c":
		m.request.Answer(Response{OK: false})
		m.request = nil
		return m, nil
	case "enter":
		return m.submit()
	}

	switch m.request.Kind {
	case KindInput:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case KindConfirm:
		switch keyMsg.String() {
		case "y", "Y":
			m.request.Answer(Response{OK: true, Confirmed: true})
			m.request = nil
		case "n", "N":
			m.request.Answer(Response{OK: true, Confirmed: false})
			m.request = nil
		}
		return m, nil
	default: // KindPick
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	switch m.request.Kind {
	case KindInput:
		value := strings.TrimSpace(m.input.Value())
		if value == "" && !m.request.Optional {
			value = m.request.Default
		}
		m.request.Answer(Response{OK: true, Value: value})
	case KindConfirm:
		// Enter alone does not confirm a destructive action
		return m, nil
	default: // KindPick
		m.request.Answer(Response{OK: true, Index: m.picker.SelectedIndex()})
	}
	m.request = nil
	return m, nil
}

// View renders the prompt box for the active request.
func (m Model) View() string {
	if m.request == nil {
		return ""
	}

	if m.request.Kind == KindPick {
		return m.picker.View()
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor)
	hintStyle := styles.HintStyle

	var body string
	switch m.request.Kind {
	case KindInput:
		hint := "enter to submit, esc to cancel"
		if m.request.Optional {
			hint = "enter to submit (may be empty), esc to cancel"
		}
		body = titleStyle.Render(m.request.Title) + "\n\n" +
			m.input.View() + "\n\n" +
			hintStyle.Render(hint)
	default: // KindConfirm
		body = titleStyle.Render(m.request.Title) + "\n\n" +
			hintStyle.Render("y to confirm, n or esc to cancel")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(body)
}

// Overlay renders the active prompt centered over a background view.
func (m Model) Overlay(background string) string {
	if m.request == nil {
		return background
	}

	if m.request.Kind == KindPick {
		return m.picker.Overlay(background)
	}

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), background)
}
