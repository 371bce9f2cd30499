package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// prompt is a modal asking for confirmation, or for one line of text when
// hasInput is set.
type prompt struct {
	title    string
	hasInput bool
	input    textinput.Model
	run      func(value string) tea.Cmd
}

func newConfirm(title string, run func() tea.Cmd) *prompt {
	return &prompt{
		title: title,
		run:   func(string) tea.Cmd { return run() },
	}
}

func newInput(title, placeholder string, run func(value string) tea.Cmd) *prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 40
	ti.Width = 30
	ti.Prompt = ""
	ti.Focus()
	return &prompt{title: title, hasInput: true, input: ti, run: run}
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt
	if !p.hasInput {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.prompt = nil
			return m, p.run("")
		case key.Matches(msg, m.keys.Cancel):
			m.prompt = nil
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = nil
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return m, nil
		}
		m.prompt = nil
		return m, p.run(value)
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return m, cmd
}

func (m Model) renderPrompt() string {
	styles := m.theme.Styles()
	p := m.prompt

	lines := []string{styles.Text.Bold(true).Render(p.title), ""}
	if p.hasInput {
		lines = append(lines, p.input.View(), "", styles.MutedText.Render("enter to submit, esc to cancel"))
	} else {
		lines = append(lines, styles.MutedText.Render("y / enter to confirm, n / esc to cancel"))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Warning)).
		Padding(1, 2).
		Width(44).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
