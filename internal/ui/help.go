package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	var columns []string
	for _, section := range m.keys.helpSections() {
		var b strings.Builder
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		columns = append(columns, lipgloss.NewStyle().MarginRight(3).Render(b.String()))
	}

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.FaintText.Render(strings.Repeat("─", 30)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, columns[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, columns[3:]...),
	)

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
