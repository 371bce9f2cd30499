package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hactl/internal/logtail"
)

// readLogs tails hactl's own log file off the UI goroutine.
func (m Model) readLogs() tea.Cmd {
	path := m.cfg.LogFile
	return func() tea.Msg {
		lines, err := logtail.Read(path, logFetchLimit)
		entries := make([]logtail.Entry, 0, len(lines))
		for _, line := range lines {
			entries = append(entries, logtail.Parse(line))
		}
		return logMsg{entries: entries, err: err}
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
			return m, m.readLogs()
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.logFollow = false
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logFollow = false
		m.logViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.Top):
		m.logFollow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	}
	return m, nil
}

// syncLogViewport renders log entries into the viewport.
func (m *Model) syncLogViewport() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()
	var b strings.Builder
	if m.logErr != nil {
		b.WriteString(styles.DangerText.Render(m.logErr.Error()) + "\n")
	}
	if len(m.logEntries) == 0 && m.logErr == nil {
		b.WriteString(styles.MutedText.Render("no log entries in " + m.cfg.LogFile))
	}
	for i, entry := range m.logEntries {
		line := truncate(logtail.Format(entry), m.width)
		switch strings.ToUpper(entry.Level) {
		case "ERROR":
			line = styles.DangerText.Render(line)
		case "WARN":
			line = styles.WarningText.Render(line)
		case "DEBUG":
			line = styles.FaintText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		b.WriteString(line)
		if i < len(m.logEntries)-1 {
			b.WriteString("\n")
		}
	}
	m.logViewport.SetContent(b.String())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogs() string {
	return m.logViewport.View()
}
