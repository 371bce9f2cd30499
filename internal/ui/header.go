package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/hactl/internal/dashboard"
)

// renderMain renders the header, tab bar, screen content and footer.
func (m Model) renderMain() string {
	var content string
	switch m.screen {
	case dashboard.ScreenDocker:
		content = m.renderDocker()
	case dashboard.ScreenHomeAutomation:
		content = m.renderHome()
	case dashboard.ScreenMaintenance:
		content = m.renderMaintenance()
	case dashboard.ScreenLogs:
		content = m.renderLogs()
	}
	content = lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		content,
		m.renderFooter(),
	)
}

// renderHeader shows the remote, its reachability and the last update time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{
		styles.Logo.Render("hactl"),
		styles.MutedText.Render(m.cfg.BaseURL),
	}

	offline, last := m.connectivity()
	switch {
	case offline:
		parts = append(parts, styles.DangerText.Render("● OFFLINE"))
	case !last.IsZero():
		parts = append(parts, styles.SuccessText.Render("● ONLINE"))
	default:
		parts = append(parts, styles.WarningText.Render("connecting..."))
	}
	if !last.IsZero() {
		parts = append(parts, styles.MutedText.Render("updated "+last.Format("15:04:05")))
	}
	if status := m.dash.Status.State(); m.dash.Status.Active() && status.Data.Busy() {
		parts = append(parts, styles.WarningText.Render(m.spinner.View()+"remote busy"))
	}
	if n := len(m.pending); n > 0 {
		parts = append(parts, styles.AccentText.Render(m.spinner.View()+pluralize(n, "command")+" running"))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// connectivity summarizes the mounted screen's controllers: offline when any
// of them is, and the most recent successful update.
func (m Model) connectivity() (bool, time.Time) {
	var offline bool
	var last time.Time
	note := func(isOffline bool, updated time.Time) {
		offline = offline || isOffline
		if updated.After(last) {
			last = updated
		}
	}
	switch m.screen {
	case dashboard.ScreenDocker:
		c, v, s := m.dash.Containers.State(), m.dash.Volumes.State(), m.dash.Status.State()
		note(c.IsOffline(), c.LastUpdated)
		note(v.IsOffline(), v.LastUpdated)
		note(s.IsOffline(), s.LastUpdated)
	case dashboard.ScreenHomeAutomation:
		v, s := m.dash.Versions.State(), m.dash.Status.State()
		note(v.IsOffline(), v.LastUpdated)
		note(s.IsOffline(), s.LastUpdated)
	case dashboard.ScreenMaintenance:
		h, c := m.dash.Health.State(), m.dash.Config.State()
		note(h.IsOffline(), h.LastUpdated)
		note(c.IsOffline(), c.LastUpdated)
	}
	return offline, last
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	var tabs []string
	for i, s := range dashboard.Screens() {
		label := string(rune('1'+i)) + " " + s.Title()
		if s == m.screen {
			tabs = append(tabs, styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	return lipgloss.NewStyle().Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.notice.text != "" {
		style := styles.SuccessText
		if m.notice.isErr {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Render(truncate(m.notice.text, m.width-2)))
	}

	hints := []string{"tab screens", "? help", "T theme", "q quit"}
	switch m.screen {
	case dashboard.ScreenDocker:
		hints = append([]string{"/ filter", "←/→ pane"}, hints...)
	case dashboard.ScreenLogs:
		follow := "off"
		if m.logFollow {
			follow = "on"
		}
		hints = append([]string{"space follow: " + follow}, hints...)
	}
	return styles.Footer.Width(m.width).Render(strings.Join(hints, "  ·  "))
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
