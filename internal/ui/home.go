package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	units "github.com/docker/go-units"

	"github.com/five82/hactl/internal/api"
	"github.com/five82/hactl/internal/state"
)

const (
	cmdRefreshVersions = "versions.refresh"
	cmdUpgradeServer   = "server.upgrade"
	cmdAutoUpgrade     = "server.autoupgrade"
	cmdUpdateHA        = "homeassistant.update"
	cmdCompress        = "files.compress"
	cmdArchive         = "files.archive"
	cmdReorganize      = "files.reorganize"
)

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	client, versions := m.dash.Client, m.dash.Versions
	switch {
	case key.Matches(msg, m.keys.RefreshVersions):
		return m, m.dispatch(versions, cmdRefreshVersions, "Version check", client.RefreshVersionInfo)
	case key.Matches(msg, m.keys.UpgradeServer):
		m.prompt = newConfirm("Upgrade the home automation server?", func() tea.Cmd {
			return m.dispatch(versions, cmdUpgradeServer, "Server upgrade", client.UpgradeServer)
		})
	case key.Matches(msg, m.keys.AutoUpgrade):
		return m, m.dispatch(versions, cmdAutoUpgrade, "Auto-upgrade", client.AutoUpgrade)
	case key.Matches(msg, m.keys.UpdateLatest):
		m.prompt = newConfirm("Update Home Assistant to the latest version?", func() tea.Cmd {
			return m.updateHomeAssistant("")
		})
	case key.Matches(msg, m.keys.ForceVersion):
		m.prompt = newInput("Update Home Assistant to version", "2024.1.0", m.updateHomeAssistant)
	case key.Matches(msg, m.keys.Compress):
		return m, m.dispatch(versions, cmdCompress, "Compress", client.Compress)
	case key.Matches(msg, m.keys.Archive):
		return m, m.dispatch(versions, cmdArchive, "Archive", client.Archive)
	case key.Matches(msg, m.keys.Reorganize):
		return m, m.dispatch(versions, cmdReorganize, "Reorganize", client.Reorganize)
	}
	return m, nil
}

// updateHomeAssistant dispatches an update to version, or to the latest
// release when version is empty, and keeps the result for the notice.
func (m Model) updateHomeAssistant(version string) tea.Cmd {
	if _, busy := m.pending[cmdUpdateHA]; busy {
		return nil
	}
	label := "Home Assistant update"
	if version != "" {
		label += " to " + version
	}
	m.pending[cmdUpdateHA] = label

	ctrl, client, ctx := m.dash.Versions, m.dash.Client, m.ctx
	return func() tea.Msg {
		var result api.UpdateResult
		out := ctrl.Dispatch(ctx, cmdUpdateHA, func(ctx context.Context) api.Outcome {
			var o api.Outcome
			result, o = client.UpdateHomeAssistant(ctx, version)
			return o
		})
		return outcomeMsg{key: cmdUpdateHA, label: label, outcome: out, update: &result}
	}
}

// availableAge renders how long an upgrade has been available, or "" when
// the timestamp is missing or unparseable.
func availableAge(avail api.AvailableVersion, now time.Time) string {
	since := avail.ParsedAvailableSince()
	if since.IsZero() {
		return ""
	}
	return units.HumanDuration(now.Sub(since)) + " ago"
}

func (m Model) renderHome() string {
	styles := m.theme.Styles()
	vs := m.dash.Versions.State()
	status := m.dash.Status.State()

	var b strings.Builder
	title := "Home automation"
	if vs.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title) + "\n\n")

	switch {
	case vs.HasData:
		b.WriteString(styles.MutedText.Render("Running   ") + styles.Text.Render(vs.Data.Version) + "\n")
		if avail := vs.Data.Available; avail != nil {
			line := styles.MutedText.Render("Available ") + styles.SuccessText.Render(avail.Version)
			if age := availableAge(*avail, time.Now()); age != "" {
				line += styles.MutedText.Render(" since " + age)
			}
			b.WriteString(line + "\n")
		} else {
			b.WriteString(styles.MutedText.Render("Available ") + styles.FaintText.Render("up to date") + "\n")
		}
	case vs.Error == nil:
		b.WriteString(styles.MutedText.Render("waiting for data") + "\n")
	}
	if vs.Error != nil {
		b.WriteString(styles.DangerText.Render(vs.Error.Message) + "\n")
	}
	if status.Data.Updating {
		b.WriteString(styles.WarningText.Render(m.spinner.View()+"update in progress") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(renderActionGroup(m, "Versions", vs, []actionRow{
		{m.keys.RefreshVersions, cmdRefreshVersions},
		{m.keys.UpgradeServer, cmdUpgradeServer},
		{m.keys.AutoUpgrade, cmdAutoUpgrade},
		{m.keys.UpdateLatest, cmdUpdateHA},
		{m.keys.ForceVersion, cmdUpdateHA},
	}))
	b.WriteString("\n")
	b.WriteString(renderActionGroup(m, "Files", vs, []actionRow{
		{m.keys.Compress, cmdCompress},
		{m.keys.Archive, cmdArchive},
		{m.keys.Reorganize, cmdReorganize},
	}))
	return styles.Panel.Width(m.width - 4).Height(m.contentHeight() - 2).Render(b.String())
}

type actionRow struct {
	binding key.Binding
	cmdKey  string
}

// renderActionGroup lists actions with their key, a spinner while pending and
// the last failure of each distinct command key.
func renderActionGroup[T any](m Model, title string, vs state.ViewState[T], rows []actionRow) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title) + "\n")
	shown := make(map[string]bool)
	for _, row := range rows {
		h := row.binding.Help()
		line := styles.WarningText.Render(fmt.Sprintf("  %-4s", h.Key)) + styles.Text.Render(h.Desc)
		if label, ok := m.pending[row.cmdKey]; ok && !shown[row.cmdKey] {
			line += " " + styles.AccentText.Render(m.spinner.View()+label)
		}
		b.WriteString(line + "\n")
		if info, ok := vs.CommandError(row.cmdKey); ok && !shown[row.cmdKey] {
			b.WriteString("      " + styles.DangerText.Render(info.Message) + "\n")
		}
		shown[row.cmdKey] = true
	}
	return b.String()
}
