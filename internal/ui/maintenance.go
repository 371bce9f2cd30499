package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hactl/internal/api"
)

const (
	cmdReloadConfig   = "config.reload"
	cmdTestMail       = "mail.test"
	cmdRevokeOAuth    = "oauth.revoke"
	cmdClearOAuth     = "oauth.clear"
	cmdBuildFrontend  = "frontend.build"
	cmdDeployFrontend = "frontend.deploy"
	cmdResetFrontend  = "frontend.reset"
	cmdRestartServer  = "server.restart"
	cmdTestingVersion = "testing.version"
)

func (m Model) handleMaintenanceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	client, health := m.dash.Client, m.dash.Health
	switch {
	case key.Matches(msg, m.keys.ReloadConfig):
		return m, m.dispatch(health, cmdReloadConfig, "Config reload", client.ReloadConfig)
	case key.Matches(msg, m.keys.TestMail):
		return m, m.dispatch(health, cmdTestMail, "Test mail", client.SendTestMail)
	case key.Matches(msg, m.keys.Authorize):
		return m, m.open(client.OAuthRequestURL())
	case key.Matches(msg, m.keys.CopyAuthURL):
		copyText, target := m.copyText, client.OAuthRequestURL()
		return m, func() tea.Msg { return copiedMsg{err: copyText(target)} }
	case key.Matches(msg, m.keys.RevokeOAuth):
		m.prompt = newConfirm("Revoke the Google OAuth token?", func() tea.Cmd {
			return m.dispatch(health, cmdRevokeOAuth, "Token revoke", client.RevokeGoogleOAuth)
		})
	case key.Matches(msg, m.keys.ClearOAuth):
		m.prompt = newConfirm("Delete the stored Google OAuth token?", func() tea.Cmd {
			return m.dispatch(health, cmdClearOAuth, "Token clear", client.ClearGoogleOAuth)
		})
	case key.Matches(msg, m.keys.BuildFrontend):
		return m, m.dispatch(health, cmdBuildFrontend, "Frontend build", client.BuildFrontend)
	case key.Matches(msg, m.keys.DeployFrontend):
		return m, m.dispatch(health, cmdDeployFrontend, "Frontend deploy", client.DeployFrontend)
	case key.Matches(msg, m.keys.ResetFrontend):
		return m, m.dispatch(health, cmdResetFrontend, "Image status reset", client.ResetFrontendImageStatus)
	case key.Matches(msg, m.keys.RestartServer):
		m.prompt = newConfirm("Restart the home automation server?", func() tea.Cmd {
			return m.dispatch(health, cmdRestartServer, "Server restart", client.RestartServer)
		})
	case key.Matches(msg, m.keys.TestingVersion):
		m.prompt = newInput("Set testing version", "1.0.0", func(version string) tea.Cmd {
			return m.dispatch(health, cmdTestingVersion, "Testing version "+version, func(ctx context.Context) api.Outcome {
				return client.SetTestingVersion(ctx, version)
			})
		})
	case key.Matches(msg, m.keys.OpenDashboard):
		if m.cfg.DashboardURL == "" {
			m.setNotice("no dashboard_url configured", true)
			return m, nil
		}
		return m, m.open(m.cfg.DashboardURL)
	}
	return m, nil
}

func (m Model) renderMaintenance() string {
	styles := m.theme.Styles()
	hs := m.dash.Health.State()

	var b strings.Builder
	title := "Maintenance"
	if hs.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title) + "\n\n")

	line := styles.MutedText.Render("Health  ")
	switch {
	case hs.HasData && hs.Data.Healthy:
		line += styles.SuccessText.Render("● healthy")
	case hs.HasData:
		line += styles.DangerText.Render("● " + hs.Data.Message)
	case hs.Error == nil:
		line += styles.MutedText.Render("checking")
	}
	b.WriteString(line + "\n")
	if hs.Error != nil {
		b.WriteString(styles.DangerText.Render(hs.Error.Message) + "\n")
	}
	if m.cfg.DashboardURL != "" {
		b.WriteString(styles.MutedText.Render("Dashboard ") + styles.InfoText.Render(m.cfg.DashboardURL) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(renderActionGroup(m, "Server", hs, []actionRow{
		{m.keys.ReloadConfig, cmdReloadConfig},
		{m.keys.RestartServer, cmdRestartServer},
		{m.keys.OpenDashboard, ""},
	}))
	b.WriteString("\n")
	b.WriteString(renderActionGroup(m, "Mail and Google", hs, []actionRow{
		{m.keys.TestMail, cmdTestMail},
		{m.keys.Authorize, ""},
		{m.keys.CopyAuthURL, ""},
		{m.keys.RevokeOAuth, cmdRevokeOAuth},
		{m.keys.ClearOAuth, cmdClearOAuth},
	}))
	b.WriteString("\n")
	b.WriteString(renderActionGroup(m, "Frontend", hs, []actionRow{
		{m.keys.BuildFrontend, cmdBuildFrontend},
		{m.keys.DeployFrontend, cmdDeployFrontend},
		{m.keys.ResetFrontend, cmdResetFrontend},
	}))
	b.WriteString("\n")
	b.WriteString(renderActionGroup(m, "Testing", hs, []actionRow{
		{m.keys.TestingVersion, cmdTestingVersion},
	}))
	b.WriteString("\n")
	b.WriteString(m.renderRemoteConfig())
	return styles.Panel.Width(m.width - 4).Height(m.contentHeight() - 2).Render(b.String())
}

// renderRemoteConfig lists the remote's effective configuration.
func (m Model) renderRemoteConfig() string {
	styles := m.theme.Styles()
	cs := m.dash.Config.State()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Remote config") + "\n")
	if cs.Error != nil {
		b.WriteString("  " + styles.DangerText.Render(cs.Error.Message) + "\n")
	}
	if !cs.HasData {
		if cs.Error == nil {
			b.WriteString("  " + styles.MutedText.Render("loading") + "\n")
		}
		return b.String()
	}
	lines := cs.Data.Lines()
	if len(lines) == 0 {
		b.WriteString("  " + styles.MutedText.Render("(empty)") + "\n")
	}
	for _, line := range lines {
		b.WriteString("  " + styles.MutedText.Render(truncate(line, m.width-10)) + "\n")
	}
	return b.String()
}
