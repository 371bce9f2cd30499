package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/five82/hactl/internal/api"
	"github.com/five82/hactl/internal/state"
)

// Command keys double as the CommandErrors keys of the owning controller.
const (
	cmdContainerPrefix = "container:"
	cmdVolumePrefix    = "volume:"
	cmdComposePull     = "compose.pull"
	cmdComposeUp       = "compose.up"
	cmdComposeDown     = "compose.down"
	cmdPrune           = "compose.prune"
	cmdResetStatus     = "status.reset"
)

type containerSource []api.Container

func (s containerSource) String(i int) string {
	return s[i].Name + " " + strings.Join(s[i].Image.Tags, " ")
}

func (s containerSource) Len() int { return len(s) }

type volumeSource []api.Volume

func (s volumeSource) String(i int) string { return s[i].Name }

func (s volumeSource) Len() int { return len(s) }

// filterContainers keeps containers whose name or image tags fuzzy-match
// query, best match first. An empty query keeps the list as is.
func filterContainers(list []api.Container, query string) []api.Container {
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}
	matches := fuzzy.FindFrom(query, containerSource(list))
	out := make([]api.Container, 0, len(matches))
	for _, match := range matches {
		out = append(out, list[match.Index])
	}
	return out
}

func filterVolumes(list []api.Volume, query string) []api.Volume {
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}
	matches := fuzzy.FindFrom(query, volumeSource(list))
	out := make([]api.Volume, 0, len(matches))
	for _, match := range matches {
		out = append(out, list[match.Index])
	}
	return out
}

// composeAction is one button of the compose toolbar.
type composeAction struct {
	binding key.Binding
	key     string
	label   string
	confirm bool
	run     func(*api.Client, context.Context) api.Outcome
	// alwaysEnabled buttons stay usable while compose is busy.
	alwaysEnabled bool
}

func (m Model) composeActions() []composeAction {
	return []composeAction{
		{binding: m.keys.ComposePull, key: cmdComposePull, label: "Pull", run: (*api.Client).ComposePull},
		{binding: m.keys.ComposeUp, key: cmdComposeUp, label: "Up", run: (*api.Client).ComposeUp},
		{binding: m.keys.ComposeDown, key: cmdComposeDown, label: "Down", confirm: true, run: (*api.Client).ComposeDown},
		{binding: m.keys.Prune, key: cmdPrune, label: "Prune", confirm: true, run: (*api.Client).Prune},
		{binding: m.keys.ResetStatus, key: cmdResetStatus, label: "Reset status", run: (*api.Client).ResetStatus, alwaysEnabled: true},
	}
}

// composeEnabled reports whether a compose toolbar action may be triggered.
// Unknown status (never loaded) counts as idle.
func composeEnabled(status state.ViewState[api.OperationStatus], action composeAction) bool {
	if action.alwaysEnabled {
		return true
	}
	return !status.Data.ComposeBusy()
}

func (m Model) visibleContainers() []api.Container {
	return filterContainers(m.dash.Containers.State().Data, m.filterQuery(paneContainers))
}

func (m Model) visibleVolumes() []api.Volume {
	return filterVolumes(m.dash.Volumes.State().Data, m.filterQuery(paneVolumes))
}

func (m Model) filterQuery(p pane) string {
	if m.pane != p {
		return ""
	}
	return m.filterInput.Value()
}

func (m *Model) clampCursors() {
	if m.dash == nil {
		return
	}
	counts := [2]int{len(m.visibleContainers()), len(m.visibleVolumes())}
	for i, n := range counts {
		if m.cursor[i] >= n {
			m.cursor[i] = n - 1
		}
		if m.cursor[i] < 0 {
			m.cursor[i] = 0
		}
	}
}

func (m Model) handleDockerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	status := m.dash.Status.State()
	for _, action := range m.composeActions() {
		if !key.Matches(msg, action.binding) {
			continue
		}
		if !composeEnabled(status, action) {
			m.setNotice(fmt.Sprintf("compose busy (%s), %s is disabled", status.Data.Describe(), action.label), true)
			return m, nil
		}
		run := action.run
		client := m.dash.Client
		command := func(ctx context.Context) api.Outcome { return run(client, ctx) }
		if action.confirm {
			cmdKey, label := action.key, action.label
			m.prompt = newConfirm("Compose "+strings.ToLower(label)+"?", func() tea.Cmd {
				return m.dispatch(m.dash.Status, cmdKey, label, command)
			})
			return m, nil
		}
		return m, m.dispatch(m.dash.Status, action.key, action.label, command)
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filterInput.SetValue("")
		m.clampCursors()
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.SwitchPane):
		m.pane = 1 - m.pane
		m.filterInput.SetValue("")
		m.clampCursors()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.pane] > 0 {
			m.cursor[m.pane]--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.cursor[m.pane]++
		m.clampCursors()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.cursor[m.pane] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.cursor[m.pane] = 1 << 30
		m.clampCursors()
		return m, nil
	}

	if m.pane == paneVolumes {
		return m.handleVolumeKey(msg)
	}
	return m.handleContainerKey(msg)
}

func (m Model) handleContainerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.visibleContainers()
	if len(list) == 0 {
		return m, nil
	}
	c := list[min(m.cursor[paneContainers], len(list)-1)]
	client := m.dash.Client
	cmdKey := cmdContainerPrefix + c.Name

	switch {
	case key.Matches(msg, m.keys.StartContainer):
		return m, m.dispatch(m.dash.Containers, cmdKey, "Start "+c.Name, func(ctx context.Context) api.Outcome {
			return client.StartContainer(ctx, c.Name)
		})
	case key.Matches(msg, m.keys.StopContainer):
		return m, m.dispatch(m.dash.Containers, cmdKey, "Stop "+c.Name, func(ctx context.Context) api.Outcome {
			return client.StopContainer(ctx, c.Name)
		})
	case key.Matches(msg, m.keys.Remove):
		m.prompt = newConfirm("Remove container "+c.Name+"?", func() tea.Cmd {
			return m.dispatch(m.dash.Containers, cmdKey, "Remove "+c.Name, func(ctx context.Context) api.Outcome {
				return client.RemoveContainer(ctx, c.Name)
			})
		})
	}
	return m, nil
}

func (m Model) handleVolumeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.visibleVolumes()
	if len(list) == 0 || !key.Matches(msg, m.keys.Remove) {
		return m, nil
	}
	v := list[min(m.cursor[paneVolumes], len(list)-1)]
	client := m.dash.Client
	m.prompt = newConfirm("Remove volume "+v.Name+"?", func() tea.Cmd {
		return m.dispatch(m.dash.Volumes, cmdVolumePrefix+v.Name, "Remove "+v.Name, func(ctx context.Context) api.Outcome {
			return client.RemoveVolume(ctx, v.Name)
		})
	})
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.clampCursors()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursor[m.pane] = 0
	return m, cmd
}

func (m Model) renderDocker() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	status := m.dash.Status.State()
	containers := m.dash.Containers.State()
	volumes := m.dash.Volumes.State()

	toolbar := m.renderComposeToolbar(status)

	half := m.width/2 - 1
	listHeight := height - 4
	left := m.renderContainerList(containers, half-4, listHeight)
	right := m.renderVolumeList(volumes, m.width-half-6, listHeight)

	leftStyle, rightStyle := styles.FocusedPanel, styles.Panel
	if m.pane == paneVolumes {
		leftStyle, rightStyle = styles.Panel, styles.FocusedPanel
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Width(half-2).Height(listHeight).Render(left),
		rightStyle.Width(m.width-half-4).Height(listHeight).Render(right),
	)

	var filterLine string
	if m.filtering || m.filterInput.Value() != "" {
		filterLine = m.filterInput.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, toolbar, filterLine, panes)
}

func (m Model) renderComposeToolbar(status state.ViewState[api.OperationStatus]) string {
	styles := m.theme.Styles()
	var parts []string
	for _, action := range m.composeActions() {
		label := "[" + action.binding.Help().Key + "] " + action.label
		switch {
		case m.pending[action.key] != "":
			parts = append(parts, styles.AccentText.Render(m.spinner.View()+label))
		case composeEnabled(status, action):
			parts = append(parts, styles.Text.Render(label))
		default:
			parts = append(parts, styles.FaintText.Strikethrough(true).Render(label))
		}
	}
	line := strings.Join(parts, "  ")
	if busy := status.Data.Describe(); busy != "" {
		line += "  " + styles.WarningText.Render(m.spinner.View()+busy)
	}
	for _, k := range []string{cmdComposePull, cmdComposeUp, cmdComposeDown, cmdPrune, cmdResetStatus} {
		if info, ok := status.CommandError(k); ok {
			line += "\n" + styles.DangerText.Render(info.Message)
		}
	}
	if status.Error != nil {
		line += "\n" + styles.DangerText.Render("status: "+status.Error.Message)
	}
	return line
}

func (m Model) renderContainerList(vs state.ViewState[[]api.Container], width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	title := fmt.Sprintf("Containers (%d)", len(vs.Data))
	if vs.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title) + "\n")
	if vs.Error != nil {
		b.WriteString(styles.DangerText.Render(truncate(vs.Error.Message, width)) + "\n")
	}
	if !vs.HasData {
		b.WriteString(styles.MutedText.Render("waiting for data"))
		return b.String()
	}

	list := m.visibleContainers()
	if len(list) == 0 {
		b.WriteString(styles.MutedText.Render("no containers"))
		return b.String()
	}
	start := scrollStart(m.cursor[paneContainers], len(list), height-3)
	for i := start; i < len(list) && i < start+height-3; i++ {
		c := list[i]
		name := fmt.Sprintf("%-28s ", truncate(c.Name, 28))
		if m.pane == paneContainers && i == m.cursor[paneContainers] {
			name = styles.Selected.Render(name)
		} else {
			name = styles.Text.Render(name)
		}
		row := name + styles.StateStyle(c.State).Render(c.State) + " " +
			styles.MutedText.Render(truncate(strings.Join(c.Image.Tags, ","), width-45))
		if label, ok := m.pending[cmdContainerPrefix+c.Name]; ok {
			row += " " + styles.AccentText.Render(m.spinner.View()+label)
		}
		b.WriteString(row + "\n")
		if info, ok := vs.CommandError(cmdContainerPrefix + c.Name); ok {
			b.WriteString("  " + styles.DangerText.Render(truncate(info.Message, width-2)) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderVolumeList(vs state.ViewState[[]api.Volume], width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	title := fmt.Sprintf("Volumes (%d)", len(vs.Data))
	if vs.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title) + "\n")
	if vs.Error != nil {
		b.WriteString(styles.DangerText.Render(truncate(vs.Error.Message, width)) + "\n")
	}
	if !vs.HasData {
		b.WriteString(styles.MutedText.Render("waiting for data"))
		return b.String()
	}

	list := m.visibleVolumes()
	if len(list) == 0 {
		b.WriteString(styles.MutedText.Render("no volumes"))
		return b.String()
	}
	start := scrollStart(m.cursor[paneVolumes], len(list), height-3)
	for i := start; i < len(list) && i < start+height-3; i++ {
		v := list[i]
		row := truncate(v.Name, width)
		if m.pane == paneVolumes && i == m.cursor[paneVolumes] {
			row = styles.Selected.Render(row)
		} else {
			row = styles.Text.Render(row)
		}
		if label, ok := m.pending[cmdVolumePrefix+v.Name]; ok {
			row += " " + styles.AccentText.Render(m.spinner.View()+label)
		}
		b.WriteString(row + "\n")
		if info, ok := vs.CommandError(cmdVolumePrefix + v.Name); ok {
			b.WriteString("  " + styles.DangerText.Render(truncate(info.Message, width-2)) + "\n")
		}
	}
	return b.String()
}

// scrollStart returns the first visible row so that cursor stays in view.
func scrollStart(cursor, total, visible int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	start := cursor - visible + 1
	if start < 0 {
		start = 0
	}
	if start > total-visible {
		start = total - visible
	}
	return start
}

// truncate shortens s to max runes, marking the cut with "…".
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
