package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings. Screen keys are only matched while
// their screen is visible, so letters repeat across screens.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	NextScreen key.Binding
	PrevScreen key.Binding
	GoDocker   key.Binding
	GoHome     key.Binding
	GoMaint    key.Binding
	GoLogs     key.Binding
	RefreshNow key.Binding
	Escape     key.Binding

	// Navigation
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	SwitchPane key.Binding

	// Docker
	Filter         key.Binding
	StartContainer key.Binding
	StopContainer  key.Binding
	Remove         key.Binding
	ComposePull    key.Binding
	ComposeUp      key.Binding
	ComposeDown    key.Binding
	Prune          key.Binding
	ResetStatus    key.Binding

	// Home automation
	RefreshVersions key.Binding
	UpgradeServer   key.Binding
	AutoUpgrade     key.Binding
	UpdateLatest    key.Binding
	ForceVersion    key.Binding
	Compress        key.Binding
	Archive         key.Binding
	Reorganize      key.Binding

	// Maintenance
	ReloadConfig   key.Binding
	TestMail       key.Binding
	Authorize      key.Binding
	RevokeOAuth    key.Binding
	ClearOAuth     key.Binding
	BuildFrontend  key.Binding
	DeployFrontend key.Binding
	ResetFrontend  key.Binding
	RestartServer  key.Binding
	TestingVersion key.Binding
	OpenDashboard  key.Binding
	CopyAuthURL    key.Binding

	// Logs
	ToggleFollow key.Binding
	PageUp       key.Binding
	PageDown     key.Binding

	// Prompts
	Confirm key.Binding
	Cancel  key.Binding
}

func bind(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:       bind([]string{"ctrl+c", "q"}, "q", "Quit"),
		Help:       bind([]string{"?"}, "?", "Toggle help"),
		CycleTheme: bind([]string{"T"}, "T", "Cycle theme"),
		NextScreen: bind([]string{"tab"}, "tab", "Next screen"),
		PrevScreen: bind([]string{"shift+tab"}, "shift+tab", "Previous screen"),
		GoDocker:   bind([]string{"1"}, "1", "Docker"),
		GoHome:     bind([]string{"2"}, "2", "Home automation"),
		GoMaint:    bind([]string{"3"}, "3", "Maintenance"),
		GoLogs:     bind([]string{"4"}, "4", "Logs"),
		RefreshNow: bind([]string{"ctrl+r"}, "ctrl+r", "Refresh now"),
		Escape:     bind([]string{"esc"}, "esc", "Clear filter / close"),

		Up:         bind([]string{"k", "up"}, "k/up", "Move up"),
		Down:       bind([]string{"j", "down"}, "j/down", "Move down"),
		Top:        bind([]string{"home"}, "home", "Go to top"),
		Bottom:     bind([]string{"end"}, "end", "Go to bottom"),
		SwitchPane: bind([]string{"left", "right"}, "←/→", "Containers / volumes"),

		Filter:         bind([]string{"/"}, "/", "Filter list"),
		StartContainer: bind([]string{"s"}, "s", "Start container"),
		StopContainer:  bind([]string{"x"}, "x", "Stop container"),
		Remove:         bind([]string{"d"}, "d", "Remove container / volume"),
		ComposePull:    bind([]string{"p"}, "p", "Compose pull"),
		ComposeUp:      bind([]string{"u"}, "u", "Compose up"),
		ComposeDown:    bind([]string{"D"}, "D", "Compose down"),
		Prune:          bind([]string{"P"}, "P", "Prune"),
		ResetStatus:    bind([]string{"r"}, "r", "Reset status flags"),

		RefreshVersions: bind([]string{"v"}, "v", "Check for new version"),
		UpgradeServer:   bind([]string{"U"}, "U", "Upgrade server"),
		AutoUpgrade:     bind([]string{"a"}, "a", "Auto-upgrade"),
		UpdateLatest:    bind([]string{"h"}, "h", "Update Home Assistant"),
		ForceVersion:    bind([]string{"f"}, "f", "Update to version..."),
		Compress:        bind([]string{"c"}, "c", "Compress"),
		Archive:         bind([]string{"A"}, "A", "Archive"),
		Reorganize:      bind([]string{"o"}, "o", "Reorganize"),

		ReloadConfig:   bind([]string{"R"}, "R", "Reload config"),
		TestMail:       bind([]string{"m"}, "m", "Send test mail"),
		Authorize:      bind([]string{"a"}, "a", "Authorize Google"),
		RevokeOAuth:    bind([]string{"g"}, "g", "Revoke Google token"),
		ClearOAuth:     bind([]string{"G"}, "G", "Clear Google token"),
		BuildFrontend:  bind([]string{"b"}, "b", "Build frontend image"),
		DeployFrontend: bind([]string{"y"}, "y", "Deploy frontend"),
		ResetFrontend:  bind([]string{"i"}, "i", "Reset image status"),
		RestartServer:  bind([]string{"S"}, "S", "Restart server"),
		TestingVersion: bind([]string{"t"}, "t", "Set testing version..."),
		OpenDashboard:  bind([]string{"w"}, "w", "Open dashboard"),
		CopyAuthURL:    bind([]string{"c"}, "c", "Copy authorization URL"),

		ToggleFollow: bind([]string{" "}, "space", "Toggle follow"),
		PageUp:       bind([]string{"pgup", "ctrl+u"}, "pgup", "Page up"),
		PageDown:     bind([]string{"pgdown", "ctrl+d"}, "pgdn", "Page down"),

		Confirm: bind([]string{"enter", "y"}, "enter/y", "Confirm"),
		Cancel:  bind([]string{"esc", "n"}, "esc/n", "Cancel"),
	}
}

// helpSections groups bindings for the help overlay.
func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{"General", []key.Binding{k.NextScreen, k.GoDocker, k.GoHome, k.GoMaint, k.GoLogs, k.RefreshNow, k.CycleTheme, k.Help, k.Quit}},
		{"Docker", []key.Binding{k.Up, k.Down, k.SwitchPane, k.Filter, k.StartContainer, k.StopContainer, k.Remove, k.ComposePull, k.ComposeUp, k.ComposeDown, k.Prune, k.ResetStatus}},
		{"Home automation", []key.Binding{k.RefreshVersions, k.UpgradeServer, k.AutoUpgrade, k.UpdateLatest, k.ForceVersion, k.Compress, k.Archive, k.Reorganize}},
		{"Maintenance", []key.Binding{k.ReloadConfig, k.TestMail, k.Authorize, k.CopyAuthURL, k.RevokeOAuth, k.ClearOAuth, k.BuildFrontend, k.DeployFrontend, k.ResetFrontend, k.RestartServer, k.TestingVersion, k.OpenDashboard}},
		{"Logs", []key.Binding{k.ToggleFollow, k.PageUp, k.PageDown}},
	}
}
