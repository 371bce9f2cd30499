package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hactl/internal/api"
	"github.com/five82/hactl/internal/browser"
	"github.com/five82/hactl/internal/config"
	"github.com/five82/hactl/internal/dashboard"
	"github.com/five82/hactl/internal/logtail"
	"github.com/five82/hactl/internal/prefs"
)

const (
	uiTick        = time.Second
	logFetchLimit = 500
	noticeTTL     = 8 * time.Second
)

// Options configure the UI runtime.
type Options struct {
	Context   context.Context
	Dashboard *dashboard.Dashboard
	Config    config.Config
	// Changes receives a value whenever a controller settles.
	Changes <-chan struct{}
	// LogChanges receives a value when the log file is written. When nil the
	// Logs screen re-reads the file every second.
	LogChanges  <-chan struct{}
	Notice      string
	ThemeName   string
	StartScreen string
	PrefsPath   string
	Logger      *slog.Logger
	OpenURL     browser.Opener
	CopyText    func(string) error
}

type pane int

const (
	paneContainers pane = iota
	paneVolumes
)

type notice struct {
	text  string
	isErr bool
	at    time.Time
}

// dispatcher is satisfied by every state.Controller.
type dispatcher interface {
	Dispatch(ctx context.Context, key string, command func(context.Context) api.Outcome) api.Outcome
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx        context.Context
	dash       *dashboard.Dashboard
	cfg        config.Config
	changes    <-chan struct{}
	logChanges <-chan struct{}
	logger     *slog.Logger
	openURL    browser.Opener
	copyText   func(string) error
	prefsPath  string

	keys     keyMap
	theme    Theme
	screen   dashboard.Screen
	width    int
	height   int
	ready    bool
	showHelp bool
	spinner  spinner.Model

	// Docker screen
	pane        pane
	cursor      [2]int
	filterInput textinput.Model
	filtering   bool

	prompt  *prompt
	notice  notice
	pending map[string]string // command key -> label

	// Logs screen
	logViewport viewport.Model
	logFollow   bool
	logEntries  []logtail.Entry
	logErr      error
}

// New creates the root model. The start screen is mounted by Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.Open
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}
	screen, ok := dashboard.ParseScreen(opts.StartScreen)
	if !ok {
		screen = dashboard.ScreenDocker
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "filter"
	fi.CharLimit = 64

	m := Model{
		ctx:         ctx,
		dash:        opts.Dashboard,
		cfg:         opts.Config,
		changes:     opts.Changes,
		logChanges:  opts.LogChanges,
		logger:      logger,
		openURL:     openURL,
		copyText:    copyText,
		prefsPath:   opts.PrefsPath,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		screen:      screen,
		spinner:     sp,
		filterInput: fi,
		pending:     make(map[string]string),
		logFollow:   true,
	}
	if opts.Notice != "" {
		m.notice = notice{text: opts.Notice, isErr: true, at: time.Now()}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.spinner.Tick, waitForChange(m.changes), waitForLogChange(m.logChanges)}
	if err := m.dash.Mount(m.ctx, m.screen); err != nil {
		m.logger.Error("mount screen", "screen", string(m.screen), "error", err)
	}
	if m.screen == dashboard.ScreenLogs {
		cmds = append(cmds, m.readLogs())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.contentHeight())
		}
		m.logViewport.Width = msg.Width
		m.logViewport.Height = m.contentHeight()
		m.ready = true
		m.syncLogViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if !m.notice.at.IsZero() && time.Since(m.notice.at) > noticeTTL {
			m.notice = notice{}
		}
		cmds := []tea.Cmd{tickCmd()}
		if m.logChanges == nil && m.screen == dashboard.ScreenLogs && m.logFollow {
			cmds = append(cmds, m.readLogs())
		}
		return m, tea.Batch(cmds...)

	case logChangedMsg:
		cmds := []tea.Cmd{waitForLogChange(m.logChanges)}
		if m.screen == dashboard.ScreenLogs && m.logFollow {
			cmds = append(cmds, m.readLogs())
		}
		return m, tea.Batch(cmds...)

	case changedMsg:
		m.clampCursors()
		return m, waitForChange(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case outcomeMsg:
		return m.handleOutcome(msg)

	case logMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.syncLogViewport()
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.setNotice("could not open browser: "+msg.err.Error(), true)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setNotice("clipboard: "+msg.err.Error(), true)
		} else {
			m.setNotice("authorization URL copied", false)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.prompt != nil {
		return m.renderPrompt()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.NextScreen):
		return m.switchScreen(m.screen.Next())
	case key.Matches(msg, m.keys.PrevScreen):
		return m.switchScreen(m.screen.Prev())
	case key.Matches(msg, m.keys.GoDocker):
		return m.switchScreen(dashboard.ScreenDocker)
	case key.Matches(msg, m.keys.GoHome):
		return m.switchScreen(dashboard.ScreenHomeAutomation)
	case key.Matches(msg, m.keys.GoMaint):
		return m.switchScreen(dashboard.ScreenMaintenance)
	case key.Matches(msg, m.keys.GoLogs):
		return m.switchScreen(dashboard.ScreenLogs)
	case key.Matches(msg, m.keys.RefreshNow):
		m.refreshNow()
		return m, nil
	}

	switch m.screen {
	case dashboard.ScreenDocker:
		return m.handleDockerKey(msg)
	case dashboard.ScreenHomeAutomation:
		return m.handleHomeKey(msg)
	case dashboard.ScreenMaintenance:
		return m.handleMaintenanceKey(msg)
	case dashboard.ScreenLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// switchScreen unmounts the current screen's controllers and mounts the next.
func (m Model) switchScreen(next dashboard.Screen) (tea.Model, tea.Cmd) {
	if next == m.screen {
		return m, nil
	}
	if err := m.dash.Mount(m.ctx, next); err != nil {
		m.logger.Error("mount screen", "screen", string(next), "error", err)
		m.setNotice(err.Error(), true)
	}
	m.screen = next
	m.filtering = false
	m.filterInput.Blur()
	if next == dashboard.ScreenLogs {
		return m, m.readLogs()
	}
	return m, nil
}

// refreshNow asks every controller of the screen for an immediate poll.
func (m *Model) refreshNow() {
	switch m.screen {
	case dashboard.ScreenDocker:
		m.dash.Containers.Refresh()
		m.dash.Volumes.Refresh()
		m.dash.Status.Refresh()
	case dashboard.ScreenHomeAutomation:
		m.dash.Versions.Refresh()
		m.dash.Status.Refresh()
	case dashboard.ScreenMaintenance:
		m.dash.Health.Refresh()
		m.dash.Config.Refresh()
	}
}

// dispatch runs a command through ctrl off the UI goroutine.
func (m Model) dispatch(ctrl dispatcher, cmdKey, label string, command func(context.Context) api.Outcome) tea.Cmd {
	if _, busy := m.pending[cmdKey]; busy {
		return nil
	}
	m.pending[cmdKey] = label
	ctx := m.ctx
	return func() tea.Msg {
		return outcomeMsg{key: cmdKey, label: label, outcome: ctrl.Dispatch(ctx, cmdKey, command)}
	}
}

func (m Model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	delete(m.pending, msg.key)

	if expiry, ok := api.IsCredentialExpiry(msg.outcome.Err); ok {
		m.setNotice("Google credentials expired, opening the authorization page", true)
		return m, m.open(expiry.AuthURL)
	}
	if !msg.outcome.Success() {
		m.setNotice(msg.label+" failed: "+api.NewErrorInfo(msg.outcome.Err).Message, true)
		return m, nil
	}

	text := msg.label + " accepted"
	if r := msg.update; r != nil && r.NewVersion != "" {
		text = "Home Assistant updated to " + r.NewVersion
		if r.PreviousVersion != "" {
			text += " (was " + r.PreviousVersion + ")"
		}
	}
	m.setNotice(text, false)
	m.refreshNow()
	return m, nil
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = notice{text: text, isErr: isErr, at: time.Now()}
}

func (m Model) open(rawURL string) tea.Cmd {
	openURL, ctx := m.openURL, m.ctx
	return func() tea.Msg {
		return openedMsg{url: rawURL, err: openURL(ctx, rawURL)}
	}
}

func (m Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Screen: string(m.screen)}); err != nil {
		m.logger.Warn("save prefs", "error", err)
	}
}

func (m Model) contentHeight() int {
	// header, tab bar and footer
	h := m.height - 3
	if h < 1 {
		return 1
	}
	return h
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Dashboard == nil {
		return errors.New("ui requires a dashboard")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.savePrefs()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Messages

type tickMsg time.Time

type changedMsg struct{}

type logChangedMsg struct{}

type outcomeMsg struct {
	key     string
	label   string
	outcome api.Outcome
	update  *api.UpdateResult
}

type logMsg struct {
	entries []logtail.Entry
	err     error
}

type openedMsg struct {
	url string
	err error
}

type copiedMsg struct{ err error }

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func waitForLogChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return logChangedMsg{}
	}
}
