package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/five82/hactl/internal/api"
	"github.com/five82/hactl/internal/config"
	"github.com/five82/hactl/internal/dashboard"
	"github.com/five82/hactl/internal/logging"
	"github.com/five82/hactl/internal/logtail"
	"github.com/five82/hactl/internal/prefs"
	"github.com/five82/hactl/internal/ui"
)

const preflightTimeout = 3 * time.Second

// errReadsFailed makes -once exit non-zero when any resource could not be read.
var errReadsFailed = errors.New("one or more reads failed")

// Options configure the hactl application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses ~/.config/hactl/prefs.toml
	BaseURL      string // overrides base_url from the config file
	RefreshEvery time.Duration
	// Once prints a single summary instead of starting the UI. It is implied
	// when stdout is not a terminal.
	Once   bool
	Stdout io.Writer
}

// Run boots hactl until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)

	logger, closeLog := openLog(cfg)
	defer closeLog()

	client, err := api.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if opts.Once || !isTerminal(stdout) {
		return runOnce(ctx, client, stdout)
	}

	var notice string
	if err := ensureRemoteAvailable(ctx, client, preflightTimeout); err != nil {
		logger.Warn("remote not reachable at startup", "base_url", cfg.BaseURL, "error", err)
		notice = "remote unreachable: " + api.NewErrorInfo(err).Message
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	logChanges, err := logtail.Watch(watchCtx, cfg.LogFile)
	if err != nil {
		logger.Warn("log watch unavailable, polling instead", "path", cfg.LogFile, "error", err)
		logChanges = nil
	}

	changes := make(chan struct{}, 1)
	dash := dashboard.New(client, dashboard.Options{
		RefreshInterval: cfg.RefreshInterval,
		StatusInterval:  cfg.StatusInterval,
		Logger:          logger,
		OnSettle: func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		},
	})
	defer dash.Close()

	logger.Info("hactl started", "base_url", cfg.BaseURL, "refresh", cfg.RefreshInterval, "status", cfg.StatusInterval)
	return ui.Run(ui.Options{
		Context:     ctx,
		Dashboard:   dash,
		Config:      cfg,
		Changes:     changes,
		LogChanges:  logChanges,
		Notice:      notice,
		ThemeName:   userPrefs.Theme,
		StartScreen: userPrefs.Screen,
		PrefsPath:   opts.PrefsPath,
		Logger:      logger,
	})
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshInterval = opts.RefreshEvery
	}
}

// openLog returns the file logger, or a discarding one when the file cannot
// be opened: logging problems never stop the dashboard.
func openLog(cfg config.Config) (*slog.Logger, func()) {
	logger, closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return logging.Discard(), func() {}
	}
	return logger, func() { _ = closer.Close() }
}

// ensureRemoteAvailable checks the healthcheck endpoint with a short timeout.
func ensureRemoteAvailable(ctx context.Context, client *api.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := client.FetchHealth(ctx); err != nil {
		return err
	}
	return nil
}

func runOnce(ctx context.Context, client *api.Client, w io.Writer) error {
	snap := dashboard.Collect(ctx, client)
	if err := dashboard.WriteSummary(w, snap); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if snap.Failed() {
		return errReadsFailed
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
