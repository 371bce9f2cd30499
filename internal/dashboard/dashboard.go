package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/hactl/internal/api"
	"github.com/five82/hactl/internal/state"
)

// Options configure the controllers a Dashboard builds.
type Options struct {
	RefreshInterval time.Duration
	StatusInterval  time.Duration
	Logger          *slog.Logger
	// OnSettle fires after any controller applies a change.
	OnSettle  func()
	NewTicker state.TickerFunc
}

// Dashboard owns one controller per remote resource and mounts the ones the
// visible screen needs.
type Dashboard struct {
	Client *api.Client

	Containers *state.Controller[[]api.Container]
	Volumes    *state.Controller[[]api.Volume]
	Status     *state.Controller[api.OperationStatus]
	Versions   *state.Controller[api.VersionInfo]
	Health     *state.Controller[api.Health]
	Config     *state.Controller[api.RemoteConfig]

	logger *slog.Logger

	mu      sync.Mutex
	screen  Screen
	mounted []state.Lifecycle
}

// New builds a Dashboard with every controller stopped.
func New(client *api.Client, opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctrlOpts := state.Options{Logger: logger, OnSettle: opts.OnSettle, NewTicker: opts.NewTicker}

	return &Dashboard{
		Client:     client,
		Containers: state.NewController("containers", client.FetchContainers, opts.RefreshInterval, ctrlOpts),
		Volumes:    state.NewController("volumes", client.FetchVolumes, opts.RefreshInterval, ctrlOpts),
		Status:     state.NewController("status", client.FetchStatus, opts.StatusInterval, ctrlOpts),
		Versions:   state.NewController("versioninfo", client.FetchVersionInfo, opts.RefreshInterval, ctrlOpts),
		Health:     state.NewController("health", client.FetchHealth, opts.RefreshInterval, ctrlOpts),
		Config:     state.NewController("config", client.FetchRemoteConfig, opts.RefreshInterval, ctrlOpts),
		logger:     logger,
	}
}

// Controllers returns the controllers that back screen s.
func (d *Dashboard) Controllers(s Screen) []state.Lifecycle {
	switch s {
	case ScreenDocker:
		return []state.Lifecycle{d.Containers, d.Volumes, d.Status}
	case ScreenHomeAutomation:
		return []state.Lifecycle{d.Versions, d.Status}
	case ScreenMaintenance:
		return []state.Lifecycle{d.Health, d.Config}
	default:
		return nil
	}
}

// Screen returns the mounted screen.
func (d *Dashboard) Screen() Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

// Mount switches to screen s: controllers the new screen does not use are
// stopped, and the ones it does use are started. A controller shared by both
// screens keeps running.
func (d *Dashboard) Mount(ctx context.Context, s Screen) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.Controllers(s)
	for _, c := range d.mounted {
		if !contains(next, c) {
			c.Stop()
		}
	}

	var errs []error
	for _, c := range next {
		if contains(d.mounted, c) {
			continue
		}
		if err := c.Start(ctx); err != nil && !errors.Is(err, state.ErrAlreadyStarted) {
			errs = append(errs, err)
		}
	}
	d.mounted = next
	d.screen = s
	d.logger.Debug("screen mounted", "screen", string(s), "controllers", len(next))
	return errors.Join(errs...)
}

// Close stops every mounted controller.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.mounted {
		c.Stop()
	}
	d.mounted = nil
}

func contains(list []state.Lifecycle, c state.Lifecycle) bool {
	for _, candidate := range list {
		if candidate == c {
			return true
		}
	}
	return false
}
