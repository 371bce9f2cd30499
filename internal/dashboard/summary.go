package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"golang.org/x/sync/errgroup"

	"github.com/five82/hactl/internal/api"
)

// Snapshot is the result of reading every resource once. Each field is
// independent: one failed read does not hide the others.
type Snapshot struct {
	Taken time.Time

	Containers    []api.Container
	ContainersErr error
	Volumes       []api.Volume
	VolumesErr    error
	Status        api.OperationStatus
	StatusErr     error
	Versions      api.VersionInfo
	VersionsErr   error
	Health        api.Health
	HealthErr     error
	Config        api.RemoteConfig
	ConfigErr     error
}

// collectLimit caps the reads Collect keeps in flight against the remote.
const collectLimit = 3

// Collect reads every resource, at most collectLimit at a time.
func Collect(ctx context.Context, reader api.Reader) Snapshot {
	snap := Snapshot{Taken: time.Now()}
	var g errgroup.Group
	g.SetLimit(collectLimit)
	// Read errors are kept per field, so no goroutine returns one and a
	// single failure never stops the rest. Wait is only the join.
	g.Go(func() error {
		snap.Containers, snap.ContainersErr = reader.FetchContainers(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Volumes, snap.VolumesErr = reader.FetchVolumes(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Status, snap.StatusErr = reader.FetchStatus(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Versions, snap.VersionsErr = reader.FetchVersionInfo(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Health, snap.HealthErr = reader.FetchHealth(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Config, snap.ConfigErr = reader.FetchRemoteConfig(ctx)
		return nil
	})
	_ = g.Wait()
	return snap
}

// Failed reports whether any read failed.
func (s Snapshot) Failed() bool {
	return s.ContainersErr != nil || s.VolumesErr != nil || s.StatusErr != nil ||
		s.VersionsErr != nil || s.HealthErr != nil || s.ConfigErr != nil
}

// WriteSummary prints a plain-text report of snap for non-interactive use.
func WriteSummary(w io.Writer, snap Snapshot) error {
	var b strings.Builder

	b.WriteString("containers:\n")
	if snap.ContainersErr != nil {
		fmt.Fprintf(&b, "  error: %s\n", api.NewErrorInfo(snap.ContainersErr).Message)
	} else if len(snap.Containers) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, c := range snap.Containers {
		fmt.Fprintf(&b, "  %-30s %-10s %s\n", c.Name, c.State, strings.Join(c.Image.Tags, ","))
	}

	b.WriteString("volumes:\n")
	if snap.VolumesErr != nil {
		fmt.Fprintf(&b, "  error: %s\n", api.NewErrorInfo(snap.VolumesErr).Message)
	} else if len(snap.Volumes) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, v := range snap.Volumes {
		fmt.Fprintf(&b, "  %s\n", v.Name)
	}

	b.WriteString("status: ")
	if snap.StatusErr != nil {
		fmt.Fprintf(&b, "error: %s\n", api.NewErrorInfo(snap.StatusErr).Message)
	} else {
		busy := snap.Status.Describe()
		switch {
		case busy != "":
		case !snap.Status.Busy():
			busy = "idle"
		case snap.Status.FrontendBusy():
			busy = "frontend image pipeline running"
		default:
			busy = "updating"
		}
		b.WriteString(busy + "\n")
	}

	b.WriteString("version: ")
	if snap.VersionsErr != nil {
		fmt.Fprintf(&b, "error: %s\n", api.NewErrorInfo(snap.VersionsErr).Message)
	} else {
		b.WriteString(snap.Versions.Version)
		if avail := snap.Versions.Available; avail != nil {
			fmt.Fprintf(&b, " (upgrade to %s available", avail.Version)
			if since := avail.ParsedAvailableSince(); !since.IsZero() {
				fmt.Fprintf(&b, " for %s", units.HumanDuration(snap.Taken.Sub(since)))
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	b.WriteString("health: ")
	switch {
	case snap.HealthErr != nil:
		fmt.Fprintf(&b, "error: %s\n", api.NewErrorInfo(snap.HealthErr).Message)
	case snap.Health.Healthy:
		b.WriteString("healthy\n")
	default:
		fmt.Fprintf(&b, "unhealthy: %s\n", snap.Health.Message)
	}

	b.WriteString("config:\n")
	if snap.ConfigErr != nil {
		fmt.Fprintf(&b, "  error: %s\n", api.NewErrorInfo(snap.ConfigErr).Message)
	}
	for _, line := range snap.Config.Lines() {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
