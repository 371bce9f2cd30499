package api

import (
	"fmt"
	"sort"
	"time"
)

// isoLocalLayout matches zone-less timestamps with optional microseconds.
const isoLocalLayout = "2006-01-02T15:04:05.999999"

// Container mirrors an entry of /api/containers.
type Container struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Image Image  `json:"image"`
}

// Running reports whether the runtime considers the container up.
func (c Container) Running() bool {
	return c.State == "running"
}

// Image describes the image a container was created from.
type Image struct {
	Tags []string `json:"tags"`
}

// ContainerList mirrors /api/containers.
type ContainerList struct {
	Containers []Container `json:"containers"`
}

// Volume mirrors an entry of /api/volumes.
type Volume struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// VolumeList mirrors /api/volumes.
type VolumeList struct {
	Volumes []Volume `json:"volumes"`
}

// OperationStatus mirrors /api/status: long-running remote operations. The
// remote does not promise exclusivity, so any combination may be set.
type OperationStatus struct {
	Pulling               bool `json:"pulling"`
	Upping                bool `json:"upping"`
	Downing               bool `json:"downing"`
	Pruning               bool `json:"pruning"`
	BuildingFrontendImage bool `json:"building_frontend_image"`
	PushingFrontendImage  bool `json:"pushing_frontend_image"`
	Updating              bool `json:"updating"`
}

// ComposeBusy reports whether compose-family controls must be disabled.
func (s OperationStatus) ComposeBusy() bool {
	return s.Pulling || s.Upping || s.Downing || s.Pruning
}

// FrontendBusy reports whether the frontend image pipeline is running.
func (s OperationStatus) FrontendBusy() bool {
	return s.BuildingFrontendImage || s.PushingFrontendImage
}

// Busy reports whether any remote operation is in progress.
func (s OperationStatus) Busy() bool {
	return s.ComposeBusy() || s.FrontendBusy() || s.Updating
}

// Describe returns a short label for the active compose operation, or "".
func (s OperationStatus) Describe() string {
	switch {
	case s.Downing:
		return "Downing..."
	case s.Upping:
		return "Upping..."
	case s.Pulling:
		return "Pulling..."
	case s.Pruning:
		return "Pruning..."
	}
	return ""
}

// VersionInfo mirrors /api/home_automation/versioninfo.
type VersionInfo struct {
	Version   string            `json:"version"`
	Available *AvailableVersion `json:"available,omitempty"`
}

// AvailableVersion is present when the remote knows of a newer release.
type AvailableVersion struct {
	Version        string `json:"version"`
	AvailableSince string `json:"availableSince"`
}

// ParsedAvailableSince returns AvailableSince as time.Time when possible.
func (a AvailableVersion) ParsedAvailableSince() time.Time {
	return parseTime(a.AvailableSince)
}

// UpdateResult mirrors the body of /api/update-home-assistant.
type UpdateResult struct {
	Success         bool   `json:"success"`
	NewVersion      string `json:"new_version"`
	PreviousVersion string `json:"previous_version"`
}

// Health is the result of the remote healthcheck.
type Health struct {
	Healthy bool
	Message string
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(isoLocalLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// RemoteConfig is the remote's effective configuration from /api/config.
type RemoteConfig map[string]any

// Lines renders the top-level entries as sorted "key = value" lines.
func (c RemoteConfig) Lines() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s = %v", k, c[k]))
	}
	return lines
}
