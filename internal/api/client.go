package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Reader defines the read side of the control-plane API. It is implemented by
// *Client and can be replaced in tests.
type Reader interface {
	FetchContainers(ctx context.Context) ([]Container, error)
	FetchVolumes(ctx context.Context) ([]Volume, error)
	FetchStatus(ctx context.Context) (OperationStatus, error)
	FetchVersionInfo(ctx context.Context) (VersionInfo, error)
	FetchHealth(ctx context.Context) (Health, error)
	FetchRemoteConfig(ctx context.Context) (RemoteConfig, error)
}

// Ensure Client implements Reader at compile time.
var _ Reader = (*Client)(nil)

// Client talks to the home automation control-plane API.
type Client struct {
	transport *Transport
}

// NewClient builds a Client for baseURL. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	transport, err := NewTransport(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{transport: transport}, nil
}

// FetchContainers lists all containers, running or not.
func (c *Client) FetchContainers(ctx context.Context) ([]Container, error) {
	var payload *ContainerList
	if err := c.getJSON(ctx, "/api/containers", &payload); err != nil {
		return nil, err
	}
	if payload.Containers == nil {
		return nil, fmt.Errorf("%w: /api/containers has no container list", ErrInvalidPayload)
	}
	return payload.Containers, nil
}

// FetchVolumes lists docker volumes.
func (c *Client) FetchVolumes(ctx context.Context) ([]Volume, error) {
	var payload *VolumeList
	if err := c.getJSON(ctx, "/api/volumes", &payload); err != nil {
		return nil, err
	}
	if payload.Volumes == nil {
		return nil, fmt.Errorf("%w: /api/volumes has no volume list", ErrInvalidPayload)
	}
	return payload.Volumes, nil
}

// FetchStatus reads the remote operation flags.
func (c *Client) FetchStatus(ctx context.Context) (OperationStatus, error) {
	var payload *OperationStatus
	if err := c.getJSON(ctx, "/api/status", &payload); err != nil {
		return OperationStatus{}, err
	}
	return *payload, nil
}

// FetchVersionInfo reads the running and available home automation versions.
func (c *Client) FetchVersionInfo(ctx context.Context) (VersionInfo, error) {
	var payload *VersionInfo
	if err := c.getJSON(ctx, "/api/home_automation/versioninfo", &payload); err != nil {
		return VersionInfo{}, err
	}
	if strings.TrimSpace(payload.Version) == "" {
		return VersionInfo{}, fmt.Errorf("%w: no version data", ErrInvalidPayload)
	}
	return *payload, nil
}

// FetchHealth calls the plain-text healthcheck endpoint.
func (c *Client) FetchHealth(ctx context.Context) (Health, error) {
	const path = "/api/home_automation/healthcheck"
	resp, err := c.transport.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Health{}, err
	}
	if resp.Status != http.StatusOK {
		return Health{}, newRemoteError(path, resp.Status, resp.Body)
	}
	message := strings.TrimSpace(string(resp.Body))
	if message == "" {
		return Health{}, fmt.Errorf("%w: empty healthcheck", ErrInvalidPayload)
	}
	return Health{Healthy: strings.EqualFold(message, "healthy"), Message: message}, nil
}

// FetchRemoteConfig returns the remote's effective configuration, as exposed
// for debugging.
func (c *Client) FetchRemoteConfig(ctx context.Context) (RemoteConfig, error) {
	var payload map[string]any
	if err := c.getJSON(ctx, "/api/config", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// getJSON performs a GET and decodes a 200 body into dest, which must be a
// pointer to a pointer or map so that a literal null stays detectable.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	resp, err := c.transport.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if resp.Status >= 300 {
		return newRemoteError(path, resp.Status, resp.Body)
	}
	return decodePayload(path, resp.Body, dest)
}

func decodePayload(path string, body []byte, dest any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: %s returned no data", ErrInvalidPayload, path)
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidPayload, path, err)
	}
	return nil
}
