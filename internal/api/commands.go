package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// OAuthRequestPath is the browser hand-off for Google OAuth authorization.
const OAuthRequestPath = "/backend/home_automation/oauth2/google/request"

// Outcome is the acceptance result of one dispatched command. It says nothing
// about completion; completion shows up in later status polls.
type Outcome struct {
	Status  int
	Message string
	Err     error
}

// Success reports whether the remote accepted the command.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// expect lists the acceptable status codes of a command. A nil expect means
// any 2xx.
type expect []int

var (
	expectOK       = expect{http.StatusOK}
	expectAccepted = expect{http.StatusAccepted}
	expectAny2xx   expect
)

func (e expect) matches(status int) bool {
	if e == nil {
		return status >= 200 && status < 300
	}
	return slices.Contains(e, status)
}

type containerBody struct {
	Container string `json:"container"`
}

// StartContainer starts the named container.
func (c *Client) StartContainer(ctx context.Context, name string) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/containers/start", containerBody{Container: name}, expectOK)
}

// StopContainer stops the named container.
func (c *Client) StopContainer(ctx context.Context, name string) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/containers/stop", containerBody{Container: name}, expectOK)
}

// RemoveContainer removes the named container.
func (c *Client) RemoveContainer(ctx context.Context, name string) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/containers/remove", containerBody{Container: name}, expectOK)
}

// RemoveVolume removes a volume by name or id.
func (c *Client) RemoveVolume(ctx context.Context, volume string) Outcome {
	body := struct {
		Volume string `json:"volume"`
	}{Volume: volume}
	return c.dispatch(ctx, http.MethodPost, "/api/volumes/remove", body, expectOK)
}

// ComposePull asks the remote to pull compose images.
func (c *Client) ComposePull(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/compose/pull", nil, expectAccepted)
}

// ComposeUp asks the remote to bring the compose project up.
func (c *Client) ComposeUp(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/compose/up", nil, expectAccepted)
}

// ComposeDown asks the remote to bring the compose project down.
func (c *Client) ComposeDown(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/compose/down", nil, expectAccepted)
}

// Prune asks the remote to prune unused docker resources.
func (c *Client) Prune(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodDelete, "/api/prune", nil, expectAccepted)
}

// ResetStatus clears the remote operation flags.
func (c *Client) ResetStatus(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodDelete, "/api/status", nil, expectOK)
}

// RefreshVersionInfo triggers a re-check of available versions.
func (c *Client) RefreshVersionInfo(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/versioninfo/refresh", nil, expectAccepted)
}

// UpgradeServer triggers a self-upgrade of the home automation server.
func (c *Client) UpgradeServer(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/upgrade", nil, expectAny2xx)
}

// UpdateHomeAssistant upgrades Home Assistant. An empty version means the
// newest release known to the remote; a non-empty one forces that version.
func (c *Client) UpdateHomeAssistant(ctx context.Context, version string) (UpdateResult, Outcome) {
	var body any
	if v := strings.TrimSpace(version); v != "" {
		body = struct {
			UpdateToVersion string `json:"update_to_version"`
		}{UpdateToVersion: v}
	}
	outcome := c.dispatch(ctx, http.MethodPost, "/api/update-home-assistant", body, expectAny2xx)
	if !outcome.Success() {
		return UpdateResult{}, outcome
	}
	var result UpdateResult
	if err := json.Unmarshal([]byte(outcome.Message), &result); err != nil {
		return UpdateResult{}, outcome
	}
	return result, outcome
}

// AutoUpgrade triggers an upgrade only if one is available.
func (c *Client) AutoUpgrade(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/autoupgrade", nil, expectAccepted)
}

// ReloadConfig makes the remote re-read its configuration.
func (c *Client) ReloadConfig(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/config/reload", nil, expectAny2xx)
}

// Compress runs the remote PDF compression job.
func (c *Client) Compress(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/compress", nil, expectAny2xx)
}

// Archive runs the remote archive job.
func (c *Client) Archive(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/archive", nil, expectAny2xx)
}

// Reorganize runs the remote archive reorganization job.
func (c *Client) Reorganize(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/reorganize", nil, expectAny2xx)
}

// RevokeGoogleOAuth revokes the stored Google credentials at Google.
func (c *Client) RevokeGoogleOAuth(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/oauth2/google/revoke", nil, expectAny2xx)
}

// ClearGoogleOAuth drops the stored Google credentials locally.
func (c *Client) ClearGoogleOAuth(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodDelete, "/api/home_automation/oauth2/google/clear", nil, expectAny2xx)
}

// OAuthRequestURL is where the operator authorizes mail access.
func (c *Client) OAuthRequestURL() string {
	return c.transport.URL(OAuthRequestPath)
}

// SendTestMail sends a test mail. Any failure is reported as a
// *CredentialExpiryError pointing at the authorization hand-off.
func (c *Client) SendTestMail(ctx context.Context) Outcome {
	outcome := c.dispatch(ctx, http.MethodPost, "/api/mail/test", nil, expectAny2xx)
	if outcome.Success() {
		return outcome
	}
	outcome.Err = &CredentialExpiryError{AuthURL: c.OAuthRequestURL(), Cause: outcome.Err}
	return outcome
}

// BuildFrontend starts building the frontend image.
func (c *Client) BuildFrontend(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/frontend/build", nil, expectAny2xx)
}

// DeployFrontend pushes and deploys the built frontend image.
func (c *Client) DeployFrontend(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/frontend/deploy", nil, expectAny2xx)
}

// ResetFrontendImageStatus clears stuck frontend build/push flags.
func (c *Client) ResetFrontendImageStatus(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodDelete, "/api/home_automation/frontend/reset-image-status", nil, expectAny2xx)
}

// RestartServer restarts the home automation runner.
func (c *Client) RestartServer(ctx context.Context) Outcome {
	return c.dispatch(ctx, http.MethodPost, "/api/home_automation/restart", nil, expectAny2xx)
}

// SetTestingVersion overrides the version init file. Testing only.
func (c *Client) SetTestingVersion(ctx context.Context, version string) Outcome {
	body := struct {
		Version string `json:"VERSION"`
	}{Version: strings.TrimSpace(version)}
	return c.dispatch(ctx, http.MethodPost, "/api/testing/version-initfile/set", body, expectOK)
}

func (c *Client) dispatch(ctx context.Context, method, path string, body any, want expect) Outcome {
	resp, err := c.transport.Do(ctx, method, path, body)
	if err != nil {
		return Outcome{Err: err}
	}
	outcome := Outcome{Status: resp.Status, Message: strings.TrimSpace(string(resp.Body))}
	switch {
	case want.matches(resp.Status):
	case resp.Status >= 200 && resp.Status < 300:
		outcome.Err = &RemoteError{
			Path:    path,
			Status:  resp.Status,
			Message: fmt.Sprintf("api %s returned unexpected status %d", path, resp.Status),
		}
	default:
		outcome.Err = newRemoteError(path, resp.Status, resp.Body)
	}
	return outcome
}
