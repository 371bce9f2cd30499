package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// recorder answers every request with the status configured for its path and
// keeps what it saw.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   map[string]int
	body     map[string]string
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(req.Body).Decode(&body)
	r.mu.Lock()
	r.requests = append(r.requests, recordedRequest{Method: req.Method, Path: req.URL.Path, Body: body})
	status, ok := r.status[req.URL.Path]
	text := r.body[req.URL.Path]
	r.mu.Unlock()
	if !ok {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

func (r *recorder) last(t *testing.T) recordedRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return r.requests[len(r.requests)-1]
}

func TestCommands_MethodsPathsAndExpectedStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		status int
		call   func(*Client) Outcome
	}{
		{"start", http.MethodPost, "/api/containers/start", 200, func(c *Client) Outcome { return c.StartContainer(context.Background(), "hass") }},
		{"stop", http.MethodPost, "/api/containers/stop", 200, func(c *Client) Outcome { return c.StopContainer(context.Background(), "hass") }},
		{"remove", http.MethodPost, "/api/containers/remove", 200, func(c *Client) Outcome { return c.RemoveContainer(context.Background(), "hass") }},
		{"remove volume", http.MethodPost, "/api/volumes/remove", 200, func(c *Client) Outcome { return c.RemoveVolume(context.Background(), "data") }},
		{"pull", http.MethodPost, "/api/compose/pull", 202, func(c *Client) Outcome { return c.ComposePull(context.Background()) }},
		{"up", http.MethodPost, "/api/compose/up", 202, func(c *Client) Outcome { return c.ComposeUp(context.Background()) }},
		{"down", http.MethodPost, "/api/compose/down", 202, func(c *Client) Outcome { return c.ComposeDown(context.Background()) }},
		{"prune", http.MethodDelete, "/api/prune", 202, func(c *Client) Outcome { return c.Prune(context.Background()) }},
		{"reset status", http.MethodDelete, "/api/status", 200, func(c *Client) Outcome { return c.ResetStatus(context.Background()) }},
		{"refresh versions", http.MethodPost, "/api/home_automation/versioninfo/refresh", 202, func(c *Client) Outcome { return c.RefreshVersionInfo(context.Background()) }},
		{"upgrade", http.MethodPost, "/api/home_automation/upgrade", 202, func(c *Client) Outcome { return c.UpgradeServer(context.Background()) }},
		{"auto upgrade", http.MethodPost, "/api/home_automation/autoupgrade", 202, func(c *Client) Outcome { return c.AutoUpgrade(context.Background()) }},
		{"reload config", http.MethodPost, "/api/config/reload", 200, func(c *Client) Outcome { return c.ReloadConfig(context.Background()) }},
		{"compress", http.MethodPost, "/api/compress", 200, func(c *Client) Outcome { return c.Compress(context.Background()) }},
		{"archive", http.MethodPost, "/api/archive", 200, func(c *Client) Outcome { return c.Archive(context.Background()) }},
		{"reorganize", http.MethodPost, "/api/reorganize", 200, func(c *Client) Outcome { return c.Reorganize(context.Background()) }},
		{"revoke", http.MethodPost, "/api/home_automation/oauth2/google/revoke", 200, func(c *Client) Outcome { return c.RevokeGoogleOAuth(context.Background()) }},
		{"clear", http.MethodDelete, "/api/home_automation/oauth2/google/clear", 204, func(c *Client) Outcome { return c.ClearGoogleOAuth(context.Background()) }},
		{"build", http.MethodPost, "/api/home_automation/frontend/build", 202, func(c *Client) Outcome { return c.BuildFrontend(context.Background()) }},
		{"deploy", http.MethodPost, "/api/home_automation/frontend/deploy", 202, func(c *Client) Outcome { return c.DeployFrontend(context.Background()) }},
		{"reset image", http.MethodDelete, "/api/home_automation/frontend/reset-image-status", 200, func(c *Client) Outcome { return c.ResetFrontendImageStatus(context.Background()) }},
		{"restart", http.MethodPost, "/api/home_automation/restart", 202, func(c *Client) Outcome { return c.RestartServer(context.Background()) }},
		{"testing version", http.MethodPost, "/api/testing/version-initfile/set", 200, func(c *Client) Outcome { return c.SetTestingVersion(context.Background(), "1.0.0") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{status: map[string]int{tt.path: tt.status}}
			c := newTestClient(t, rec.handler)

			out := tt.call(c)
			if !out.Success() {
				t.Fatalf("outcome = %#v, want success", out)
			}
			if out.Status != tt.status {
				t.Fatalf("Status = %d, want %d", out.Status, tt.status)
			}
			got := rec.last(t)
			if got.Method != tt.method || got.Path != tt.path {
				t.Fatalf("request = %s %s, want %s %s", got.Method, got.Path, tt.method, tt.path)
			}
		})
	}
}

func TestCommands_RequestBodies(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler)

	c.StopContainer(context.Background(), "zigbee")
	if got := rec.last(t).Body["container"]; got != "zigbee" {
		t.Fatalf("container body = %v, want zigbee", got)
	}

	c.RemoveVolume(context.Background(), "vol-1")
	if got := rec.last(t).Body["volume"]; got != "vol-1" {
		t.Fatalf("volume body = %v, want vol-1", got)
	}

	c.SetTestingVersion(context.Background(), " 9.9.9 ")
	if got := rec.last(t).Body["VERSION"]; got != "9.9.9" {
		t.Fatalf("VERSION body = %v, want 9.9.9", got)
	}
}

func TestCommands_UnexpectedSuccessCodeFails(t *testing.T) {
	rec := &recorder{status: map[string]int{"/api/compose/pull": http.StatusOK}}
	c := newTestClient(t, rec.handler)

	out := c.ComposePull(context.Background())
	if out.Success() {
		t.Fatal("compose pull accepted a 200, want 202 only")
	}
	if !strings.Contains(NewErrorInfo(out.Err).Message, "unexpected status 200") {
		t.Fatalf("message = %q", NewErrorInfo(out.Err).Message)
	}
}

func TestCommands_FailureMessageFromBody(t *testing.T) {
	rec := &recorder{
		status: map[string]int{"/api/containers/start": http.StatusNotFound, "/api/config/reload": http.StatusInternalServerError},
		body:   map[string]string{"/api/containers/start": "Container not fnund.", "/api/config/reload": `{"error":"bad env"}`},
	}
	c := newTestClient(t, rec.handler)

	out := c.StartContainer(context.Background(), "ghost")
	if out.Success() || NewErrorInfo(out.Err).Message != "Container not fnund." {
		t.Fatalf("start outcome = %#v", out)
	}
	out = c.ReloadConfig(context.Background())
	if out.Success() || NewErrorInfo(out.Err).Message != "bad env" {
		t.Fatalf("reload outcome = %#v", out)
	}
}

func TestCommands_NotBlockedWhileBusy(t *testing.T) {
	rec := &recorder{status: map[string]int{"/api/compose/up": http.StatusAccepted}}
	c := newTestClient(t, rec.handler)

	for i := 0; i < 3; i++ {
		if out := c.ComposeUp(context.Background()); !out.Success() {
			t.Fatalf("dispatch %d = %#v, want accepted", i, out)
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.requests) != 3 {
		t.Fatalf("requests = %d, want 3 (one per dispatch, no retries)", len(rec.requests))
	}
}

func TestUpdateHomeAssistant(t *testing.T) {
	rec := &recorder{body: map[string]string{"/api/update-home-assistant": `{"success":true,"new_version":"2024.2.1"}`}}
	c := newTestClient(t, rec.handler)

	result, out := c.UpdateHomeAssistant(context.Background(), "")
	if !out.Success() || !result.Success || result.NewVersion != "2024.2.1" {
		t.Fatalf("result = %#v outcome = %#v", result, out)
	}
	if rec.last(t).Body != nil {
		t.Fatalf("latest update sent a body: %v", rec.last(t).Body)
	}

	_, out = c.UpdateHomeAssistant(context.Background(), "2023.12.0")
	if !out.Success() {
		t.Fatalf("forced update outcome = %#v", out)
	}
	if got := rec.last(t).Body["update_to_version"]; got != "2023.12.0" {
		t.Fatalf("update_to_version = %v", got)
	}
}

func TestSendTestMail_FailureIsCredentialExpiry(t *testing.T) {
	rec := &recorder{
		status: map[string]int{"/api/mail/test": http.StatusInternalServerError},
		body:   map[string]string{"/api/mail/test": `{"error":"invalid_grant"}`},
	}
	c := newTestClient(t, rec.handler)

	out := c.SendTestMail(context.Background())
	expiry, ok := IsCredentialExpiry(out.Err)
	if !ok {
		t.Fatalf("error = %v, want *CredentialExpiryError", out.Err)
	}
	if !strings.HasSuffix(expiry.AuthURL, OAuthRequestPath) {
		t.Fatalf("AuthURL = %q, want suffix %q", expiry.AuthURL, OAuthRequestPath)
	}
	var remote *RemoteError
	if !errors.As(out.Err, &remote) || remote.Message != "invalid_grant" {
		t.Fatalf("cause = %v, want remote invalid_grant", out.Err)
	}

	rec.mu.Lock()
	rec.status["/api/mail/test"] = http.StatusOK
	rec.mu.Unlock()
	if out := c.SendTestMail(context.Background()); !out.Success() {
		t.Fatalf("successful mail outcome = %#v", out)
	}
}
