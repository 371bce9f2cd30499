package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("base = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("helix:10000")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "helix:10000" {
		t.Fatalf("url = %q, want http://helix:10000", u.String())
	}

	u, err = parseBaseURL("https://example.com:1234/root/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/root" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("parseBaseURL accepted a URL without host")
	}
}

func TestTransport_KeepsPathPrefix(t *testing.T) {
	tr, err := NewTransport("http://example.com/root/", 0)
	if err != nil {
		t.Fatalf("NewTransport returned error: %v", err)
	}
	if got := tr.URL("/api/containers"); got != "http://example.com/root/api/containers" {
		t.Fatalf("URL = %q", got)
	}
}

func TestTransport_ReturnsErrorStatusesNormally(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotContentType string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"short and stout"}`))
	})

	resp, err := c.transport.Do(context.Background(), http.MethodPost, "/api/x", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Do returned error for a 418: %v", err)
	}
	if resp.Status != http.StatusTeapot || !strings.Contains(string(resp.Body), "short and stout") {
		t.Fatalf("response = %d %q", resp.Status, resp.Body)
	}
	if !strings.HasPrefix(gotUserAgent, "hactl/") {
		t.Fatalf("User-Agent = %q, want hactl/*", gotUserAgent)
	}
	if gotContentType != "application/json" || gotBody["k"] != "v" {
		t.Fatalf("request body = %v (%s), want JSON k=v", gotBody, gotContentType)
	}
}

func TestTransport_ConnectionFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(url, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchContainers(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("FetchContainers error = %v (%T), want *TransportError", err, err)
	}
	if transportErr.Path != "/api/containers" {
		t.Fatalf("TransportError.Path = %q", transportErr.Path)
	}
}

func TestClient_FetchesResources(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/containers":
			_, _ = w.Write([]byte(`{"containers":[{"name":"hass","state":"running","image":{"tags":["homeassistant/home-assistant:2024.1.0"]}},{"name":"db","state":"exited","image":{"tags":[]}}]}`))
		case "/api/volumes":
			_, _ = w.Write([]byte(`{"volumes":[{"name":"data","id":"abc"}]}`))
		case "/api/status":
			_, _ = w.Write([]byte(`{"pulling":true,"upping":false,"downing":false,"pruning":false,"building_frontend_image":false,"pushing_frontend_image":true,"updating":false}`))
		case "/api/home_automation/versioninfo":
			_, _ = w.Write([]byte(`{"version":"1.2.0","available":{"version":"1.3.0","availableSince":"2024-03-01T10:00:00.123456"}}`))
		case "/api/home_automation/healthcheck":
			_, _ = w.Write([]byte("healthy"))
		case "/api/config":
			_, _ = w.Write([]byte(`{"compose_file":"/srv/compose.yml"}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	containers, err := c.FetchContainers(ctx)
	if err != nil {
		t.Fatalf("FetchContainers returned error: %v", err)
	}
	if len(containers) != 2 || containers[0].Name != "hass" || !containers[0].Running() || containers[1].Running() {
		t.Fatalf("containers = %#v", containers)
	}
	if containers[0].Image.Tags[0] != "homeassistant/home-assistant:2024.1.0" {
		t.Fatalf("image tags = %v", containers[0].Image.Tags)
	}

	volumes, err := c.FetchVolumes(ctx)
	if err != nil {
		t.Fatalf("FetchVolumes returned error: %v", err)
	}
	if len(volumes) != 1 || volumes[0].ID != "abc" {
		t.Fatalf("volumes = %#v", volumes)
	}

	status, err := c.FetchStatus(ctx)
	if err != nil {
		t.Fatalf("FetchStatus returned error: %v", err)
	}
	if !status.Pulling || !status.PushingFrontendImage || status.Upping {
		t.Fatalf("status = %#v", status)
	}

	info, err := c.FetchVersionInfo(ctx)
	if err != nil {
		t.Fatalf("FetchVersionInfo returned error: %v", err)
	}
	if info.Version != "1.2.0" || info.Available == nil || info.Available.Version != "1.3.0" {
		t.Fatalf("version info = %#v", info)
	}
	if since := info.Available.ParsedAvailableSince(); since.IsZero() || since.Month() != time.March {
		t.Fatalf("ParsedAvailableSince = %v", since)
	}

	health, err := c.FetchHealth(ctx)
	if err != nil || !health.Healthy {
		t.Fatalf("FetchHealth = %#v, %v", health, err)
	}

	cfg, err := c.FetchRemoteConfig(ctx)
	if err != nil || cfg["compose_file"] != "/srv/compose.yml" {
		t.Fatalf("FetchRemoteConfig = %v, %v", cfg, err)
	}
}

func TestRemoteConfig_LinesAreSorted(t *testing.T) {
	cfg := RemoteConfig{"tz": "Europe/Oslo", "compose_file": "/srv/compose.yml", "retries": float64(3)}
	got := cfg.Lines()
	want := []string{"compose_file = /srv/compose.yml", "retries = 3", "tz = Europe/Oslo"}
	if len(got) != len(want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClient_ReadsAreIdempotent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"containers":[{"name":"a","state":"running","image":{"tags":["x"]}}]}`))
	})
	first, err := c.FetchContainers(context.Background())
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := c.FetchContainers(context.Background())
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reads differ: %#v vs %#v", first, second)
	}
}

func TestClient_InvalidPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		read func(*Client) error
	}{
		{"null containers", "null", func(c *Client) error { _, err := c.FetchContainers(context.Background()); return err }},
		{"empty containers", "", func(c *Client) error { _, err := c.FetchContainers(context.Background()); return err }},
		{"containers field null", `{"containers":null}`, func(c *Client) error { _, err := c.FetchContainers(context.Background()); return err }},
		{"null volumes", "null", func(c *Client) error { _, err := c.FetchVolumes(context.Background()); return err }},
		{"null status", " null\n", func(c *Client) error { _, err := c.FetchStatus(context.Background()); return err }},
		{"malformed status", "{not-json", func(c *Client) error { _, err := c.FetchStatus(context.Background()); return err }},
		{"no version", `{}`, func(c *Client) error { _, err := c.FetchVersionInfo(context.Background()); return err }},
		{"empty health", "", func(c *Client) error { _, err := c.FetchHealth(context.Background()); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			err := tt.read(c)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("error = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestClient_EmptyContainerListIsValid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"containers":[]}`))
	})
	containers, err := c.FetchContainers(context.Background())
	if err != nil {
		t.Fatalf("FetchContainers returned error: %v", err)
	}
	if containers == nil || len(containers) != 0 {
		t.Fatalf("containers = %#v, want empty non-nil list", containers)
	}
}

func TestClient_RemoteErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"json error field", `{"error": "X"}`, "X"},
		{"plain text", "Container not fnund.\n", "Container not fnund."},
		{"empty body", "", "api /api/containers returned status 500"},
		{"json without error", `{"detail":"nope"}`, `{"detail":"nope"}`},
		{"json string", `"docker is down"`, "docker is down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.FetchContainers(context.Background())
			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("error = %v (%T), want *RemoteError", err, err)
			}
			if remote.Status != http.StatusInternalServerError {
				t.Fatalf("Status = %d, want 500", remote.Status)
			}
			if got := NewErrorInfo(err).Message; got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewErrorInfo(t *testing.T) {
	if NewErrorInfo(nil) != nil {
		t.Fatal("NewErrorInfo(nil) should be nil")
	}
	wrapped := errors.Join(errors.New("ctx"), &RemoteError{Message: "inner"})
	if got := NewErrorInfo(wrapped).Message; got != "inner" {
		t.Fatalf("message = %q, want inner", got)
	}
	transport := &TransportError{Method: "GET", Path: "/api/status", Err: errors.New("connection refused")}
	if got := NewErrorInfo(transport).Message; got != "GET /api/status: connection refused" {
		t.Fatalf("message = %q", got)
	}
}

func TestOperationStatusHelpers(t *testing.T) {
	tests := []struct {
		name     string
		status   OperationStatus
		compose  bool
		frontend bool
		busy     bool
		label    string
	}{
		{"idle", OperationStatus{}, false, false, false, ""},
		{"pulling", OperationStatus{Pulling: true}, true, false, true, "Pulling..."},
		{"upping", OperationStatus{Upping: true}, true, false, true, "Upping..."},
		{"downing wins", OperationStatus{Downing: true, Pulling: true}, true, false, true, "Downing..."},
		{"pruning", OperationStatus{Pruning: true}, true, false, true, "Pruning..."},
		{"frontend only", OperationStatus{BuildingFrontendImage: true}, false, true, true, ""},
		{"updating only", OperationStatus{Updating: true}, false, false, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.ComposeBusy(); got != tt.compose {
				t.Fatalf("ComposeBusy = %v, want %v", got, tt.compose)
			}
			if got := tt.status.FrontendBusy(); got != tt.frontend {
				t.Fatalf("FrontendBusy = %v, want %v", got, tt.frontend)
			}
			if got := tt.status.Busy(); got != tt.busy {
				t.Fatalf("Busy = %v, want %v", got, tt.busy)
			}
			if got := tt.status.Describe(); got != tt.label {
				t.Fatalf("Describe = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatal("parseTime should parse RFC3339")
	}
	got := parseTime("2025-12-13T10:11:12")
	if got.IsZero() || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatal("parseTime should return zero for unknown layouts")
	}
}
