package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/hactl/internal/api"
	"github.com/five82/hactl/internal/config"
)

func newRemote(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/containers":
			_, _ = w.Write([]byte(`{"containers":[{"name":"zigbee2mqtt","state":"exited","image":{"tags":[]}}]}`))
		case "/api/volumes":
			_, _ = w.Write([]byte(`{"volumes":[]}`))
		case "/api/status":
			_, _ = w.Write([]byte(`{}`))
		case "/api/home_automation/versioninfo":
			_, _ = w.Write([]byte(`{"version":"1.2.3"}`))
		case "/api/home_automation/healthcheck":
			if !healthy {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("healthy"))
		case "/api/config":
			_, _ = w.Write([]byte(`{"compose_file":"/srv/compose.yml"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "base_url = \"" + baseURL + "\"\n\n[logging]\nfile = \"" + filepath.Join(dir, "hactl.log") + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_OncePrintsSummary(t *testing.T) {
	server := newRemote(t, true)
	var out bytes.Buffer

	err := Run(context.Background(), Options{
		ConfigPath: writeConfig(t, server.URL),
		Once:       true,
		Stdout:     &out,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, want := range []string{"zigbee2mqtt", "status: idle", "version: 1.2.3", "health: healthy"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_OnceReportsFailedReads(t *testing.T) {
	server := newRemote(t, false)
	var out bytes.Buffer

	err := Run(context.Background(), Options{
		ConfigPath: writeConfig(t, server.URL),
		Stdout:     &out,
	})
	if !errors.Is(err, errReadsFailed) {
		t.Fatalf("Run error = %v, want errReadsFailed", err)
	}
	if !strings.Contains(out.String(), "health: error:") {
		t.Fatalf("summary does not report the health failure:\n%s", out.String())
	}
}

func TestRun_BaseURLFlagOverridesConfig(t *testing.T) {
	server := newRemote(t, true)
	var out bytes.Buffer

	err := Run(context.Background(), Options{
		ConfigPath: writeConfig(t, "http://127.0.0.1:1"),
		BaseURL:    server.URL,
		Once:       true,
		Stdout:     &out,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(&cfg, Options{})
	if cfg.BaseURL != config.Default().BaseURL || cfg.RefreshInterval != config.Default().RefreshInterval {
		t.Fatalf("empty options changed config: %#v", cfg)
	}

	applyOverrides(&cfg, Options{BaseURL: "http://nas:10000", RefreshEvery: 30 * time.Second})
	if cfg.BaseURL != "http://nas:10000" || cfg.RefreshInterval != 30*time.Second {
		t.Fatalf("overrides not applied: %#v", cfg)
	}
}

func TestEnsureRemoteAvailable(t *testing.T) {
	healthy := newRemote(t, true)
	client, err := api.NewClient(healthy.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := ensureRemoteAvailable(context.Background(), client, time.Second); err != nil {
		t.Fatalf("healthy remote: %v", err)
	}

	broken := newRemote(t, false)
	client, err = api.NewClient(broken.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	err = ensureRemoteAvailable(context.Background(), client, time.Second)
	var remote *api.RemoteError
	if !errors.As(err, &remote) || remote.Status != http.StatusInternalServerError {
		t.Fatalf("broken remote error = %v, want RemoteError 500", err)
	}
}

func TestIsTerminal_NonFileWriter(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Fatal("isTerminal(buffer) = true")
	}
}
