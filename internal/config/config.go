package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the process-wide settings, loaded once at startup.
type Config struct {
	BaseURL         string
	DashboardURL    string
	RefreshInterval time.Duration
	StatusInterval  time.Duration
	RequestTimeout  time.Duration
	LogFile         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/hactl/config.toml"
	defaultLogFile         = "~/.local/share/hactl/hactl.log"
	defaultBaseURL         = "http://127.0.0.1:10000"
	defaultLogLevel        = "INFO"
	defaultRefreshInterval = 5 * time.Second
	defaultStatusInterval  = time.Second
	defaultRequestTimeout  = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:         defaultBaseURL,
		RefreshInterval: defaultRefreshInterval,
		StatusInterval:  defaultStatusInterval,
		RequestTimeout:  defaultRequestTimeout,
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

// Load locates and parses the hactl config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL           string `toml:"base_url"`
		DashboardURL      string `toml:"dashboard_url"`
		RefreshIntervalMS int    `toml:"refresh_interval_ms"`
		StatusIntervalMS  int    `toml:"status_interval_ms"`
		RequestTimeoutMS  int    `toml:"request_timeout_ms"`
		Logging           struct {
			File  string `toml:"file"`
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	cfg.DashboardURL = strings.TrimSpace(raw.DashboardURL)
	cfg.RefreshInterval = millisOr(raw.RefreshIntervalMS, defaultRefreshInterval)
	cfg.StatusInterval = millisOr(raw.StatusIntervalMS, defaultStatusInterval)
	cfg.RequestTimeout = millisOr(raw.RequestTimeoutMS, defaultRequestTimeout)
	if v := strings.TrimSpace(raw.Logging.File); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Logging.Level); v != "" {
		cfg.LogLevel = strings.ToUpper(v)
	}

	return cfg, nil
}

func millisOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
