// Package config loads hactl's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/hactl/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//
// # TOML Format
//
//	base_url = "http://helix:10000"
//	dashboard_url = "https://helix:9443"
//	refresh_interval_ms = 5000
//	status_interval_ms = 1000
//	request_timeout_ms = 5000
//
//	[logging]
//	file = "~/.local/share/hactl/hactl.log"
//	level = "info"
//
// All fields are optional. The base URL may carry a path prefix when the API
// is served under a sub-path. The status interval drives the operation-status
// poll; the refresh interval drives containers, volumes and version info.
//
// # Error Handling
//
// Missing config files are not an error. Load returns errors for path
// expansion failures, unreadable files and TOML parse errors.
//
// The returned Config is a plain value; nothing is reloaded after startup.
package config
