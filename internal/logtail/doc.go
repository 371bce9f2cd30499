// Package logtail reads the end of hactl's own log file for the Logs screen.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays bounded
// no matter how large the file grows. Parse and Format turn the slog JSON
// records written by internal/logging into compact one-line summaries:
//
//	{"time":"2026-01-02T10:00:00Z","level":"WARN","msg":"poll failed","view":"containers"}
//	→ 10:00:00 WARN  poll failed view=containers
//
// Lines that are not JSON pass through untouched.
//
// Watch signals writes to the file so the screen can re-read on change
// instead of polling.
package logtail
