// Package app is the composition root of hactl.
//
// Run wires the pieces together:
//
//	Run()
//	 ├─> config.Load()              read ~/.config/hactl/config.toml, apply flags
//	 ├─> logging.Setup()            JSON log file (discard logger on failure)
//	 ├─> api.NewClient()            transport + readers + dispatchers
//	 ├─> runOnce()                  -once, or stdout is not a terminal
//	 ├─> ensureRemoteAvailable()    3s healthcheck, a warning banner on failure
//	 ├─> logtail.Watch()            log file changes for the Logs screen
//	 ├─> dashboard.New()            one controller per resource, all stopped
//	 └─> ui.Run()                   Bubble Tea program (blocks)
//
// The pre-flight check is not fatal: the controllers keep retrying on their
// own intervals and the UI shows the remote as offline until it answers.
//
// In -once mode every resource is read a single time and a plain summary is
// written to stdout. Run returns an error when any read failed so scripts can
// check the exit status.
package app
