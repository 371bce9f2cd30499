// Package ui implements the hactl terminal dashboard with Bubble Tea.
//
// The UI owns no remote state. Every frame re-reads the mounted controllers
// through State(), and every button press goes through a controller's
// Dispatch in a tea.Cmd so the event loop never waits on the network.
//
// # Screens
//
//   - Docker: containers and volumes side by side, plus the compose toolbar.
//     Pull, up, down and prune are disabled while the remote reports any of
//     them in progress; reset status stays available to clear stuck flags.
//   - Home automation: running and available versions, upgrade and update
//     actions, file maintenance.
//   - Maintenance: healthcheck, config reload, mail test, Google OAuth,
//     frontend image pipeline, restart, testing helpers, remote config.
//   - Logs: tail of hactl's own log file.
//
// Switching screens calls dashboard.Mount, which stops the controllers the
// new screen does not need.
//
// # Command feedback
//
// A failed command is shown next to its button from the controller's
// CommandErrors until the same command succeeds. A credential expiry from the
// mail test opens the OAuth authorization page instead of showing text.
package ui
