// Package state keeps per-view state in sync with the control-plane API.
//
// # Overview
//
// Every screen of hactl shows one or more remote resources (containers,
// volumes, operation status, version info). Each resource is owned by one
// Controller, parametrized by a Reader function and a poll interval. The
// Controller is the only writer of its ViewState; the UI reads copies via
// State() and sends commands through Dispatch.
//
// # Lifecycle
//
//	NewController ──> Start ──> poll ──> settle ──> (tick) poll ...
//	                    │                               │
//	                    └────────────── Stop <──────────┘
//
//   - Start polls once immediately and then arms the ticker.
//   - A tick, or Refresh, is a no-op while Loading is true. This overlap guard
//     is what keeps slow responses from piling up under a short interval.
//   - Stop releases the ticker, cancels the read context and waits for the
//     tick loop to exit. It is the only release path and is safe to call
//     more than once.
//
// # Settle Semantics
//
//	// Success: replace the snapshot wholesale
//	→ Data = snapshot, HasData = true
//	→ Error = nil, ConsecutiveFailures = 0
//	→ Loading = false
//
//	// Failure: keep the old snapshot, record the error
//	→ Data = <unchanged>
//	→ Error = NewErrorInfo(err), ConsecutiveFailures++
//	→ Loading = false
//
// Loading is reset on every settlement, including transport failures, so a
// failed poll can never leave the view stuck.
//
// # Stragglers
//
// A read can still be in flight when Stop is called. Each Start bumps a run
// generation; a settlement is applied only if the controller is active and the
// generation matches. Dispatch outcomes follow the same rule.
//
// The straggler still counts as the controller's read until it returns, even
// though its result is dropped. A Start that finds one outstanding defers its
// first poll until it returns, so a stop/start cycle never puts two reads from
// one controller on the wire. If the parent context of Start ends, the run
// ends with it and the controller can be started again.
//
// # Commands
//
// Dispatch runs a command function and merges its api.Outcome into
// CommandErrors under a caller-chosen key: success clears the key, failure
// sets it. Data is never touched; the next poll shows the remote's view of the
// command. Credential expiry outcomes are left to the caller, which opens the
// authorization URL instead of showing text.
//
// # Concurrency
//
// Each Controller runs one tick goroutine plus at most one read goroutine.
// All state is guarded by a mutex held only for copies, never across network
// I/O or the OnSettle callback. Controllers are independent of one another.
package state
