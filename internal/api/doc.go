// Package api provides the HTTP client for the home automation control plane.
//
// # Overview
//
// The package has three layers:
//
//   - transport.go: Transport issues one request and returns the raw status
//     and body. Every HTTP status is a normal return; only connection-level
//     failures produce an error (*TransportError).
//   - client.go: resource readers (FetchContainers, FetchVolumes, FetchStatus,
//     FetchVersionInfo, FetchHealth, FetchRemoteConfig). Each returns a typed
//     snapshot or a typed error and has no side effects.
//   - commands.go: command dispatchers. Each issues exactly one mutating
//     request and returns an Outcome describing acceptance only.
//
// # Usage
//
//	client, err := api.NewClient("http://helix:10000", 5*time.Second)
//	if err != nil {
//		return err
//	}
//
//	containers, err := client.FetchContainers(ctx)
//	if err != nil {
//		log.Printf("containers: %v", api.NewErrorInfo(err).Message)
//	}
//
//	if out := client.ComposePull(ctx); !out.Success() {
//		log.Printf("compose pull rejected: %v", out.Err)
//	}
//
// # Errors
//
//   - *TransportError: no response was received (refused, DNS, timeout,
//     cancelled context).
//   - *RemoteError: the status was not what the call expects. Message comes
//     from the body: the "error" field of a JSON object, otherwise the body
//     text, otherwise a generic "api <path> returned status <code>".
//   - ErrInvalidPayload: a 200 whose body is empty, JSON null, malformed, or
//     missing its essential field.
//   - *CredentialExpiryError: only from SendTestMail; carries the OAuth
//     authorization URL the operator should open.
//
// NewErrorInfo turns any of these into the display-only ErrorInfo.
//
// # Status codes
//
// Synchronous commands (container and volume actions, ResetStatus,
// SetTestingVersion) expect 200. Accepted-for-later commands (compose pull,
// up, down, prune, version refresh, auto-upgrade) expect 202. The remaining
// maintenance commands accept any 2xx. No call is ever retried.
package api
