package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload reports a well-formed response whose body carries no usable
// data, such as a literal JSON null on a 200.
var ErrInvalidPayload = errors.New("invalid payload")

// TransportError wraps connection-level failures: dial errors, DNS, timeouts
// and context cancellation. No HTTP status was received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a response whose status was not the one the caller expected.
// Message is extracted from the body when the body has something to say.
type RemoteError struct {
	Path    string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// CredentialExpiryError is returned by the mail test dispatcher when the remote
// cannot send mail. The operator is expected to re-authorize at AuthURL rather
// than read an error message.
type CredentialExpiryError struct {
	AuthURL string
	Cause   error
}

func (e *CredentialExpiryError) Error() string {
	if e.Cause == nil {
		return "mail credentials need re-authorization"
	}
	return fmt.Sprintf("mail credentials need re-authorization: %v", e.Cause)
}

func (e *CredentialExpiryError) Unwrap() error { return e.Cause }

// ErrorInfo is the normalized, display-only form of any failure.
type ErrorInfo struct {
	Message string
}

// NewErrorInfo normalizes err. A nil error yields nil.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return &ErrorInfo{Message: remote.Message}
	}
	return &ErrorInfo{Message: err.Error()}
}

// IsCredentialExpiry reports whether err asks for an OAuth re-authorization.
func IsCredentialExpiry(err error) (*CredentialExpiryError, bool) {
	var expiry *CredentialExpiryError
	if errors.As(err, &expiry) {
		return expiry, true
	}
	return nil, false
}

// newRemoteError builds a RemoteError for status. An empty body falls back to
// the generic status message; a JSON object with an "error" string yields that
// string; any other body is used verbatim (trimmed).
func newRemoteError(path string, status int, body []byte) *RemoteError {
	return &RemoteError{Path: path, Status: status, Message: bodyMessage(path, status, body)}
}

func bodyMessage(path string, status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Sprintf("api %s returned status %d", path, status)
	}
	if trimmed[0] == '{' {
		var payload struct {
			Error *string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil && payload.Error != nil {
			return *payload.Error
		}
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return text
		}
	}
	return strings.TrimSpace(string(trimmed))
}
