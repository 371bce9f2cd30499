package state

import (
	"maps"
	"time"

	"github.com/five82/hactl/internal/api"
)

// offlineThreshold is the number of consecutive failed polls after which a
// view is considered offline.
const offlineThreshold = 2

// ViewState is the data a view renders: the last good snapshot, the latest
// poll error and whether a poll is in flight.
type ViewState[T any] struct {
	Data    T
	HasData bool
	Error   *api.ErrorInfo
	Loading bool

	// CommandErrors holds the latest failed outcome per dispatch key.
	CommandErrors map[string]api.ErrorInfo

	LastUpdated         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when the remote has been unreachable for multiple polls.
func (s ViewState[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineThreshold
}

// CommandError returns the recorded failure for key, if any.
func (s ViewState[T]) CommandError(key string) (api.ErrorInfo, bool) {
	info, ok := s.CommandErrors[key]
	return info, ok
}

// settleSuccess replaces the snapshot wholesale and clears the poll error.
func (s *ViewState[T]) settleSuccess(data T, now time.Time) {
	s.Data = data
	s.HasData = true
	s.Error = nil
	s.Loading = false
	s.LastUpdated = now
	s.ConsecutiveFailures = 0
}

// settleFailure keeps the previous snapshot and records the error.
func (s *ViewState[T]) settleFailure(err error, now time.Time) {
	s.Error = api.NewErrorInfo(err)
	s.Loading = false
	s.LastUpdated = now
	s.ConsecutiveFailures++
}

// mergeOutcome records or clears the command error for key. Credential expiry
// is handled by the caller and never stored as text.
func (s *ViewState[T]) mergeOutcome(key string, outcome api.Outcome) {
	if outcome.Success() {
		delete(s.CommandErrors, key)
		return
	}
	if _, ok := api.IsCredentialExpiry(outcome.Err); ok {
		delete(s.CommandErrors, key)
		return
	}
	if s.CommandErrors == nil {
		s.CommandErrors = make(map[string]api.ErrorInfo)
	}
	s.CommandErrors[key] = *api.NewErrorInfo(outcome.Err)
}

// clone returns a copy that shares nothing mutable with s. Data is replaced
// wholesale and never mutated in place, so it is shared.
func (s ViewState[T]) clone() ViewState[T] {
	dup := s
	if s.Error != nil {
		info := *s.Error
		dup.Error = &info
	}
	dup.CommandErrors = maps.Clone(s.CommandErrors)
	return dup
}
