package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/hactl/internal/api"
)

func TestViewState_SettleSuccessReplacesData(t *testing.T) {
	var s ViewState[[]api.Container]
	s.Loading = true
	s.Error = &api.ErrorInfo{Message: "old"}
	s.ConsecutiveFailures = 3

	now := time.Now()
	s.settleSuccess([]api.Container{{Name: "hass"}}, now)

	if !s.HasData || len(s.Data) != 1 || s.Data[0].Name != "hass" {
		t.Fatalf("Data = %#v HasData=%v, want one container", s.Data, s.HasData)
	}
	if s.Loading || s.Error != nil || s.ConsecutiveFailures != 0 {
		t.Fatalf("Loading=%v Error=%v failures=%d, want cleared", s.Loading, s.Error, s.ConsecutiveFailures)
	}
	if !s.LastUpdated.Equal(now) {
		t.Fatalf("LastUpdated = %v, want %v", s.LastUpdated, now)
	}
}

func TestViewState_NullPayloadDoesNotBlankData(t *testing.T) {
	var s ViewState[[]api.Container]
	s.settleSuccess([]api.Container{{Name: "A"}, {Name: "B"}}, time.Now())
	s.Loading = true

	s.settleFailure(api.ErrInvalidPayload, time.Now())

	if len(s.Data) != 2 {
		t.Fatalf("Data = %#v, want previous two containers", s.Data)
	}
	if s.Error == nil || s.Error.Message != api.ErrInvalidPayload.Error() {
		t.Fatalf("Error = %v, want invalid payload", s.Error)
	}
	if s.Loading {
		t.Fatal("Loading still true after failure")
	}
}

func TestViewState_Offline(t *testing.T) {
	var s ViewState[int]
	if s.IsOffline() {
		t.Fatal("IsOffline() = true with no failures")
	}
	s.settleFailure(errors.New("fail 1"), time.Now())
	if s.IsOffline() {
		t.Fatal("IsOffline() = true after one failure")
	}
	s.settleFailure(errors.New("fail 2"), time.Now())
	if !s.IsOffline() {
		t.Fatal("IsOffline() = false after two failures")
	}
	s.settleSuccess(1, time.Now())
	if s.IsOffline() {
		t.Fatal("IsOffline() = true after success")
	}
}

func TestViewState_RemoteErrorMessageIsBodyText(t *testing.T) {
	var s ViewState[int]
	s.settleFailure(&api.RemoteError{Status: 500, Message: "docker unreachable"}, time.Now())
	if s.Error == nil || s.Error.Message != "docker unreachable" {
		t.Fatalf("Error = %#v, want body message", s.Error)
	}
}

func TestViewState_CloneIsIndependent(t *testing.T) {
	var s ViewState[int]
	s.settleFailure(errors.New("boom"), time.Now())
	s.mergeOutcome("prune", api.Outcome{Err: errors.New("nope")})

	dup := s.clone()
	dup.Error.Message = "changed"
	dup.CommandErrors["prune"] = api.ErrorInfo{Message: "changed"}

	if s.Error.Message != "boom" {
		t.Fatalf("clone shares Error: %q", s.Error.Message)
	}
	if s.CommandErrors["prune"].Message != "nope" {
		t.Fatalf("clone shares CommandErrors: %q", s.CommandErrors["prune"].Message)
	}
}

func TestViewState_MergeOutcome(t *testing.T) {
	var s ViewState[int]

	s.mergeOutcome("a", api.Outcome{Status: 202})
	if len(s.CommandErrors) != 0 {
		t.Fatalf("CommandErrors = %v, want empty after success", s.CommandErrors)
	}

	s.mergeOutcome("a", api.Outcome{Status: 500, Err: &api.RemoteError{Message: "first"}})
	s.mergeOutcome("b", api.Outcome{Status: 500, Err: &api.RemoteError{Message: "other"}})
	s.mergeOutcome("a", api.Outcome{Status: 500, Err: &api.RemoteError{Message: "second"}})
	if got := s.CommandErrors["a"].Message; got != "second" {
		t.Fatalf("CommandErrors[a] = %q, want latest error", got)
	}
	if len(s.CommandErrors) != 2 {
		t.Fatalf("CommandErrors = %v, want one entry per key", s.CommandErrors)
	}

	s.mergeOutcome("a", api.Outcome{Status: 200})
	if _, ok := s.CommandError("a"); ok {
		t.Fatal("success did not clear key a")
	}
	if _, ok := s.CommandError("b"); !ok {
		t.Fatal("success on a cleared key b")
	}
}
