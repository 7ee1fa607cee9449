package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridpulse/csgstat/pkg/csg"
)

// FailureKind classifies why a whole cycle failed. Field-level fetch
// failures never produce one of these; they degrade the field and the
// cycle succeeds.
type FailureKind string

const (
	// FailureTimeout: the cycle exceeded its deadline. The previously
	// published snapshot stays in place.
	FailureTimeout FailureKind = "timeout"
	// FailureSessionInvalid: the provider session was rejected mid-cycle.
	// Surfaced distinctly so the caller can re-authenticate.
	FailureSessionInvalid FailureKind = "session_invalid"
	// FailureRemoteAPI: a classified provider error escaped the per-field
	// isolation (e.g. the login verification call itself failed).
	FailureRemoteAPI FailureKind = "remote_api"
	// FailureUnexpected: anything unclassified.
	FailureUnexpected FailureKind = "unexpected"
)

// CycleError is a typed whole-cycle failure with a human-readable reason.
type CycleError struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle failed (%s): %s", e.Kind, e.Reason)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// classifyCycleErr translates an error that aborted a cycle into its
// failure kind.
func classifyCycleErr(err error) *CycleError {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &CycleError{Kind: FailureTimeout, Reason: "timeout communicating with provider", Err: err}
	case errors.Is(err, csg.ErrNotLoggedIn):
		return &CycleError{Kind: FailureSessionInvalid, Reason: "session invalidated unexpectedly", Err: err}
	case csg.IsAPIError(err):
		return &CycleError{Kind: FailureRemoteAPI, Reason: fmt.Sprintf("error communicating with provider: %v", err), Err: err}
	}
	return &CycleError{Kind: FailureUnexpected, Reason: fmt.Sprintf("unexpected error: %v", err), Err: err}
}
