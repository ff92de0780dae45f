package lifecycle

import (
	"context"
	"errors"
)

var (
	ErrMatchCancelled = errors.New("match cancelled")
	ErrNotRunning     = errors.New("match is not running")
	ErrNotAccepting   = errors.New("match is not accepting players")
	ErrNotInMatch     = errors.New("user is not in this match")
	ErrVoteClosed     = errors.New("no vote is open for this user")
	ErrInvalidChoice  = errors.New("invalid vote choice")
)

// CancelReason describes a forced cancel. Users listed in Abandoned are
// settled with the abandon penalty before cleanup.
type CancelReason struct {
	Reason    string
	Abandoned []string
}

type cancelError struct {
	reason CancelReason
}

func (e *cancelError) Error() string {
	if e.reason.Reason == "" {
		return ErrMatchCancelled.Error()
	}
	return ErrMatchCancelled.Error() + ": " + e.reason.Reason
}

func (e *cancelError) Is(target error) bool {
	return target == ErrMatchCancelled
}

// cancelReason extracts the forced cancel behind a done context. It reports
// false when the context ended for any other reason, e.g. shutdown.
func cancelReason(ctx context.Context) (CancelReason, bool) {
	var ce *cancelError
	if errors.As(context.Cause(ctx), &ce) {
		return ce.reason, true
	}
	return CancelReason{}, false
}
