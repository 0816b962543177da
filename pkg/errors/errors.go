package memora_errors

import "errors"

// Common errors
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrDepthExceeded    = errors.New("maximum thread depth reached")
	ErrTransient        = errors.New("transient storage failure")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrRateLimited      = errors.New("rate limited")
)

// Retryable reports whether the whole logical operation may be retried by the caller.
// Conflicts are retryable because every core operation re-derives its action from current state.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrConflict)
}
