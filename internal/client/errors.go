package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when the backend rejects the session.
	// The local cache has already been cleared when callers see it.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInFlight means the same action is already awaiting a response.
	ErrInFlight = errors.New("request already in flight")

	// ErrWalletRequired is raised before any network call is made.
	ErrWalletRequired = errors.New("wallet address is required")

	// ErrAdNotReady means the minimum dwell time has not elapsed yet.
	ErrAdNotReady = errors.New("ad cannot be closed yet")

	// ErrNoSession means an action needing an authenticated session ran
	// without one in the cache.
	ErrNoSession = errors.New("no active session")
)

// errMissingUser covers a success envelope that arrives without its user
// object; callers see it wrapped in an *APIError.
var errMissingUser = errors.New("response missing user object")

// APIError is a backend-reported failure: either a transport fault or a
// success=false envelope. Message is what gets shown to the user.
type APIError struct {
	Op      string // failed operation, e.g. "login", "view_ad"
	Message string
	Err     error // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *APIError) Unwrap() error { return e.Err }
