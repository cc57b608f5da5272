package client

import (
	"context"
	"errors"
)

// BootstrapState is where session reconciliation ended up on page load.
type BootstrapState int

const (
	StateUnknown BootstrapState = iota
	// StateCacheHit: a fresh cached session was trusted without a round-trip.
	StateCacheHit
	// StateServerConfirmed: the server vouched for the session this run.
	StateServerConfirmed
	// StateAnonymous: nobody is signed in; the cache has been cleared.
	StateAnonymous
)

func (s BootstrapState) String() string {
	switch s {
	case StateCacheHit:
		return "cache-hit"
	case StateServerConfirmed:
		return "server-confirmed"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Bootstrap reconciles the local cache with the server on startup. A cached
// session younger than the cache TTL is trusted as-is; otherwise the server
// decides. Any rejection or transport fault lands in StateAnonymous with
// the cache cleared, never in a crash.
func (c *Client) Bootstrap(ctx context.Context) (BootstrapState, *Session, error) {
	if s := c.cache.Read(); s != nil {
		if c.cacheTTL > 0 && c.now().Sub(s.SavedAt) <= c.cacheTTL {
			return StateCacheHit, s, nil
		}
	}

	s, err := c.fetchUserData(ctx)
	if err != nil {
		_ = c.cache.Clear()
		if errors.Is(err, ErrNotAuthenticated) {
			return StateAnonymous, nil, nil
		}
		return StateAnonymous, nil, err
	}

	if err := c.cache.Write(*s); err != nil {
		return StateAnonymous, nil, err
	}
	return StateServerConfirmed, s, nil
}

// BootstrapDashboard is the strict variant for the page exposing earnings
// actions: the server round-trip always happens, and failure is an error
// the caller must treat as "leave this page", not a silent anonymous state.
func (c *Client) BootstrapDashboard(ctx context.Context) (*Session, error) {
	s, err := c.fetchUserData(ctx)
	if err != nil {
		_ = c.cache.Clear()
		if errors.Is(err, ErrNotAuthenticated) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if err := c.cache.Write(*s); err != nil {
		return nil, err
	}
	return s, nil
}
