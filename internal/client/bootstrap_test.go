package client

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userDataHandler(earnings string, adsViewed int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    profileJSON(earnings, adsViewed),
		})
	})
}

func TestBootstrap_FreshCacheSkipsServer(t *testing.T) {
	clock := newFakeClock()
	h := record(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected on a cache hit")
	}))
	c, cache := newTestClient(t, h, WithClock(clock.Now))

	s := testSession()
	s.SavedAt = clock.Now().Add(-time.Minute)
	require.NoError(t, cache.Write(s))

	state, got, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCacheHit, state)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Empty(t, h.Requests())
}

func TestBootstrap_StaleCacheReconfirmsWithServer(t *testing.T) {
	clock := newFakeClock()
	h := record(userDataHandler("0.0005", 5))
	c, cache := newTestClient(t, h, WithClock(clock.Now))

	s := testSession()
	s.SavedAt = clock.Now().Add(-DefaultCacheTTL - time.Minute)
	require.NoError(t, cache.Write(s))

	state, got, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateServerConfirmed, state)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.AdsViewed)
	assert.Equal(t, []string{"GET /api/user_data"}, h.Requests())

	cached := cache.Read()
	require.NotNil(t, cached)
	assert.Equal(t, int64(5), cached.AdsViewed, "server answer replaces the stale cache")
	assert.True(t, cached.SavedAt.Equal(clock.Now()))
}

func TestBootstrap_ZeroTTLAlwaysAsksServer(t *testing.T) {
	clock := newFakeClock()
	h := record(userDataHandler("0.0001", 1))
	c, cache := newTestClient(t, h, WithClock(clock.Now), WithCacheTTL(0))

	s := testSession()
	s.SavedAt = clock.Now()
	require.NoError(t, cache.Write(s))

	state, _, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateServerConfirmed, state)
	assert.Len(t, h.Requests(), 1)
}

func TestBootstrap_RejectedSessionEndsAnonymous(t *testing.T) {
	clock := newFakeClock()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		denyJSON(w)
	})
	c, cache := newTestClient(t, h, WithClock(clock.Now))

	s := testSession()
	s.SavedAt = clock.Now().Add(-DefaultCacheTTL - time.Minute)
	require.NoError(t, cache.Write(s))

	state, got, err := c.Bootstrap(context.Background())
	require.NoError(t, err, "a plain 401 is a state, not an error")
	assert.Equal(t, StateAnonymous, state)
	assert.Nil(t, got)
	assert.Nil(t, cache.Read(), "rejected session is evicted")
}

func TestBootstrap_EmptyCacheNoSession(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		denyJSON(w)
	})
	c, _ := newTestClient(t, h)

	state, got, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, state)
	assert.Nil(t, got)
}

func TestBootstrap_TransportFaultSurfacesError(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache(filepath.Join(t.TempDir(), "session.json"))
	// Point at a server that is not there.
	c := New("http://127.0.0.1:1", cache, WithClock(clock.Now))

	s := testSession()
	s.SavedAt = clock.Now().Add(-DefaultCacheTTL - time.Minute)
	require.NoError(t, cache.Write(s))

	state, got, err := c.Bootstrap(context.Background())
	assert.Equal(t, StateAnonymous, state)
	assert.Nil(t, got)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Nil(t, cache.Read())
}

func TestBootstrapDashboard_AlwaysRoundTrips(t *testing.T) {
	clock := newFakeClock()
	h := record(userDataHandler("0.0002", 2))
	c, cache := newTestClient(t, h, WithClock(clock.Now))

	s := testSession()
	s.SavedAt = clock.Now() // perfectly fresh, still not trusted here
	require.NoError(t, cache.Write(s))

	got, err := c.BootstrapDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AdsViewed)
	assert.Equal(t, []string{"GET /api/user_data"}, h.Requests())
}

func TestBootstrapDashboard_RejectionIsAnError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		denyJSON(w)
	})
	c, cache := newTestClient(t, h)
	require.NoError(t, cache.Write(testSession()))

	got, err := c.BootstrapDashboard(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, cache.Read())
}
