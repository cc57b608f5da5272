package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdraw_Success(t *testing.T) {
	var gotBody map[string]string
	h := record(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Withdrawal request submitted",
			"user":    map[string]any{"earnings": "0"},
		})
	}))
	c, cache := newTestClient(t, h)

	before := testSession()
	before.Earnings = decimal.RequireFromString("0.0051")
	require.NoError(t, cache.Write(before))

	s, err := c.Withdraw(context.Background(), "UQabcdef")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tonWalletAddress": "UQabcdef"}, gotBody)
	assert.True(t, s.Earnings.IsZero(), "balance shows the server's post-withdrawal value")

	cached := cache.Read()
	require.NotNil(t, cached)
	assert.True(t, cached.Earnings.IsZero())
	assert.Equal(t, before.AdsViewed, cached.AdsViewed, "only earnings changes on withdrawal")
}

func TestWithdraw_EmptyWalletNeverReachesNetwork(t *testing.T) {
	h := record(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty wallet")
	}))
	c, cache := newTestClient(t, h)
	require.NoError(t, cache.Write(testSession()))

	for _, wallet := range []string{"", "   ", "\t"} {
		_, err := c.Withdraw(context.Background(), wallet)
		assert.ErrorIs(t, err, ErrWalletRequired)
	}
	assert.Empty(t, h.Requests())
}

func TestWithdraw_SecondCallWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enteredOnce.Do(func() { close(entered) })
		<-release
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]any{"earnings": "0"},
		})
	})
	c, cache := newTestClient(t, h)
	require.NoError(t, cache.Write(testSession()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Withdraw(context.Background(), "UQabcdef")
		done <- err
	}()

	<-entered // the first request is now held open server-side
	_, err := c.Withdraw(context.Background(), "UQother")
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)

	// Once the first attempt resolves, the guard is released again.
	_, err = c.Withdraw(context.Background(), "UQabcdef")
	assert.NoError(t, err)
}

func TestWithdraw_RejectionAllowsResubmit(t *testing.T) {
	rejected := true
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rejected {
			rejected = false
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "You need to view at least 50 ads",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]any{"earnings": "0"},
		})
	})
	c, cache := newTestClient(t, h)
	before := testSession()
	before.Earnings = decimal.RequireFromString("0.0051")
	require.NoError(t, cache.Write(before))

	_, err := c.Withdraw(context.Background(), "UQabcdef")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "You need to view at least 50 ads", apiErr.Message)

	cached := cache.Read()
	require.NotNil(t, cached)
	assert.True(t, cached.Earnings.Equal(before.Earnings), "a rejected withdrawal leaves the balance alone")

	_, err = c.Withdraw(context.Background(), "UQabcdef")
	assert.NoError(t, err, "the guard does not stick after a failure")
}

func TestWithdraw_NoSession(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a session")
	})
	c, _ := newTestClient(t, h)

	_, err := c.Withdraw(context.Background(), "UQabcdef")
	assert.ErrorIs(t, err, ErrNoSession)
}
