package client

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// MinAdDwell is how long an ad must stay visible before it may be closed.
const MinAdDwell = 5 * time.Second

// AdState tracks the watch-ad flow: Idle → Visible → (dwell elapsed) →
// closeable → Idle again once the view is confirmed or fails.
type AdState int

const (
	AdIdle AdState = iota
	AdVisible
)

// AdView is one showing of an ad. Created by StartAd; Close confirms the
// view with the backend once the minimum dwell time has passed.
type AdView struct {
	c        *Client
	openedAt time.Time
	state    AdState
}

// StartAd opens an ad. The close action stays locked for MinAdDwell.
func (c *Client) StartAd() *AdView {
	return &AdView{c: c, openedAt: c.now(), state: AdVisible}
}

func (a *AdView) State() AdState { return a.state }

// CanClose reports whether the minimum dwell time has elapsed.
func (a *AdView) CanClose() bool {
	return a.state == AdVisible && a.c.now().Sub(a.openedAt) >= a.c.minDwell
}

// RemainingDwell is how much longer the close action stays locked.
func (a *AdView) RemainingDwell() time.Duration {
	d := a.c.minDwell - a.c.now().Sub(a.openedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Close confirms the ad view. The cached earnings and ads-viewed figures
// are overwritten with the server's values; on any failure the cache keeps
// its previous values and the ad stays open for another attempt.
func (a *AdView) Close(ctx context.Context) (*Session, error) {
	if a.state != AdVisible {
		return nil, ErrAdNotReady
	}
	if !a.CanClose() {
		return nil, ErrAdNotReady
	}

	s := a.c.cache.Read()
	if s == nil {
		return nil, ErrNoSession
	}

	var resp struct {
		envelope
		User *struct {
			Earnings  decimal.Decimal `json:"earnings"`
			AdsViewed int64           `json:"adsViewed"`
		} `json:"user"`
	}
	body := map[string]string{"userId": s.ID}
	if err := a.c.do(ctx, http.MethodPost, "/api/view_ad", body, &resp, "view_ad"); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Op: "view_ad", Err: errMissingUser}
	}

	s.Earnings = resp.User.Earnings
	s.AdsViewed = resp.User.AdsViewed
	s.SavedAt = a.c.now()
	if err := a.c.cache.Write(*s); err != nil {
		return nil, err
	}
	a.state = AdIdle
	return s, nil
}
