package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// Withdraw requests a payout of the full balance to wallet. An empty
// address fails before any network call; a second call while one is still
// awaiting a response returns ErrInFlight. On success the cached earnings
// are overwritten with the server's post-withdrawal value; on failure the
// cache is untouched and the caller may resubmit.
func (c *Client) Withdraw(ctx context.Context, wallet string) (*Session, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, ErrWalletRequired
	}
	if !c.withdrawing.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer c.withdrawing.Store(false)

	s := c.cache.Read()
	if s == nil {
		return nil, ErrNoSession
	}

	var resp struct {
		envelope
		User *struct {
			Earnings decimal.Decimal `json:"earnings"`
		} `json:"user"`
	}
	body := map[string]string{"tonWalletAddress": wallet}
	if err := c.do(ctx, http.MethodPost, "/api/withdraw", body, &resp, "withdraw"); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Op: "withdraw", Err: errMissingUser}
	}

	s.Earnings = resp.User.Earnings
	s.SavedAt = c.now()
	if err := c.cache.Write(*s); err != nil {
		return nil, err
	}
	return s, nil
}
