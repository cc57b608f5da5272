package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// AdminUser is a row in the admin users table.
type AdminUser struct {
	ID           string          `json:"id"`
	TelegramID   int64           `json:"telegram_id"`
	Username     string          `json:"username"`
	FirstName    string          `json:"first_name"`
	Earnings     decimal.Decimal `json:"earnings"`
	AdsViewed    int64           `json:"ads_viewed"`
	ReferralCode string          `json:"referral_code"`
	ReferrerID   *string         `json:"referrer_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AdminWithdrawal is a row in the admin withdrawals table.
type AdminWithdrawal struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Username         string          `json:"username"`
	Amount           decimal.Decimal `json:"amount"`
	TonWalletAddress string          `json:"ton_wallet_address"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Pending reports whether moderation actions apply to this row.
func (w AdminWithdrawal) Pending() bool { return w.Status == "pending" }

// AdminView drives the moderation panel: two search-filtered listings and
// one action. Every refresh replaces the whole snapshot; a moderation
// decision re-queries the server instead of patching the row locally.
type AdminView struct {
	c *Client

	users       []AdminUser
	withdrawals []AdminWithdrawal

	// last search terms, reused when a moderation action refreshes the list
	userSearch       string
	withdrawalSearch string
}

func (c *Client) Admin() *AdminView { return &AdminView{c: c} }

// Login opens an admin session with the panel credentials.
func (v *AdminView) Login(ctx context.Context, username, password string) error {
	var resp envelope
	body := map[string]string{"username": username, "password": password}
	return v.c.do(ctx, http.MethodPost, "/api/admin/login", body, &resp, "admin login")
}

// SearchUsers refreshes the users listing. On failure the previous snapshot
// stays in place.
func (v *AdminView) SearchUsers(ctx context.Context, term string) ([]AdminUser, error) {
	var resp struct {
		envelope
		Users []AdminUser `json:"users"`
	}
	path := "/api/admin/users?search=" + url.QueryEscape(term)
	if err := v.c.do(ctx, http.MethodGet, path, nil, &resp, "fetch users"); err != nil {
		return v.users, err
	}
	v.users = resp.Users
	v.userSearch = term
	return v.users, nil
}

// SearchWithdrawals refreshes the withdrawals listing.
func (v *AdminView) SearchWithdrawals(ctx context.Context, term string) ([]AdminWithdrawal, error) {
	var resp struct {
		envelope
		Withdrawals []AdminWithdrawal `json:"withdrawals"`
	}
	path := "/api/admin/withdrawals?search=" + url.QueryEscape(term)
	if err := v.c.do(ctx, http.MethodGet, path, nil, &resp, "fetch withdrawals"); err != nil {
		return v.withdrawals, err
	}
	v.withdrawals = resp.Withdrawals
	v.withdrawalSearch = term
	return v.withdrawals, nil
}

// Users returns the current snapshot without a round-trip.
func (v *AdminView) Users() []AdminUser { return v.users }

// Withdrawals returns the current snapshot without a round-trip.
func (v *AdminView) Withdrawals() []AdminWithdrawal { return v.withdrawals }

// Approve completes a pending withdrawal and refreshes the listing.
func (v *AdminView) Approve(ctx context.Context, withdrawalID string) ([]AdminWithdrawal, error) {
	return v.moderate(ctx, withdrawalID, "completed")
}

// Reject declines a pending withdrawal and refreshes the listing.
func (v *AdminView) Reject(ctx context.Context, withdrawalID string) ([]AdminWithdrawal, error) {
	return v.moderate(ctx, withdrawalID, "rejected")
}

func (v *AdminView) moderate(ctx context.Context, withdrawalID, status string) ([]AdminWithdrawal, error) {
	var resp envelope
	path := fmt.Sprintf("/api/admin/withdrawals/%s/%s", url.PathEscape(withdrawalID), status)
	if err := v.c.do(ctx, http.MethodPost, path, nil, &resp, status+" withdrawal"); err != nil {
		return v.withdrawals, err
	}
	// Ground truth comes from a fresh query, not a local patch.
	return v.SearchWithdrawals(ctx, v.withdrawalSearch)
}
