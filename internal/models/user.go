package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// User is the canonical account record. Identity comes from the Telegram
// login widget; earnings and ads_viewed are only ever written server-side.
type User struct {
	ID           string          `json:"id"`
	TelegramID   int64           `json:"telegram_id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name,omitempty"`
	Username     string          `json:"username"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	AuthDate     int64           `json:"auth_date"`
	Earnings     decimal.Decimal `json:"earnings"`
	AdsViewed    int64           `json:"ads_viewed"`
	ReferralCode string          `json:"referral_code"`
	ReferrerID   *string         `json:"referrer_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Profile is the wire projection returned to the browser/agent. Field names
// match the public API contract, not the storage schema.
type Profile struct {
	ID           string          `json:"id"`
	TelegramID   int64           `json:"telegram_id"`
	FirstName    string          `json:"first_name"`
	Username     string          `json:"username"`
	Earnings     decimal.Decimal `json:"earnings"`
	AdsViewed    int64           `json:"adsViewed"`
	ReferralLink string          `json:"referralLink"`
}

// ReferralCodeFor derives the immutable referral code for a Telegram account.
func ReferralCodeFor(telegramID int64) string {
	return fmt.Sprintf("REF%d", telegramID)
}

// Profile builds the public projection. baseURL is the externally visible
// site root used for referral links.
func (u User) Profile(baseURL string) Profile {
	return Profile{
		ID:           u.ID,
		TelegramID:   u.TelegramID,
		FirstName:    u.FirstName,
		Username:     u.Username,
		Earnings:     u.Earnings,
		AdsViewed:    u.AdsViewed,
		ReferralLink: fmt.Sprintf("%s/?ref=%s", baseURL, u.ReferralCode),
	}
}

// DisplayName prefers the first name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
