package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

// Valid reports whether s is a status the API accepts as a moderation target.
func (s WithdrawalStatus) Valid() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

// Withdrawal is a payout request. Created pending with the user's full
// balance; an admin moves it to completed or rejected exactly once.
type Withdrawal struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Username         string           `json:"username"` // joined from users on read
	Amount           decimal.Decimal  `json:"amount"`
	TonWalletAddress string           `json:"ton_wallet_address"`
	Status           WithdrawalStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}
