package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/enaya12q/smartlabs/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNothingToWithdraw = errors.New("no earnings to withdraw")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (models.User, error)
	GetByReferralCode(ctx context.Context, code string) (models.User, error)
	// UpdateIdentity refreshes the widget-provided profile fields on a repeat
	// login. Earnings and counters are untouched.
	UpdateIdentity(ctx context.Context, u models.User) error
	// RecordAdView atomically bumps ads_viewed by one and credits the reward,
	// plus bonus whenever the new count is a multiple of bonusEvery.
	RecordAdView(ctx context.Context, userID string, reward, bonus decimal.Decimal, bonusEvery int64) (models.User, error)
	// CreditEarnings adds amount to a user's balance (referral commission).
	CreditEarnings(ctx context.Context, userID string, amount decimal.Decimal) error
	// Search lists users whose username, first name or telegram id contain
	// the term. An empty term lists everyone (most recent first).
	Search(ctx context.Context, term string) ([]models.User, error)
}

type Withdrawals interface {
	// CreateFromBalance zeroes the user's earnings and records a pending
	// withdrawal for the full prior amount, atomically. Returns
	// ErrNothingToWithdraw when the balance is not positive.
	CreateFromBalance(ctx context.Context, userID, wallet string) (models.Withdrawal, error)
	GetByID(ctx context.Context, id string) (models.Withdrawal, error)
	// SetStatus moves a pending withdrawal to a terminal status. Returns
	// false when the row was already terminal (idempotent moderation).
	SetStatus(ctx context.Context, id string, status models.WithdrawalStatus) (bool, error)
	Search(ctx context.Context, term string) ([]models.Withdrawal, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
