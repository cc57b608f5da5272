package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/enaya12q/smartlabs/internal/metrics"
	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/notify"
	"github.com/enaya12q/smartlabs/internal/repository"
)

var (
	ErrWalletRequired    = errors.New("TON wallet address is required")
	ErrInvalidWallet     = errors.New("invalid TON wallet address format")
	ErrNotEnoughAds      = fmt.Errorf("you must view at least %d ads before withdrawing", MinAdsForWithdrawal)
	ErrNothingToWithdraw = repository.ErrNothingToWithdraw
	ErrInvalidStatus     = errors.New("invalid withdrawal status")
	ErrAlreadyProcessed  = errors.New("withdrawal already processed")
)

const MinAdsForWithdrawal = 50

type WithdrawalService struct {
	withdrawals repository.Withdrawals
	users       repository.Users
	audit       repository.AuditLogs
	notifier    *notify.Notifier
}

func NewWithdrawalService(w repository.Withdrawals, users repository.Users, audit repository.AuditLogs, n *notify.Notifier) *WithdrawalService {
	return &WithdrawalService{withdrawals: w, users: users, audit: audit, notifier: n}
}

// Request drains the user's full balance into a pending withdrawal.
func (s *WithdrawalService) Request(ctx context.Context, userID, wallet string) (models.User, models.Withdrawal, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return models.User{}, models.Withdrawal{}, ErrWalletRequired
	}
	if !strings.HasPrefix(wallet, "UQ") && !strings.HasPrefix(wallet, "EQ") {
		return models.User{}, models.Withdrawal{}, ErrInvalidWallet
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, models.Withdrawal{}, err
	}
	if u.AdsViewed < MinAdsForWithdrawal {
		return models.User{}, models.Withdrawal{}, ErrNotEnoughAds
	}

	w, err := s.withdrawals.CreateFromBalance(ctx, userID, wallet)
	if err != nil {
		return models.User{}, models.Withdrawal{}, err
	}

	u, err = s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, models.Withdrawal{}, err
	}

	metrics.WithdrawalsTotal.WithLabelValues("requested").Inc()
	s.auditLog(ctx, w.ID, "requested", "")
	s.notifier.NotifyAdmin(fmt.Sprintf(
		"<b>New Withdrawal Request!</b>\nUser: %s (ID: %d)\nAmount: %s\nTON Wallet: <code>%s</code>\nTimestamp: %s",
		u.DisplayName(), u.TelegramID, w.Amount.StringFixed(4), wallet,
		time.Now().Format("2006-01-02 15:04:05"),
	))
	return u, w, nil
}

// SetStatus applies a moderation decision. Repeating the same decision is a
// no-op success; conflicting decisions on a terminal row fail.
func (s *WithdrawalService) SetStatus(ctx context.Context, id string, status models.WithdrawalStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	changed, err := s.withdrawals.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !changed {
		w, err := s.withdrawals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if w.Status == status {
			return nil
		}
		return ErrAlreadyProcessed
	}

	metrics.WithdrawalsTotal.WithLabelValues(string(status)).Inc()
	s.auditLog(ctx, id, "status_change", string(status))
	return nil
}

func (s *WithdrawalService) Search(ctx context.Context, term string) ([]models.Withdrawal, error) {
	return s.withdrawals.Search(ctx, term)
}

func (s *WithdrawalService) auditLog(ctx context.Context, withdrawalID, action, msg string) {
	var det map[string]any
	if msg != "" {
		det = map[string]any{"message": msg}
	}
	_ = s.audit.Create(ctx, models.AuditLog{
		EntityType: "withdrawal",
		EntityID:   &withdrawalID,
		Action:     action,
		Details:    det,
	})
}
