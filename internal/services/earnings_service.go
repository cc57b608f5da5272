package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/enaya12q/smartlabs/internal/metrics"
	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/repository"
)

// Reward schedule. Earnings only ever change through these paths, so the
// figures a client caches are always server-computed.
var (
	AdReward           = decimal.RequireFromString("0.0001")
	MilestoneBonus     = decimal.RequireFromString("0.1")
	ReferralCommission = AdReward.Mul(decimal.RequireFromString("0.10"))
)

const MilestoneEvery = 50

type EarningsService struct {
	users repository.Users
	audit repository.AuditLogs
}

func NewEarningsService(users repository.Users, audit repository.AuditLogs) *EarningsService {
	return &EarningsService{users: users, audit: audit}
}

// ViewAd confirms one ad view: +1 counter, the per-ad reward, the milestone
// bonus on every 50th view, and a 10% commission to the referrer if any.
// Returns the updated account so handlers can echo authoritative figures.
func (s *EarningsService) ViewAd(ctx context.Context, userID string) (models.User, error) {
	u, err := s.users.RecordAdView(ctx, userID, AdReward, MilestoneBonus, MilestoneEvery)
	if err != nil {
		return models.User{}, err
	}

	if u.ReferrerID != nil {
		// Commission failures must not undo a confirmed view.
		if err := s.users.CreditEarnings(ctx, *u.ReferrerID, ReferralCommission); err != nil {
			s.auditLog(ctx, u.ID, "referral_commission_failed", err.Error())
		}
	}

	metrics.AdViewsTotal.Inc()
	s.auditLog(ctx, u.ID, "ad_view", "")
	return u, nil
}

func (s *EarningsService) auditLog(ctx context.Context, userID, action, msg string) {
	var det map[string]any
	if msg != "" {
		det = map[string]any{"message": msg}
	}
	_ = s.audit.Create(ctx, models.AuditLog{
		EntityType: "user",
		EntityID:   &userID,
		Action:     action,
		Details:    det,
	})
}
