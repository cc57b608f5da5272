package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/enaya12q/smartlabs/internal/auth"
	"github.com/enaya12q/smartlabs/internal/metrics"
	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/notify"
	"github.com/enaya12q/smartlabs/internal/repository"
)

var ErrLoginRejected = errors.New("login rejected")

type UserService struct {
	users    repository.Users
	audit    repository.AuditLogs
	verifier *auth.Verifier
	notifier *notify.Notifier
}

func NewUserService(users repository.Users, audit repository.AuditLogs, v *auth.Verifier, n *notify.Notifier) *UserService {
	return &UserService{users: users, audit: audit, verifier: v, notifier: n}
}

// Login verifies a widget assertion and resolves it to an account, creating
// one on first sight. Safe to replay: a repeat assertion only refreshes the
// profile fields.
func (s *UserService) Login(ctx context.Context, a auth.Assertion) (models.User, error) {
	if err := s.verifier.Verify(a); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return models.User{}, fmt.Errorf("%w: %w", ErrLoginRejected, err)
	}
	telegramID, err := a.TelegramID()
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return models.User{}, fmt.Errorf("%w: %w", ErrLoginRejected, err)
	}

	u, err := s.users.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		u.FirstName = a.FirstName()
		u.LastName = a.LastName()
		u.Username = a.Username()
		u.PhotoURL = a.PhotoURL()
		u.AuthDate = a.AuthDate()
		if err := s.users.UpdateIdentity(ctx, u); err != nil {
			return models.User{}, err
		}
	case errors.Is(err, repository.ErrNotFound):
		u, err = s.register(ctx, a, telegramID)
		if err != nil {
			return models.User{}, err
		}
	default:
		return models.User{}, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.auditLog(ctx, u.ID, "login", "")
	return u, nil
}

func (s *UserService) register(ctx context.Context, a auth.Assertion, telegramID int64) (models.User, error) {
	u := models.User{
		TelegramID: telegramID,
		FirstName:  a.FirstName(),
		LastName:   a.LastName(),
		Username:   a.Username(),
		PhotoURL:   a.PhotoURL(),
		AuthDate:   a.AuthDate(),
	}
	if ref := a.ReferrerID(); ref != "" {
		if referrer, err := s.resolveReferrer(ctx, ref); err == nil && referrer.TelegramID != telegramID {
			u.ReferrerID = &referrer.ID
		}
	}
	u, err := s.users.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.auditLog(ctx, u.ID, "register", "")
	s.notifier.NotifyAdmin(fmt.Sprintf("New user registered: %s (ID: %d)", u.DisplayName(), u.TelegramID))
	return u, nil
}

// resolveReferrer accepts either a referral code or a raw telegram id, which
// is what the landing page passes through from the ?ref= parameter.
func (s *UserService) resolveReferrer(ctx context.Context, ref string) (models.User, error) {
	if u, err := s.users.GetByReferralCode(ctx, ref); err == nil {
		return u, nil
	}
	if tid, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.users.GetByTelegramID(ctx, tid)
	}
	return models.User{}, repository.ErrNotFound
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Search(ctx context.Context, term string) ([]models.User, error) {
	return s.users.Search(ctx, term)
}

func (s *UserService) auditLog(ctx context.Context, userID, action, msg string) {
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
