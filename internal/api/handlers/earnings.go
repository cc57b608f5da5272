package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/enaya12q/smartlabs/internal/api/httpx"
	"github.com/enaya12q/smartlabs/internal/config"
	"github.com/enaya12q/smartlabs/internal/middleware"
	"github.com/enaya12q/smartlabs/internal/repository"
	"github.com/enaya12q/smartlabs/internal/services"
)

type EarningsHandler struct {
	Earnings    *services.EarningsService
	Withdrawals *services.WithdrawalService
	Cfg         config.Config
}

func NewEarningsHandler(es *services.EarningsService, ws *services.WithdrawalService, cfg config.Config) *EarningsHandler {
	return &EarningsHandler{Earnings: es, Withdrawals: ws, Cfg: cfg}
}

// ViewAd confirms an ad view for the session user. The body's userId is
// accepted for compatibility but the session is authoritative.
func (h *EarningsHandler) ViewAd(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	var req struct {
		UserID string `json:"userId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	u, err := h.Earnings.ViewAd(r.Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("view_ad", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to record ad view")
		return
	}
	httpx.OK(w, map[string]any{
		"message": "Ad viewed successfully",
		"user":    u.Profile(h.Cfg.BaseURL),
	})
}

func (h *EarningsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	var req struct {
		TonWalletAddress string `json:"tonWalletAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "No data provided")
		return
	}

	u, _, err := h.Withdrawals.Request(r.Context(), uid, req.TonWalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWalletRequired),
			errors.Is(err, services.ErrInvalidWallet),
			errors.Is(err, services.ErrNotEnoughAds),
			errors.Is(err, services.ErrNothingToWithdraw):
			httpx.Fail(w, http.StatusBadRequest, errMessage(err))
		case errors.Is(err, repository.ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "User not found")
		default:
			slog.Error("withdraw", "err", err)
			httpx.Fail(w, http.StatusInternalServerError, "Failed to submit withdrawal")
		}
		return
	}
	httpx.OK(w, map[string]any{
		"message": "Withdrawal request submitted successfully",
		"user":    u.Profile(h.Cfg.BaseURL),
	})
}

func errMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrWalletRequired):
		return "TON wallet address is required"
	case errors.Is(err, services.ErrInvalidWallet):
		return "Invalid TON wallet address format"
	case errors.Is(err, services.ErrNotEnoughAds):
		return "You must view at least 50 ads before withdrawing"
	case errors.Is(err, services.ErrNothingToWithdraw):
		return "No earnings to withdraw"
	default:
		return err.Error()
	}
}
