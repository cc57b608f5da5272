package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enaya12q/smartlabs/internal/api/httpx"
	"github.com/enaya12q/smartlabs/internal/auth"
	"github.com/enaya12q/smartlabs/internal/config"
	"github.com/enaya12q/smartlabs/internal/middleware"
	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/repository"
	"github.com/enaya12q/smartlabs/internal/services"
)

type AdminHandler struct {
	Users       *services.UserService
	Withdrawals *services.WithdrawalService
	TM          *auth.TokenManager
	Cfg         config.Config
}

func NewAdminHandler(us *services.UserService, ws *services.WithdrawalService, tm *auth.TokenManager, cfg config.Config) *AdminHandler {
	return &AdminHandler{Users: us, Withdrawals: ws, TM: tm, Cfg: cfg}
}

// Login authenticates the panel operator against the configured bcrypt hash.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "No data provided")
		return
	}
	if h.Cfg.AdminPassHash == "" ||
		req.Username != h.Cfg.AdminUsername ||
		auth.VerifyPassword(req.Password, h.Cfg.AdminPassHash) != nil {
		httpx.Fail(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	token, exp, err := h.TM.Generate("admin", auth.RoleAdmin)
	if err != nil {
		slog.Error("admin session token", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Login failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
	httpx.OK(w, map[string]any{"message": "Login successful"})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		slog.Error("admin users", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	httpx.OK(w, map[string]any{"users": users})
}

func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.Withdrawals.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		slog.Error("admin withdrawals", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to fetch withdrawals")
		return
	}
	if withdrawals == nil {
		withdrawals = []models.Withdrawal{}
	}
	httpx.OK(w, map[string]any{"withdrawals": withdrawals})
}

// SetWithdrawalStatus applies the moderation decision named in the URL.
func (h *AdminHandler) SetWithdrawalStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := models.WithdrawalStatus(chi.URLParam(r, "status"))

	err := h.Withdrawals.SetStatus(r.Context(), id, status)
	switch {
	case err == nil:
		httpx.OK(w, nil)
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.Fail(w, http.StatusBadRequest, "Invalid withdrawal status")
	case errors.Is(err, services.ErrAlreadyProcessed):
		httpx.Fail(w, http.StatusConflict, "Withdrawal already processed")
	case errors.Is(err, repository.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "Withdrawal not found")
	default:
		slog.Error("admin set status", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to update withdrawal")
	}
}
