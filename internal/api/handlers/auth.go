package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/enaya12q/smartlabs/internal/api/httpx"
	"github.com/enaya12q/smartlabs/internal/auth"
	"github.com/enaya12q/smartlabs/internal/config"
	"github.com/enaya12q/smartlabs/internal/middleware"
	"github.com/enaya12q/smartlabs/internal/repository"
	"github.com/enaya12q/smartlabs/internal/services"
)

type AuthHandler struct {
	Users *services.UserService
	TM    *auth.TokenManager
	Cfg   config.Config
}

func NewAuthHandler(us *services.UserService, tm *auth.TokenManager, cfg config.Config) *AuthHandler {
	return &AuthHandler{Users: us, TM: tm, Cfg: cfg}
}

// Login accepts the raw login-widget payload, verifies it server-side and
// opens a session. The assertion is forwarded by the client verbatim; the
// body is the only thing trusted after the signature check passes.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil || len(raw) == 0 {
		httpx.Fail(w, http.StatusBadRequest, "No data provided")
		return
	}
	assertion, err := auth.ParseAssertion(raw)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "No data provided")
		return
	}

	u, err := h.Users.Login(r.Context(), assertion)
	if err != nil {
		if errors.Is(err, services.ErrLoginRejected) {
			httpx.Fail(w, http.StatusForbidden, rejectMessage(err))
			return
		}
		slog.Error("login", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := h.setSession(w, u.ID, auth.RoleUser); err != nil {
		slog.Error("session token", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Login failed")
		return
	}
	httpx.OK(w, map[string]any{
		"message": "Login successful",
		"user":    u.Profile(h.Cfg.BaseURL),
	})
}

func rejectMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrBadSignature):
		return "Invalid Telegram data hash"
	case errors.Is(err, auth.ErrStaleAuth):
		return "Telegram data is too old"
	default:
		return "Login rejected"
	}
}

// UserData returns the authenticated user's profile; this is the endpoint
// bootstrapping clients reconcile their cache against.
func (h *AuthHandler) UserData(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	u, err := h.Users.GetByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("user_data", "err", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to load user data")
		return
	}
	httpx.OK(w, map[string]any{"user": u.Profile(h.Cfg.BaseURL)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	httpx.OK(w, nil)
}

func (h *AuthHandler) setSession(w http.ResponseWriter, userID, role string) error {
	token, exp, err := h.TM.Generate(userID, role)
	if err != nil {
		return err
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
	return nil
}
