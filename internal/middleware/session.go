package middleware

import (
	"context"
	"net/http"

	"github.com/enaya12q/smartlabs/internal/api/httpx"
	"github.com/enaya12q/smartlabs/internal/auth"
)

// SessionCookie carries the signed session token between requests.
const SessionCookie = "smartlabs_session"

type ctxKey string

const (
	ctxUserIDKey ctxKey = "uid"
	ctxRoleKey   ctxKey = "role"
)

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(string)
	return v, ok
}

func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxRoleKey).(string)
	return v, ok
}

type SessionMiddleware struct {
	TM *auth.TokenManager
}

func NewSessionMiddleware(tm *auth.TokenManager) *SessionMiddleware {
	return &SessionMiddleware{TM: tm}
}

// RequireUser rejects requests without a valid session cookie. The 401 body
// uses the standard envelope so clients treat it as "not authenticated"
// rather than a transport fault.
func (m *SessionMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.claims(r)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ctxRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin additionally checks the admin role.
func (m *SessionMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.claims(r)
		if !ok || claims.Role != auth.RoleAdmin {
			httpx.Fail(w, http.StatusForbidden, "Admin access required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ctxRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) claims(r *http.Request) (*auth.Claims, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	claims, err := m.TM.Parse(c.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}
