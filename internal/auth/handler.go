package auth

import (
	"context"
	"net/http"
	"time"

	errors "github.com/frahmantamala/stock-management/internal"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
	"github.com/frahmantamala/stock-management/internal/transport"
	"github.com/frahmantamala/stock-management/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*coreUser.Principal, *SessionToken, error)
	Logout(ctx context.Context, token string) error
	Authorize(ctx context.Context, token string, required coreUser.Role) (Decision, *coreUser.Principal, error)
	ChangePassword(ctx context.Context, username, current, next string) error
}

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  CookieConfig
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Cookie:      cookie,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	principal, token, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.setCookie(w, token.Token, token.ExpiresAt)
	h.WriteJSON(w, http.StatusOK, LoginResponse{
		User:      principal,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.token(r); token != "" {
		if err := h.Service.Logout(r.Context(), token); err != nil {
			h.WriteAppError(w, err)
			return
		}
	}

	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, errors.ErrUnauthenticated)
		return
	}
	h.WriteJSON(w, http.StatusOK, principal)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, errors.ErrUnauthenticated)
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), principal.Username, dto.CurrentPassword, dto.NewPassword); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequireAuthenticated lets any signed-in account through.
func (h *Handler) RequireAuthenticated(next http.Handler) http.Handler {
	return h.requireRole(coreUser.RoleUser)(next)
}

func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return h.requireRole(coreUser.RoleAdmin)(next)
}

func (h *Handler) requireRole(role coreUser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, principal, err := h.Service.Authorize(r.Context(), h.token(r), role)
			if err != nil {
				h.WriteAppError(w, err)
				return
			}

			switch decision {
			case Unauthenticated:
				h.WriteAppError(w, errors.ErrUnauthenticated)
				return
			case Forbidden:
				h.Logger.Warn("access denied", "user_id", principal.ID, "required_role", role, "path", r.URL.Path)
				h.WriteAppError(w, errors.ErrAdminRequired)
				return
			}

			ctx := errors.ContextWithPrincipal(r.Context(), principal)
			ctx = errors.ContextWithUserID(ctx, principal.ID)
			ctx = logger.With(ctx, "userID", principal.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// token prefers the session cookie and falls back to a Bearer header.
func (h *Handler) token(r *http.Request) string {
	if c, err := r.Cookie(h.Cookie.Name); err == nil && c.Value != "" {
		return c.Value
	}
	return h.ExtractTokenFromHeader(r)
}

func (h *Handler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
