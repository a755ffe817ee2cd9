package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return s
}

// sessionMiddleware attaches the caller's session, if any, to the request
// context. Lookup failures leave the request anonymous.
func (h *HTTPHandler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := h.svc.Sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				h.logger.WithError(err).Warn("session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

func (h *HTTPHandler) requireRole(min domain.Role, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r.Context())
		if session == nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !session.Role.Satisfies(min) {
			respondError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	})
}

// Logout accepts GET and POST. It always clears the cookie; a failed
// session delete is logged only.
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.sessionCookie); err == nil && cookie.Value != "" {
		if err := h.svc.Sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.WithError(err).Error("failed to delete session on logout")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
