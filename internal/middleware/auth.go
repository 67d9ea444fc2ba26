package middleware

import (
	"context"
	"net/http"

	"github.com/earlog/service/internal/auth"
	"github.com/earlog/service/internal/response"
	"github.com/earlog/service/internal/user"
)

// SessionResolver validates a session token and returns the session with its
// owning user. Implemented by auth.Service.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*user.User, *auth.Session, error)
}

// RequireSession returns middleware that resolves the session cookie and
// injects the authenticated user and session into the request context.
// Requests without a live session are rejected with 401 before reaching the
// handler.
func RequireSession(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				response.Unauthorized(w, "authentication required")
				return
			}

			u, sess, err := sessions.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				response.Unauthorized(w, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), u, sess)))
		})
	}
}
