package auth

import (
	"context"

	"github.com/earlog/service/internal/user"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const userKey contextKey = "user"
const sessionKey contextKey = "session"

// WithIdentity returns a context carrying the authenticated user and their
// live session. Set by the session middleware.
func WithIdentity(ctx context.Context, u *user.User, s *Session) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, s)
}

// CurrentUser returns the authenticated user from the context, or nil.
func CurrentUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey).(*user.User)
	return u
}

// CurrentSession returns the live session from the context, or nil.
func CurrentSession(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
