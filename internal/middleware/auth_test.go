package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earlog/service/internal/auth"
	"github.com/earlog/service/internal/middleware"
	"github.com/earlog/service/internal/user"
)

type stubResolver struct {
	user    *user.User
	session *auth.Session
	err     error
	tokens  []string
}

func (s *stubResolver) ResolveSession(_ context.Context, token string) (*user.User, *auth.Session, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, s.session, nil
}

func TestRequireSessionNoCookie(t *testing.T) {
	resolver := &stubResolver{}
	called := false
	h := middleware.RequireSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/photos", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
	require.Empty(t, resolver.tokens, "resolver must not be consulted without a cookie")
}

func TestRequireSessionInvalidToken(t *testing.T) {
	resolver := &stubResolver{err: auth.ErrNoSession}
	h := middleware.RequireSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/photos", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "dead-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, []string{"dead-token"}, resolver.tokens)
}

func TestRequireSessionInjectsIdentity(t *testing.T) {
	u := &user.User{ID: "u1", Username: "jane"}
	sess := &auth.Session{ID: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	resolver := &stubResolver{user: u, session: sess}

	var gotUser *user.User
	var gotSession *auth.Session
	h := middleware.RequireSession(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.CurrentUser(r.Context())
		gotSession = auth.CurrentSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/photos", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, u, gotUser)
	require.Equal(t, sess, gotSession)
}
