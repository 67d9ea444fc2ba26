package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earlog/service/internal/auth"
)

func TestLogoutPageRedirectsHome(t *testing.T) {
	svc, _, _ := newTestService()
	h := auth.NewHandler(svc)

	rec := httptest.NewRecorder()
	h.LogoutPage(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogoutWithoutSessionRedirectsToLogin(t *testing.T) {
	svc, sessions, _ := newTestService()
	h := auth.NewHandler(svc)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.Empty(t, sessions.m)
}

func TestLogoutInvalidatesSessionAndClearsCookie(t *testing.T) {
	svc, sessions, _ := newTestService()
	h := auth.NewHandler(svc)

	_, sess, err := svc.Register(context.Background(), "jane_doe", "hunter22", nil, nil)
	require.NoError(t, err)
	require.Contains(t, sessions.m, sess.ID)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.ID})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.NotContains(t, sessions.m, sess.ID, "server-side session state must be removed")

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "logout must rewrite the session cookie")
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	h := auth.NewHandler(svc)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"short username", `{"username":"ab","password":"hunter22"}`},
		{"uppercase username", `{"username":"Jane","password":"hunter22"}`},
		{"short password", `{"username":"jane_doe","password":"pw"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	svc, _, _ := newTestService()
	h := auth.NewHandler(svc)

	body := `{"username":"jane_doe","password":"hunter22","age":34,"location":"Oslo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.NotEmpty(t, sessionCookie.Value)
	require.True(t, sessionCookie.HttpOnly)
	require.True(t, sessionCookie.Expires.After(time.Now()))
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	h := auth.NewHandler(svc)

	body := `{"username":"jane_doe","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}
