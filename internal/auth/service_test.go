package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earlog/service/internal/auth"
	"github.com/earlog/service/internal/config"
	"github.com/earlog/service/internal/user"
)

type memSessions struct {
	m map[string]*auth.Session
}

func newMemSessions() *memSessions {
	return &memSessions{m: map[string]*auth.Session{}}
}

func (s *memSessions) CreateSession(_ context.Context, sess *auth.Session) error {
	s.m[sess.ID] = sess
	return nil
}

func (s *memSessions) GetSession(_ context.Context, id string) (*auth.Session, error) {
	sess, ok := s.m[id]
	if !ok {
		return nil, auth.ErrNoSession
	}
	return sess, nil
}

func (s *memSessions) DeleteSession(_ context.Context, id string) error {
	delete(s.m, id)
	return nil
}

type memUsers struct {
	byName map[string]*user.User
	nextID int
}

func newMemUsers() *memUsers {
	return &memUsers{byName: map[string]*user.User{}}
}

func (s *memUsers) Create(_ context.Context, username, passwordHash string, age *int, location *string) (*user.User, error) {
	if _, ok := s.byName[username]; ok {
		return nil, user.ErrAlreadyExists
	}
	s.nextID++
	u := &user.User{
		ID:           fmt.Sprintf("u%d", s.nextID),
		Username:     username,
		PasswordHash: passwordHash,
		Age:          age,
		Location:     location,
		CreatedAt:    time.Now(),
	}
	s.byName[username] = u
	return u, nil
}

func (s *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range s.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := s.byName[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newTestService() (*auth.Service, *memSessions, *memUsers) {
	sessions := newMemSessions()
	users := newMemUsers()
	svc := auth.NewService(sessions, users, &config.Config{AppEnv: "test"})
	return svc, sessions, users
}

func TestRegisterOpensSession(t *testing.T) {
	svc, sessions, _ := newTestService()
	ctx := context.Background()

	u, sess, err := svc.Register(ctx, "jane_doe", "hunter22", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NotEqual(t, "hunter22", u.PasswordHash, "password must be stored hashed")
	require.Contains(t, sessions.m, sess.ID)
	require.Equal(t, u.ID, sess.UserID)
	require.True(t, sess.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "jane_doe", "hunter22", nil, nil)
	require.NoError(t, err)

	u, sess, err := svc.Login(ctx, "jane_doe", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "jane_doe", u.Username)
	require.NotEmpty(t, sess.ID)

	_, _, err = svc.Login(ctx, "jane_doe", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "hunter22")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials,
		"unknown user and wrong password must be indistinguishable")
}

func TestResolveSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	registered, sess, err := svc.Register(ctx, "jane_doe", "hunter22", nil, nil)
	require.NoError(t, err)

	u, resolved, err := svc.ResolveSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, registered.ID, u.ID)
	require.Equal(t, sess.ID, resolved.ID)

	_, _, err = svc.ResolveSession(ctx, "no-such-token")
	require.ErrorIs(t, err, auth.ErrNoSession)
}

func TestResolveSessionExpired(t *testing.T) {
	svc, sessions, users := newTestService()
	ctx := context.Background()

	u, err := users.Create(ctx, "jane_doe", "irrelevant", nil, nil)
	require.NoError(t, err)

	stale := &auth.Session{ID: "stale", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, sessions.CreateSession(ctx, stale))

	_, _, err = svc.ResolveSession(ctx, "stale")
	require.ErrorIs(t, err, auth.ErrNoSession)
	require.NotContains(t, sessions.m, "stale", "expired session must be deleted on resolution")
}

func TestInvalidate(t *testing.T) {
	svc, sessions, _ := newTestService()
	ctx := context.Background()

	_, sess, err := svc.Register(ctx, "jane_doe", "hunter22", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, sess.ID))
	require.NotContains(t, sessions.m, sess.ID)

	_, _, err = svc.ResolveSession(ctx, sess.ID)
	require.ErrorIs(t, err, auth.ErrNoSession)
}
