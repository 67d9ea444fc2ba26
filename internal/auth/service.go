package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/earlog/service/internal/config"
	"github.com/earlog/service/internal/user"
)

const sessionTTL = 30 * 24 * time.Hour

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session"

// ErrInvalidCredentials is returned when the username/password pair does not
// match a known account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionStore abstracts session persistence for the service layer.
type SessionStore interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// UserStore abstracts the user lookups the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string, age *int, location *string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service contains the business logic for password-based authentication.
type Service struct {
	sessions SessionStore
	users    UserStore
	cfg      *config.Config
}

// NewService creates a new auth Service.
func NewService(sessions SessionStore, users UserStore, cfg *config.Config) *Service {
	return &Service{sessions: sessions, users: users, cfg: cfg}
}

// Register creates a new user account with a bcrypt-hashed password and opens
// a session for it.
func (s *Service) Register(ctx context.Context, username, password string, age *int, location *string) (*user.User, *Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, username, string(hash), age, location)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// Login verifies the password and opens a fresh session. An unknown username
// and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*user.User, *Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// ResolveSession validates a session token and returns the session together
// with its owning user. Expired sessions are deleted on sight.
func (s *Service) ResolveSession(ctx context.Context, token string) (*user.User, *Session, error) {
	sess, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	if time.Now().After(sess.ExpiresAt) {
		if derr := s.sessions.DeleteSession(ctx, sess.ID); derr != nil {
			return nil, nil, fmt.Errorf("delete expired session: %w", derr)
		}
		return nil, nil, ErrNoSession
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session user: %w", err)
	}
	return u, sess, nil
}

// Invalidate removes server-side session state for the given token.
func (s *Service) Invalidate(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// SetSessionCookie writes the session token cookie on the response.
func (s *Service) SetSessionCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the response.
func (s *Service) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) openSession(ctx context.Context, userID string) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := &Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// generateToken returns a cryptographically random 64-char hex token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
