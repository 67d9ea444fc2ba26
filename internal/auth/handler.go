package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"

	"github.com/earlog/service/internal/response"
	"github.com/earlog/service/internal/user"
)

// usernameRegex matches 3–31 chars of lowercase letters, digits, '_' or '-'.
var usernameRegex = regexp.MustCompile(`^[a-z0-9_-]{3,31}$`)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string  `json:"username" example:"jane_doe"`
	Password string  `json:"password" example:"hunter22"`
	Age      *int    `json:"age,omitempty" example:"34"`
	Location *string `json:"location,omitempty" example:"Oslo"`
}

type loginRequest struct {
	Username string `json:"username" example:"jane_doe"`
	Password string `json:"password" example:"hunter22"`
}

// Register godoc
//
//	@Summary		Register new user
//	@Description	Create an account and open a session. The session token is set as an HTTP-only cookie.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Account details"
//	@Success		201		{object}	response.Envelope{data=user.User}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		response.BadRequest(w, "username must be 3-31 characters (a-z, 0-9, _ or -)")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 255 {
		response.BadRequest(w, "password must be 6-255 characters")
		return
	}

	u, sess, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Age, req.Location)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			response.Conflict(w, "username already taken")
			return
		}
		log.Printf("auth: register failed: %v", err)
		response.InternalError(w)
		return
	}

	h.svc.SetSessionCookie(w, sess)
	response.Created(w, u)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify username and password and open a session. The session token is set as an HTTP-only cookie.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=user.User}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	u, sess, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.BadRequest(w, "incorrect username or password")
			return
		}
		log.Printf("auth: login failed: %v", err)
		response.InternalError(w)
		return
	}

	h.svc.SetSessionCookie(w, sess)
	response.OK(w, u)
}

// Me godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the currently authenticated user.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=user.User}
//	@Failure		401	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := CurrentUser(r.Context())
	if u == nil || CurrentSession(r.Context()) == nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	response.OK(w, u)
}

// Logout invalidates the current session, clears its cookie, and redirects to
// the login page. Without a session cookie it only redirects.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := h.svc.Invalidate(r.Context(), cookie.Value); err != nil {
		log.Printf("auth: invalidate session failed: %v", err)
	}
	h.svc.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LogoutPage handles a plain page load of the logout route: always a redirect
// home, no side effects.
func (h *Handler) LogoutPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}
