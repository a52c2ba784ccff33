package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MN15LONER/grocer/internal/auth"
	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/MN15LONER/grocer/internal/session"
)

// AuthService is the slice of the auth service the gateway needs.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (user *domain.User, token, sessionID string, err error)
}

// SessionManager drives session lifecycle from login and logout.
type SessionManager interface {
	Start(ctx context.Context, token, userID string) *session.Session
	Logout(ctx context.Context, token string)
}

type AuthHandler struct {
	auth     AuthService
	sessions SessionManager
}

func NewAuthHandler(auth AuthService, sessions SessionManager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponseDTO struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
			return
		}
		respondError(w, http.StatusConflict, "registration_failed", "could not register account")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, token, sessionID, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.sessions.Start(r.Context(), sessionID, user.ID)

	respondJSON(w, http.StatusOK, LoginResponseDTO{
		Token: token,
		User:  user,
	})
}

// Logout tears the session down. Runs behind the auth middleware, so the
// session id comes from the validated token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	h.sessions.Logout(r.Context(), sessionID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
