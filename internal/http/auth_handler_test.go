package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MN15LONER/grocer/internal/auth"
	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/MN15LONER/grocer/internal/session"
)

type authServiceMock struct {
	user *domain.User
	err  error
}

func (a authServiceMock) SignUp(_ context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.user, nil
}

func (a authServiceMock) SignIn(context.Context, string, string) (*domain.User, string, string, error) {
	if a.err != nil {
		return nil, "", "", a.err
	}
	return a.user, "jwt-token", "sess1", nil
}

type sessionManagerMock struct {
	started   []string
	loggedOut []string
}

func (s *sessionManagerMock) Start(_ context.Context, token, userID string) *session.Session {
	s.started = append(s.started, token)
	return &session.Session{Token: token, UserID: userID}
}

func (s *sessionManagerMock) Logout(_ context.Context, token string) {
	s.loggedOut = append(s.loggedOut, token)
}

func TestRegister_Success(t *testing.T) {
	mock := authServiceMock{user: &domain.User{ID: "u1", Email: "a@b.c", Role: domain.RoleCustomer}}
	handler := NewAuthHandler(mock, &sessionManagerMock{})

	reqBody, _ := json.Marshal(RegisterRequestDTO{Email: "a@b.c", Password: "hunter22", Name: "Thabo"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(reqBody))

	handler.Register(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	handler := NewAuthHandler(authServiceMock{}, &sessionManagerMock{})

	reqBody, _ := json.Marshal(RegisterRequestDTO{Email: "a@b.c"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(reqBody))

	handler.Register(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestLogin_Success(t *testing.T) {
	sessions := &sessionManagerMock{}
	mock := authServiceMock{user: &domain.User{ID: "u1", Email: "a@b.c"}}
	handler := NewAuthHandler(mock, sessions)

	reqBody, _ := json.Marshal(LoginRequestDTO{Email: "a@b.c", Password: "hunter22"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(reqBody))

	handler.Login(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response LoginResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Token != "jwt-token" {
		t.Errorf("Expected token jwt-token, got %s", response.Token)
	}

	// Login must start the session under the token's session id.
	if len(sessions.started) != 1 || sessions.started[0] != "sess1" {
		t.Errorf("Expected session sess1 to be started, got %v", sessions.started)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	sessions := &sessionManagerMock{}
	handler := NewAuthHandler(authServiceMock{err: auth.ErrInvalidCredentials}, sessions)

	reqBody, _ := json.Marshal(LoginRequestDTO{Email: "a@b.c", Password: "wrong"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(reqBody))

	handler.Login(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
	if len(sessions.started) != 0 {
		t.Errorf("Expected no session to be started, got %v", sessions.started)
	}
}

func TestLogout_Success(t *testing.T) {
	sessions := &sessionManagerMock{}
	handler := NewAuthHandler(authServiceMock{}, sessions)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/auth/logout", nil)
	ctx := context.WithValue(request.Context(), sessionIDKey, "sess1")
	request = request.WithContext(ctx)

	handler.Logout(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(sessions.loggedOut) != 1 || sessions.loggedOut[0] != "sess1" {
		t.Errorf("Expected session sess1 to be logged out, got %v", sessions.loggedOut)
	}
}

func TestLogout_MissingSession(t *testing.T) {
	sessions := &sessionManagerMock{}
	handler := NewAuthHandler(authServiceMock{}, sessions)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/auth/logout", nil)

	handler.Logout(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}
