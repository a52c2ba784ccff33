package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MN15LONER/grocer/internal/auth"
	"github.com/MN15LONER/grocer/internal/session"
)

type tokenParserMock struct {
	claims *auth.Claims
	err    error
}

func (p tokenParserMock) Parse(string) (*auth.Claims, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.claims, nil
}

type sessionToucherMock struct {
	touched []string
	err     error
}

func (s *sessionToucherMock) Touch(_ context.Context, token string) error {
	s.touched = append(s.touched, token)
	return s.err
}

func validClaims() *auth.Claims {
	claims := &auth.Claims{Role: "customer"}
	claims.Subject = "u1"
	claims.ID = "sess1"
	return claims
}

func runMiddleware(t *testing.T, parser TokenParser, toucher SessionToucher, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if got := getUserID(r.Context()); got != "u1" {
			t.Errorf("Expected user_id u1 in context, got %q", got)
		}
		if got := getSessionID(r.Context()); got != "sess1" {
			t.Errorf("Expected session_id sess1 in context, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	if authHeader != "" {
		request.Header.Set("Authorization", authHeader)
	}

	AuthMiddleware(parser, toucher)(next).ServeHTTP(recorder, request)
	return recorder, called
}

func TestAuthMiddleware_Success(t *testing.T) {
	toucher := &sessionToucherMock{}
	recorder, called := runMiddleware(t, tokenParserMock{claims: validClaims()}, toucher, "Bearer token123")

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if !called {
		t.Error("Expected next handler to be called")
	}
	if len(toucher.touched) != 1 || toucher.touched[0] != "sess1" {
		t.Errorf("Expected session sess1 to be touched, got %v", toucher.touched)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	recorder, called := runMiddleware(t, tokenParserMock{claims: validClaims()}, &sessionToucherMock{}, "")

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
	if called {
		t.Error("Expected next handler not to be called")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	recorder, called := runMiddleware(t, tokenParserMock{err: auth.ErrInvalidToken}, &sessionToucherMock{}, "Bearer bad")

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
	if called {
		t.Error("Expected next handler not to be called")
	}
}

func TestAuthMiddleware_ExpiredSession(t *testing.T) {
	toucher := &sessionToucherMock{err: session.ErrExpired}
	recorder, called := runMiddleware(t, tokenParserMock{claims: validClaims()}, toucher, "Bearer token123")

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
	if called {
		t.Error("Expected next handler not to be called")
	}
}

func TestAuthMiddleware_UnknownSession(t *testing.T) {
	toucher := &sessionToucherMock{err: session.ErrNotFound}
	recorder, _ := runMiddleware(t, tokenParserMock{claims: validClaims()}, toucher, "Bearer token123")

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	RequestIDMiddleware(next).ServeHTTP(recorder, request)

	if recorder.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
}

func TestRequestIDMiddleware_KeepsExistingID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Request-ID", "req-abc")

	RequestIDMiddleware(next).ServeHTTP(recorder, request)

	if got := recorder.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("Expected X-Request-ID req-abc, got %s", got)
	}
}
