package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MN15LONER/grocer/internal/auth"
	"github.com/MN15LONER/grocer/internal/session"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	roleKey      contextKey = "role"
	sessionIDKey contextKey = "session_id"
	requestIDKey contextKey = "request_id"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// SessionToucher records request activity against the session.
type SessionToucher interface {
	Touch(ctx context.Context, token string) error
}

// AuthMiddleware validates the bearer token and registers the request as a
// user-activity event with the session manager. A session past its
// inactivity window is rejected here, whatever the token's own expiry says.
func AuthMiddleware(tokens TokenParser, sessions SessionToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
				return
			}

			if err := sessions.Touch(r.Context(), claims.ID); err != nil {
				if errors.Is(err, session.ErrExpired) || errors.Is(err, session.ErrNotFound) {
					respondError(w, http.StatusUnauthorized, "session_expired", "session expired, please sign in again")
					return
				}
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			ctx = context.WithValue(ctx, sessionIDKey, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func getSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}
