package session

import (
	"errors"
	"time"
)

// DefaultTimeout is the inactivity window after which a session is
// terminated regardless of any token expiry the auth layer enforces.
const DefaultTimeout = 3 * time.Hour

var (
	// ErrNotFound is returned when no session exists for a token.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session exceeded the inactivity window.
	ErrExpired = errors.New("session: expired")
)

// Session tracks when a login happened and when the user was last seen.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"user_id"`
	StartedAt    time.Time `json:"started_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// IdleSince returns how long the session has been without activity.
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActiveAt)
}
