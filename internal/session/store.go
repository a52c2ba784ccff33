package session

import "context"

// Store persists session timestamps. The manager owns the interface; the
// Redis implementation lives next to it.
type Store interface {
	// Save writes the full session record under its token.
	Save(ctx context.Context, sess *Session) error

	// Get retrieves a session by token. Returns ErrNotFound if absent.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, token string) error
}
