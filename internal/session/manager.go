package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Authenticator is the sign-out hook invoked during session teardown.
type Authenticator interface {
	SignOut(ctx context.Context, userID string) error
}

// Manager enforces inactivity-based session expiry. Each active session has
// exactly one armed timer; every activity reset cancels the old timer before
// arming a new one, so expiry can never fire twice.
type Manager struct {
	store     Store
	auth      Authenticator
	scheduler Scheduler
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu     sync.Mutex
	timers map[string]CancelFunc
}

type Option func(*Manager)

// WithTimeout overrides the default three-hour inactivity window.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func WithScheduler(s Scheduler) Option {
	return func(m *Manager) { m.scheduler = s }
}

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, auth Authenticator, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		auth:      auth,
		scheduler: NewScheduler(),
		timeout:   DefaultTimeout,
		now:       time.Now,
		logger:    logger,
		timers:    make(map[string]CancelFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a session on successful login: both timestamps are set to
// now, the record is persisted, and the inactivity timer is armed.
func (m *Manager) Start(ctx context.Context, token, userID string) *Session {
	now := m.now()
	sess := &Session{
		Token:        token,
		UserID:       userID,
		StartedAt:    now,
		LastActiveAt: now,
	}

	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Warn("session save failed", zap.String("user_id", userID), zap.Error(err))
	}

	m.arm(token)
	return sess
}

// Touch records a user-activity event. Elapsed time is validated first: a
// session already past the inactivity window is torn down and ErrExpired
// returned. Otherwise the last-activity timestamp moves to now and the
// timer restarts. Store read failures fail open: the session is treated as
// still valid rather than forcing an unwanted logout.
func (m *Manager) Touch(ctx context.Context, token string) error {
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		m.logger.Warn("session read failed, failing open", zap.Error(err))
		m.arm(token)
		return nil
	}

	if sess.IdleSince(m.now()) > m.timeout {
		m.teardown(ctx, token)
		return ErrExpired
	}

	sess.LastActiveAt = m.now()
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Warn("session save failed", zap.String("user_id", sess.UserID), zap.Error(err))
	}

	m.arm(token)
	return nil
}

// Logout performs the same teardown as expiry. Calling it on a session
// that is already gone is a no-op.
func (m *Manager) Logout(ctx context.Context, token string) {
	m.teardown(ctx, token)
}

// arm restarts the inactivity timer for a token, cancelling any previous
// timer first.
func (m *Manager) arm(token string) {
	cancel := m.scheduler.Schedule(m.timeout, func() {
		m.expire(token)
	})

	m.mu.Lock()
	if prev, ok := m.timers[token]; ok {
		prev()
	}
	m.timers[token] = cancel
	m.mu.Unlock()
}

// expire runs when the inactivity timer fires without a reset.
func (m *Manager) expire(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.teardown(ctx, token)
}

// teardown disarms the timer, deletes the persisted record, and invokes
// the sign-out hook. Idempotent: a second call finds neither a timer nor a
// record and does nothing.
func (m *Manager) teardown(ctx context.Context, token string) {
	m.mu.Lock()
	cancel, armed := m.timers[token]
	delete(m.timers, token)
	m.mu.Unlock()
	if armed {
		cancel()
	}

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if !armed {
				return // already torn down
			}
		} else {
			m.logger.Warn("session read during teardown failed", zap.Error(err))
		}
	}

	if err := m.store.Delete(ctx, token); err != nil {
		m.logger.Warn("session delete failed", zap.Error(err))
	}

	if sess != nil && m.auth != nil {
		if err := m.auth.SignOut(ctx, sess.UserID); err != nil {
			m.logger.Warn("sign-out hook failed", zap.String("user_id", sess.UserID), zap.Error(err))
		}
	}
}

// Close disarms every timer, for graceful shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, cancel := range m.timers {
		cancel()
		delete(m.timers, token)
	}
}
