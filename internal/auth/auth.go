package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/MN15LONER/grocer/internal/repository"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// Service authenticates marketplace accounts and issues session tokens.
type Service struct {
	users  repository.UserRepository
	tokens *TokenManager
	logger *zap.Logger
}

func NewService(users repository.UserRepository, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// SignUp registers a new account with a hashed password.
func (s *Service) SignUp(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleCustomer
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// SignIn verifies credentials and issues a token plus session id.
// Failures surface as ErrInvalidCredentials without distinguishing an
// unknown email from a wrong password.
func (s *Service) SignIn(ctx context.Context, email, password string) (user *domain.User, token, sessionID string, err error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return nil, "", "", ErrInvalidCredentials
	}

	token, sessionID, err = s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, "", "", err
	}
	return u, token, sessionID, nil
}

// SignOut records the logout on the account. Invoked by the session
// manager during teardown, so it must tolerate repeats.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	if err := s.users.RecordLogout(ctx, userID); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	return nil
}

// Tokens exposes the token manager for the HTTP middleware.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}
