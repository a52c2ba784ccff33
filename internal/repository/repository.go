package repository

import (
	"context"

	"github.com/MN15LONER/grocer/internal/domain"
)

// CartRepository is the persistence mirror of the in-memory cart. The
// service owns the interface, not the MongoDB implementation.
type CartRepository interface {
	Load(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// UserRepository stores marketplace accounts.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (string, error)
	RecordLogout(ctx context.Context, userID string) error
}
