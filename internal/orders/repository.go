package orders

import (
	"context"

	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/google/uuid"
)

// OrderRepository stores completed orders. The consumer owns the
// interface, not the Postgres implementation.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// Credentials configure the Postgres connection and migrations.
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
