package checkout

import (
	"context"
	"errors"

	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("checkout: cart is empty")

// CartReader is the slice of the cart service the checkout needs.
type CartReader interface {
	GetCart(ctx context.Context, userID string) *domain.Cart
}

// Service snapshots the cart and publishes a checkout-completed event.
// The cart itself is cleared asynchronously by the poller consuming the
// event, so checkout and cart clearing cannot get out of sync.
type Service struct {
	carts    CartReader
	events   EventWriter
	currency string
	logger   *zap.Logger
}

func NewService(carts CartReader, events EventWriter, currency string, logger *zap.Logger) *Service {
	return &Service{
		carts:    carts,
		events:   events,
		currency: currency,
		logger:   logger,
	}
}

func (s *Service) Checkout(ctx context.Context, userID string) (*Event, error) {
	cart := s.carts.GetCart(ctx, userID)
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	event := Event{
		CheckoutID: uuid.NewString(),
		UserID:     userID,
		Items:      make([]EventItem, len(cart.Items)),
		TotalCents: cart.TotalCents(),
		Currency:   s.currency,
	}
	for i, item := range cart.Items {
		event.Items[i] = EventItem{
			ProductID:  item.ProductID,
			StoreID:    item.StoreID,
			Name:       item.Name,
			StoreName:  item.StoreName,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		}
	}

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("checkout publish failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("checkout completed",
		zap.String("checkout_id", event.CheckoutID),
		zap.String("user_id", userID),
		zap.Int64("total_cents", event.TotalCents),
	)
	return &event, nil
}
