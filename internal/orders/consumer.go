package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MN15LONER/grocer/internal/checkout"
	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer turns checkout-completed events into persisted orders.
type Consumer struct {
	repo   OrderRepository
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(repo OrderRepository, logger *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    checkout.Topic,
		GroupID:  "orders-capture",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{repo: repo, reader: reader, logger: logger}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Warn("read checkout event failed", zap.Error(err))
			continue
		}
		c.handle(ctx, m.Value)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("close kafka reader failed", zap.Error(err))
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	order, err := orderFromEvent(payload)
	if err != nil {
		c.logger.Warn("bad checkout event", zap.Error(err))
		return
	}

	if err := c.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateCheckout) {
			// Redelivery of an already captured checkout.
			return
		}
		c.logger.Error("create order failed",
			zap.String("checkout_id", order.CheckoutID.String()),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("order captured",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID),
		zap.Int64("total_cents", order.TotalCents),
	)
}

func orderFromEvent(payload []byte) (*domain.Order, error) {
	var event checkout.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	checkoutID, err := uuid.Parse(event.CheckoutID)
	if err != nil {
		return nil, err
	}
	if event.UserID == "" {
		return nil, errors.New("missing user_id")
	}

	currency := event.Currency
	if currency == "" {
		currency = "ZAR"
	}

	items := make([]domain.OrderItem, len(event.Items))
	for i, item := range event.Items {
		items[i] = domain.OrderItem{
			ProductID:  item.ProductID,
			StoreID:    item.StoreID,
			Name:       item.Name,
			StoreName:  item.StoreName,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		}
	}

	return &domain.Order{
		ID:         uuid.New(),
		CheckoutID: checkoutID,
		UserID:     event.UserID,
		Items:      items,
		TotalCents: event.TotalCents,
		Currency:   currency,
		Status:     domain.OrderStatusPending,
	}, nil
}
