package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MN15LONER/grocer/internal/checkout"
	"github.com/MN15LONER/grocer/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CartClearer is the slice of the cart service the poller needs.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) *domain.Cart
}

// Poller empties carts when their checkout completes.
type Poller struct {
	carts  CartClearer
	reader *kafka.Reader
	logger *zap.Logger
}

func NewPoller(carts CartClearer, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    checkout.Topic,
		GroupID:  "cart-clearer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			p.logger.Warn("read checkout event failed", zap.Error(err))
			continue
		}
		p.handle(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("close kafka reader failed", zap.Error(err))
	}
}

func (p *Poller) handle(ctx context.Context, payload []byte) {
	var event checkout.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		p.logger.Warn("parse checkout event failed", zap.Error(err))
		return
	}
	if event.UserID == "" {
		p.logger.Warn("checkout event missing user_id")
		return
	}

	p.carts.ClearCart(ctx, event.UserID)
	p.logger.Info("cart cleared after checkout",
		zap.String("user_id", event.UserID),
		zap.String("checkout_id", event.CheckoutID),
	)
}
