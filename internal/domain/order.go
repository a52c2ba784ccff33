package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a delivered-to-Postgres snapshot of a completed checkout.
type Order struct {
	ID         uuid.UUID   `json:"id"`
	CheckoutID uuid.UUID   `json:"checkout_id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ProductID  string `json:"product_id"`
	StoreID    string `json:"store_id"`
	Name       string `json:"name"`
	StoreName  string `json:"store_name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}
