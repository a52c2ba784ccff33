package checkout

// Topic carries checkout-completed events. The cart poller and the orders
// consumer both read it.
const Topic = "checkout-completed"

type Event struct {
	CheckoutID string      `json:"checkout_id"`
	UserID     string      `json:"user_id"`
	Items      []EventItem `json:"items"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
}

type EventItem struct {
	ProductID  string `json:"product_id"`
	StoreID    string `json:"store_id"`
	Name       string `json:"name"`
	StoreName  string `json:"store_name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}
