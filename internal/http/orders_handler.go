package http

import (
	"context"
	"net/http"

	"github.com/MN15LONER/grocer/internal/domain"
)

// OrderLister reads captured orders back for the account screens.
type OrderLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders OrderLister
}

func NewOrdersHandler(orders OrderLister) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}
