package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MN15LONER/grocer/internal/checkout"
)

// CheckoutService finalizes a cart into a checkout event.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*checkout.Event, error)
}

type CheckoutHandler struct {
	checkouts CheckoutService
}

func NewCheckoutHandler(checkouts CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

type CheckoutResponseDTO struct {
	CheckoutID string `json:"checkout_id"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
	Currency   string `json:"currency"`
}

// Checkout publishes the completed checkout. The cart is emptied
// asynchronously once the event is consumed, hence 202.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	event, err := h.checkouts.Checkout(r.Context(), userID)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "empty_cart", "cannot check out an empty cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusAccepted, CheckoutResponseDTO{
		CheckoutID: event.CheckoutID,
		TotalCents: event.TotalCents,
		Total:      formatCents(event.TotalCents),
		Currency:   event.Currency,
	})
}
