package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/MN15LONER/grocer/internal/domain"
)

// CartService is the slice of the cart service the gateway needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) *domain.Cart
	AddItem(ctx context.Context, userID string, item domain.LineItem) *domain.Cart
	UpdateQuantity(ctx context.Context, userID, productID, storeID string, quantity int) *domain.Cart
	RemoveItem(ctx context.Context, userID, productID, storeID string) *domain.Cart
	ClearCart(ctx context.Context, userID string) *domain.Cart
}

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ProductID  string `json:"product_id"`
	StoreID    string `json:"store_id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	StoreName  string `json:"store_name"`
	PriceCents int64  `json:"price_cents"`
}

type UpdateQuantityRequestDTO struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Quantity  int    `json:"quantity"`
}

type StoreGroupDTO struct {
	StoreID       string            `json:"store_id"`
	StoreName     string            `json:"store_name"`
	Items         []domain.LineItem `json:"items"`
	SubtotalCents int64             `json:"subtotal_cents"`
	Subtotal      string            `json:"subtotal"`
}

type CartResponseDTO struct {
	UserID      string            `json:"user_id"`
	Items       []domain.LineItem `json:"items"`
	ItemCount   int               `json:"item_count"`
	TotalCents  int64             `json:"total_cents"`
	Total       string            `json:"total"`
	StoreGroups []StoreGroupDTO   `json:"store_groups"`
}

func cartResponse(cart *domain.Cart) CartResponseDTO {
	groups := cart.StoreGroups()
	groupDTOs := make([]StoreGroupDTO, 0, len(groups))
	for _, g := range groups {
		groupDTOs = append(groupDTOs, StoreGroupDTO{
			StoreID:       g.StoreID,
			StoreName:     g.StoreName,
			Items:         g.Items,
			SubtotalCents: g.SubtotalCents,
			Subtotal:      formatCents(g.SubtotalCents),
		})
	}
	sort.Slice(groupDTOs, func(i, j int) bool {
		return groupDTOs[i].StoreID < groupDTOs[j].StoreID
	})

	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}

	return CartResponseDTO{
		UserID:      cart.UserID,
		Items:       items,
		ItemCount:   cart.ItemCount(),
		TotalCents:  cart.TotalCents(),
		Total:       formatCents(cart.TotalCents()),
		StoreGroups: groupDTOs,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart := h.carts.GetCart(r.Context(), userID)
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" || req.StoreID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "product_id and store_id are required")
		return
	}
	if req.PriceCents < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price_cents must not be negative")
		return
	}

	cart := h.carts.AddItem(r.Context(), userID, domain.LineItem{
		ProductID:  req.ProductID,
		StoreID:    req.StoreID,
		Name:       req.Name,
		Image:      req.Image,
		StoreName:  req.StoreName,
		PriceCents: req.PriceCents,
	})
	respondJSON(w, http.StatusCreated, cartResponse(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" || req.StoreID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "product_id and store_id are required")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	// Quantity of zero or less removes the line, same as DELETE /items.
	cart := h.carts.UpdateQuantity(r.Context(), userID, req.ProductID, req.StoreID, req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := r.URL.Query().Get("product_id")
	storeID := r.URL.Query().Get("store_id")
	if productID == "" || storeID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "product_id and store_id are required")
		return
	}

	cart := h.carts.RemoveItem(r.Context(), userID, productID, storeID)
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart := h.carts.ClearCart(r.Context(), userID)
	respondJSON(w, http.StatusOK, cartResponse(cart))
}
