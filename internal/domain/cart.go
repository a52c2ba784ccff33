package domain

import "time"

// Cart holds a user's line items. Items are unique by (ProductID, StoreID);
// adding the same pair again bumps the quantity instead of duplicating.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []LineItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type LineItem struct {
	ProductID  string    `bson:"product_id" json:"product_id"`
	StoreID    string    `bson:"store_id" json:"store_id"`
	Name       string    `bson:"name" json:"name"`
	Image      string    `bson:"image,omitempty" json:"image,omitempty"`
	StoreName  string    `bson:"store_name" json:"store_name"`
	PriceCents int64     `bson:"price_cents" json:"price_cents"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}

// StoreGroup is the per-store view of a cart. Derived on every read,
// never persisted.
type StoreGroup struct {
	StoreID       string     `json:"store_id"`
	StoreName     string     `json:"store_name"`
	Items         []LineItem `json:"items"`
	SubtotalCents int64      `json:"subtotal_cents"`
}

func NewCart(userID string) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Items:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) find(productID, storeID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.StoreID == storeID {
			return i
		}
	}
	return -1
}

// AddItem adds exactly one unit of the product. The Quantity field on the
// input is ignored: an existing (product, store) line is incremented by one,
// otherwise a new line starts at one.
func (c *Cart) AddItem(item LineItem) {
	now := time.Now()
	if i := c.find(item.ProductID, item.StoreID); i >= 0 {
		c.Items[i].Quantity++
	} else {
		item.Quantity = 1
		item.AddedAt = now
		c.Items = append(c.Items, item)
	}
	c.UpdatedAt = now
}

// UpdateQuantity sets the quantity of an existing line item. A quantity of
// zero or less removes the line. Unknown items are ignored.
func (c *Cart) UpdateQuantity(productID, storeID string, quantity int) {
	i := c.find(productID, storeID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.UpdatedAt = time.Now()
}

// RemoveItem deletes the matching line item. Unknown items are ignored.
func (c *Cart) RemoveItem(productID, storeID string) {
	i := c.find(productID, storeID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.UpdatedAt = time.Now()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

// TotalCents returns the sum of price times quantity over all items.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the sum of all quantities, not the number of lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// StoreGroups partitions the cart by store. Every item lands in exactly one
// group and the group subtotals add up to TotalCents.
func (c *Cart) StoreGroups() map[string]StoreGroup {
	groups := make(map[string]StoreGroup)
	for _, item := range c.Items {
		g, ok := groups[item.StoreID]
		if !ok {
			g = StoreGroup{StoreID: item.StoreID, StoreName: item.StoreName}
		}
		g.Items = append(g.Items, item)
		g.SubtotalCents += item.PriceCents * int64(item.Quantity)
		groups[item.StoreID] = g
	}
	return groups
}

// Clone returns a deep copy safe to hand out across goroutines.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
