package entity

import "time"

// CartItem holds a product reference with the price snapshotted when the item
// was added.
type CartItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Cart is the per-user shopping cart. One cart per user; it is cleared on
// checkout, never deleted.
type Cart struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	Tax       float64    `json:"tax"`
	Shipping  float64    `json:"shipping"`
	Discount  float64    `json:"discount"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RecomputeTotals re-derives the cart's monetary fields from its items.
// An empty cart carries no charges at all. Idempotent for an unchanged
// item list.
func (c *Cart) RecomputeTotals(pricing PricingConfig) {
	if len(c.Items) == 0 {
		c.Subtotal = 0
		c.Tax = 0
		c.Shipping = 0
		c.Total = 0
		return
	}
	c.Subtotal = 0
	for i := range c.Items {
		c.Items[i].LineTotal = Round2(c.Items[i].Price * float64(c.Items[i].Quantity))
		c.Subtotal += c.Items[i].LineTotal
	}
	c.Subtotal = Round2(c.Subtotal)
	c.Tax = pricing.Tax(c.Subtotal)
	c.Shipping = pricing.Shipping(c.Subtotal)
	c.Total = Round2(c.Subtotal + c.Tax + c.Shipping - c.Discount)
}

// Item returns the cart item for a product, or nil.
func (c *Cart) Item(productID int) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem drops a product from the cart. Returns false when the product
// was not in the cart.
func (c *Cart) RemoveItem(productID int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}
