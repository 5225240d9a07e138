package models

// CartItem is a product line in a cart. Quantity is always >= 1; a line
// reaching quantity 0 is removed from the cart, never retained.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart holds the session's cart lines in insertion order, keyed by product ID
// (one line per product), plus the derived total.
type Cart struct {
	Items []CartItem `json:"items"`
	Total int        `json:"total"`
}

// RecalculateTotal recomputes the derived total from the current lines.
// Called after every mutation.
func (c *Cart) RecalculateTotal() {
	total := 0
	for _, item := range c.Items {
		total += item.Product.Price * item.Quantity
	}
	c.Total = total
}

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
