package domain

import "time"

// CheckoutStatus describes the lifecycle of a checkout as observed locally.
type CheckoutStatus string

const (
	StatusUninitialized CheckoutStatus = "uninitialized" // Placeholder, no remote identity yet
	StatusActive        CheckoutStatus = "active"        // Usable for line-item mutations
	StatusStale         CheckoutStatus = "stale"         // Completed remotely, must be replaced
)

// Checkout is the remote cart-in-progress.
type Checkout struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	LineItems   []LineItem `json:"line_items" yaml:"line_items"`
	TotalPrice  string     `json:"total_price" yaml:"total_price"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	WebURL      string     `json:"web_url,omitempty" yaml:"web_url,omitempty"`
}

// LineItem is one entry of a Checkout. ID is assigned by the remote side.
type LineItem struct {
	ID        string `json:"id" yaml:"id"`
	VariantID string `json:"variant_id" yaml:"variant_id"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
	Price     string `json:"price,omitempty" yaml:"price,omitempty"`
}

// LineItemInput is the payload of an add-line-items call.
type LineItemInput struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// LineItemUpdate is the payload of an update-line-items call.
type LineItemUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// NewPlaceholderCheckout returns the empty checkout installed before reconciliation.
func NewPlaceholderCheckout() Checkout {
	return Checkout{
		LineItems:  []LineItem{},
		TotalPrice: "0",
	}
}

// IsPlaceholder reports whether the checkout has no remote identity.
func (c Checkout) IsPlaceholder() bool {
	return c.ID == ""
}

// IsCompleted reports whether the checkout was finalized remotely.
func (c Checkout) IsCompleted() bool {
	return c.CompletedAt != nil
}

// Status derives the lifecycle state of the checkout.
func (c Checkout) Status() CheckoutStatus {
	switch {
	case c.IsPlaceholder():
		return StatusUninitialized
	case c.IsCompleted():
		return StatusStale
	default:
		return StatusActive
	}
}

// TotalQuantity sums the quantity of every line item.
func (c Checkout) TotalQuantity() int {
	total := 0
	for _, item := range c.LineItems {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy so callers can't mutate shared state by reference.
func (c Checkout) Clone() Checkout {
	out := c
	if c.LineItems != nil {
		out.LineItems = make([]LineItem, len(c.LineItems))
		copy(out.LineItems, c.LineItems)
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
