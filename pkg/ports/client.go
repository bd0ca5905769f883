package ports

import (
	"context"

	"github.com/aretw0/cartsync/pkg/domain"
)

// CheckoutClient is the remote checkout backend. Each call is assumed to be
// atomic on the remote side and returns the full checkout after the change.
type CheckoutClient interface {
	// CreateCheckout creates a new empty checkout.
	CreateCheckout(ctx context.Context) (domain.Checkout, error)

	// FetchCheckout retrieves a checkout by ID.
	// Returns domain.ErrCheckoutNotFound if the ID is unknown or expired.
	FetchCheckout(ctx context.Context, checkoutID string) (domain.Checkout, error)

	// AddLineItems appends line items to the checkout.
	AddLineItems(ctx context.Context, checkoutID string, items []domain.LineItemInput) (domain.Checkout, error)

	// UpdateLineItems changes quantities of existing line items.
	UpdateLineItems(ctx context.Context, checkoutID string, items []domain.LineItemUpdate) (domain.Checkout, error)

	// RemoveLineItems deletes line items by ID.
	RemoveLineItems(ctx context.Context, checkoutID string, lineItemIDs []string) (domain.Checkout, error)
}
