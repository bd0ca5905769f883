package ports

import (
	"context"

	"github.com/aretw0/cartsync/pkg/domain"
)

// CartService is the handle UI adapters drive. It is implemented by cartsync.Cart.
type CartService interface {
	// Snapshot returns a read-only copy of the current state.
	Snapshot() domain.Snapshot

	// TotalQuantity sums line-item quantities without touching the backend.
	TotalQuantity() int

	AddVariantToCart(ctx context.Context, variantID string, quantity any) error
	UpdateLineItemQuantity(ctx context.Context, lineItemID string, quantity any) error
	RemoveLineItem(ctx context.Context, lineItemID string) error

	// ProceedToCheckout hands the checkout web URL to the navigator.
	ProceedToCheckout(ctx context.Context) error

	// Reconcile re-runs the startup reconciliation protocol.
	Reconcile(ctx context.Context) domain.ReconcileOutcome
}
