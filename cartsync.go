package cartsync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/internal/runtime"
	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/identity"
	"github.com/aretw0/cartsync/pkg/ports"
)

// Cart is the high-level entry point for the library.
// It wraps the internal synchronizer and exposes the snapshot plus the cart
// operations as a single handle.
type Cart struct {
	sync     *runtime.Synchronizer
	identity *identity.Store

	identityKey string
	runtimeOpts []runtime.Option
	logger      *slog.Logger
}

var _ ports.CartService = (*Cart)(nil)

// Option defines a functional option for configuring the Cart.
type Option func(*Cart)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cart) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Cart) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithLockMode selects how concurrent mutations are serialized (default: domain.LockQueue).
func WithLockMode(mode domain.LockMode) Option {
	return func(c *Cart) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithLockMode(mode))
	}
}

// WithCallTimeout bounds every remote call. The backend may still apply a
// mutation whose call timed out.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Cart) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithCallTimeout(d))
	}
}

// WithIdentityKey overrides the key the checkout id is persisted under
// (default: domain.DefaultIdentityKey).
func WithIdentityKey(key string) Option {
	return func(c *Cart) {
		c.identityKey = key
	}
}

// WithNavigator sets where ProceedToCheckout hands the checkout URL.
func WithNavigator(nav ports.Navigator) Option {
	return func(c *Cart) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithNavigator(nav))
	}
}

// WithReconcileOnMutation makes a mutation against the placeholder run
// reconciliation first instead of failing with domain.ErrCheckoutUnset.
func WithReconcileOnMutation(enabled bool) Option {
	return func(c *Cart) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithReconcileOnMutation(enabled))
	}
}

// New creates a Cart over the given backend client and identity medium.
// A nil store falls back to an in-memory one (the identity then lives only
// as long as the process). Call Start to run the startup reconciliation.
func New(client ports.CheckoutClient, store ports.KeyValueStore, opts ...Option) (*Cart, error) {
	if client == nil {
		return nil, errors.New("checkout client is required")
	}

	c := &Cart{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if store == nil {
		store = memory.NewStore()
	}

	c.identity = identity.New(store,
		identity.WithKey(c.identityKey),
		identity.WithLogger(c.logger),
	)

	runtimeOpts := append([]runtime.Option{runtime.WithLogger(c.logger)}, c.runtimeOpts...)
	c.sync = runtime.NewSynchronizer(client, c.identity, runtimeOpts...)
	return c, nil
}

// Start launches the startup reconciliation once, in the background.
func (c *Cart) Start(ctx context.Context) {
	c.sync.Start(ctx)
}

// Ready is closed when the startup reconciliation has run.
func (c *Cart) Ready() <-chan struct{} {
	return c.sync.Ready()
}

// Reconcile re-runs the reconciliation protocol and reports its outcome.
func (c *Cart) Reconcile(ctx context.Context) domain.ReconcileOutcome {
	return c.sync.Reconcile(ctx)
}

// Snapshot returns a read-only copy of the current state.
func (c *Cart) Snapshot() domain.Snapshot {
	return c.sync.Snapshot()
}

// Client returns the backend client the cart was built with.
func (c *Cart) Client() ports.CheckoutClient {
	return c.sync.Client()
}

// Identity returns the checkout identity store.
func (c *Cart) Identity() *identity.Store {
	return c.identity
}

// TotalQuantity sums line-item quantities. It never touches the backend.
func (c *Cart) TotalQuantity() int {
	return c.sync.TotalQuantity()
}

// AddVariantToCart adds quantity units of variantID. quantity accepts
// integers, floats (truncated) and numeric strings.
func (c *Cart) AddVariantToCart(ctx context.Context, variantID string, quantity any) error {
	return c.sync.AddVariantToCart(ctx, variantID, quantity)
}

// UpdateLineItemQuantity sets the quantity of a line item.
func (c *Cart) UpdateLineItemQuantity(ctx context.Context, lineItemID string, quantity any) error {
	return c.sync.UpdateLineItemQuantity(ctx, lineItemID, quantity)
}

// RemoveLineItem removes a line item.
func (c *Cart) RemoveLineItem(ctx context.Context, lineItemID string) error {
	return c.sync.RemoveLineItem(ctx, lineItemID)
}

// ProceedToCheckout hands the checkout web URL to the navigator.
func (c *Cart) ProceedToCheckout(ctx context.Context) error {
	return c.sync.ProceedToCheckout(ctx)
}
