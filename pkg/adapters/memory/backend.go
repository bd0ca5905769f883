package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/google/uuid"
)

// Backend implements ports.CheckoutClient in memory.
// It behaves like a storefront checkout API: completed checkouts reject
// mutations, unknown ids fail, and adding an existing variant merges quantities.
// Safe for concurrent use.
type Backend struct {
	mu        sync.Mutex
	checkouts map[string]*domain.Checkout
	catalog   Catalog
	baseURL   string
	now       func() time.Time
	failures  map[string]error
}

// BackendOption configures the Backend.
type BackendOption func(*Backend)

// WithCatalog restricts the backend to the given variants and prices.
func WithCatalog(c Catalog) BackendOption {
	return func(b *Backend) {
		b.catalog = c
	}
}

// WithBaseURL sets the storefront URL used to build checkout web URLs.
func WithBaseURL(url string) BackendOption {
	return func(b *Backend) {
		b.baseURL = strings.TrimRight(url, "/")
	}
}

// WithClock overrides the time source used for CompletedAt.
func WithClock(now func() time.Time) BackendOption {
	return func(b *Backend) {
		b.now = now
	}
}

// NewBackend creates an empty sandbox backend.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		checkouts: make(map[string]*domain.Checkout),
		catalog:   Catalog{},
		baseURL:   "https://sandbox.cartsync.local",
		now:       time.Now,
		failures:  make(map[string]error),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Catalog returns a copy of the configured variants.
func (b *Backend) Catalog() Catalog {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(Catalog, len(b.catalog))
	for id, v := range b.catalog {
		out[id] = v
	}
	return out
}

// FailNext makes the next call of op (a domain.Op* name) fail with err.
func (b *Backend) FailNext(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = err
}

// Complete finalizes a checkout, as a successful payment would.
func (b *Backend) Complete(checkoutID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.checkouts[checkoutID]
	if !ok {
		return domain.ErrCheckoutNotFound
	}
	now := b.now()
	c.CompletedAt = &now
	return nil
}

// Forget drops a checkout, simulating remote expiry.
func (b *Backend) Forget(checkoutID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.checkouts, checkoutID)
}

// CreateCheckout creates a new empty checkout.
func (b *Backend) CreateCheckout(ctx context.Context) (domain.Checkout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.injected(domain.OpCreateCheckout); err != nil {
		return domain.Checkout{}, err
	}

	id := uuid.NewString()
	c := &domain.Checkout{
		ID:         id,
		LineItems:  []domain.LineItem{},
		TotalPrice: formatCents(0),
		WebURL:     b.baseURL + "/checkouts/" + id,
	}
	b.checkouts[id] = c
	return c.Clone(), nil
}

// FetchCheckout retrieves a checkout by ID.
func (b *Backend) FetchCheckout(ctx context.Context, checkoutID string) (domain.Checkout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.injected(domain.OpFetchCheckout); err != nil {
		return domain.Checkout{}, err
	}

	c, ok := b.checkouts[checkoutID]
	if !ok {
		return domain.Checkout{}, fmt.Errorf("%w: %s", domain.ErrCheckoutNotFound, checkoutID)
	}
	return c.Clone(), nil
}

// AddLineItems appends line items, merging quantities of existing variants.
func (b *Backend) AddLineItems(ctx context.Context, checkoutID string, items []domain.LineItemInput) (domain.Checkout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.mutable(domain.OpAddLineItems, checkoutID)
	if err != nil {
		return domain.Checkout{}, err
	}

	// Validate everything first so the call stays atomic.
	for _, in := range items {
		if _, err := b.variant(in.VariantID); err != nil {
			return domain.Checkout{}, err
		}
		if in.Quantity < 1 {
			return domain.Checkout{}, fmt.Errorf("invalid quantity %d for variant %s", in.Quantity, in.VariantID)
		}
	}

	for _, in := range items {
		v, _ := b.variant(in.VariantID)
		merged := false
		for i := range c.LineItems {
			if c.LineItems[i].VariantID == in.VariantID {
				c.LineItems[i].Quantity += in.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.LineItems = append(c.LineItems, domain.LineItem{
				ID:        uuid.NewString(),
				VariantID: v.ID,
				Title:     v.Title,
				Quantity:  in.Quantity,
				Price:     v.Price,
			})
		}
	}

	b.recalculate(c)
	return c.Clone(), nil
}

// UpdateLineItems sets quantities. A quantity of zero removes the line item.
func (b *Backend) UpdateLineItems(ctx context.Context, checkoutID string, items []domain.LineItemUpdate) (domain.Checkout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.mutable(domain.OpUpdateLineItems, checkoutID)
	if err != nil {
		return domain.Checkout{}, err
	}

	for _, up := range items {
		if indexOf(c.LineItems, up.ID) < 0 {
			return domain.Checkout{}, fmt.Errorf("%w: %s", domain.ErrLineItemNotFound, up.ID)
		}
	}

	for _, up := range items {
		i := indexOf(c.LineItems, up.ID)
		if up.Quantity <= 0 {
			c.LineItems = append(c.LineItems[:i], c.LineItems[i+1:]...)
			continue
		}
		c.LineItems[i].Quantity = up.Quantity
	}

	b.recalculate(c)
	return c.Clone(), nil
}

// RemoveLineItems deletes line items by ID.
func (b *Backend) RemoveLineItems(ctx context.Context, checkoutID string, lineItemIDs []string) (domain.Checkout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.mutable(domain.OpRemoveLineItems, checkoutID)
	if err != nil {
		return domain.Checkout{}, err
	}

	for _, id := range lineItemIDs {
		if indexOf(c.LineItems, id) < 0 {
			return domain.Checkout{}, fmt.Errorf("%w: %s", domain.ErrLineItemNotFound, id)
		}
	}

	for _, id := range lineItemIDs {
		i := indexOf(c.LineItems, id)
		c.LineItems = append(c.LineItems[:i], c.LineItems[i+1:]...)
	}

	b.recalculate(c)
	return c.Clone(), nil
}

// injected pops a pending failure for op. Caller must hold b.mu.
func (b *Backend) injected(op string) error {
	if err, ok := b.failures[op]; ok {
		delete(b.failures, op)
		return err
	}
	return nil
}

// mutable resolves a checkout that may still be changed. Caller must hold b.mu.
func (b *Backend) mutable(op, checkoutID string) (*domain.Checkout, error) {
	if err := b.injected(op); err != nil {
		return nil, err
	}
	c, ok := b.checkouts[checkoutID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCheckoutNotFound, checkoutID)
	}
	if c.CompletedAt != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCheckoutCompleted, checkoutID)
	}
	return c, nil
}

func (b *Backend) variant(id string) (Variant, error) {
	if len(b.catalog) == 0 {
		return Variant{ID: id, Title: id, Price: formatCents(0)}, nil
	}
	v, ok := b.catalog[id]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, id)
	}
	return v, nil
}

func (b *Backend) recalculate(c *domain.Checkout) {
	var total int64
	for _, item := range c.LineItems {
		cents, _ := parseCents(item.Price)
		total += cents * int64(item.Quantity)
	}
	c.TotalPrice = formatCents(total)
}

func indexOf(items []domain.LineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
