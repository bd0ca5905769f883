package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/identity"
	"github.com/aretw0/cartsync/pkg/ports"
)

// Synchronizer keeps a local view of one remote checkout consistent with the
// backend and with the persisted checkout identity.
type Synchronizer struct {
	client    ports.CheckoutClient
	identity  *identity.Store
	navigator ports.Navigator

	mu       sync.RWMutex
	checkout domain.Checkout

	guard guard

	startOnce sync.Once
	ready     chan struct{}

	lockMode            domain.LockMode
	callTimeout         time.Duration
	reconcileOnMutation bool
	hooks               domain.LifecycleHooks
	logger              *slog.Logger
	now                 func() time.Time
}

// Option configures the Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Synchronizer) {
		s.hooks = hooks
	}
}

// WithLockMode selects the mutation guard. Defaults to domain.LockQueue.
func WithLockMode(mode domain.LockMode) Option {
	return func(s *Synchronizer) {
		s.lockMode = mode
	}
}

// WithCallTimeout bounds every remote call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.callTimeout = d
	}
}

// WithNavigator sets the checkout hand-off target.
func WithNavigator(nav ports.Navigator) Option {
	return func(s *Synchronizer) {
		s.navigator = nav
	}
}

// WithReconcileOnMutation makes mutations that find the placeholder run
// reconciliation first instead of failing with domain.ErrCheckoutUnset.
func WithReconcileOnMutation(enabled bool) Option {
	return func(s *Synchronizer) {
		s.reconcileOnMutation = enabled
	}
}

// WithClock overrides the event timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSynchronizer creates a synchronizer holding the placeholder checkout.
// Nothing touches the backend until Start or Reconcile is called.
func NewSynchronizer(client ports.CheckoutClient, ident *identity.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		client:   client,
		identity: ident,
		checkout: domain.NewPlaceholderCheckout(),
		ready:    make(chan struct{}),
		lockMode: domain.LockQueue,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.guard = newGuard(s.lockMode)
	if s.navigator == nil {
		s.navigator = logNavigator{logger: s.logger}
	}
	return s
}

// Client returns the backend client. It is fixed for the synchronizer's lifetime.
func (s *Synchronizer) Client() ports.CheckoutClient {
	return s.client
}

// LockMode reports the active guard mode.
func (s *Synchronizer) LockMode() domain.LockMode {
	return s.lockMode
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() domain.Snapshot {
	s.mu.RLock()
	c := s.checkout.Clone()
	s.mu.RUnlock()

	return domain.Snapshot{
		Checkout:         c,
		CheckoutEditable: s.guard.editable(),
	}
}

// TotalQuantity sums the line-item quantities of the current checkout.
func (s *Synchronizer) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkout.TotalQuantity()
}

func (s *Synchronizer) current() domain.Checkout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkout
}

// install replaces the checkout wholesale.
func (s *Synchronizer) install(c domain.Checkout) {
	c = c.Clone()
	s.mu.Lock()
	s.checkout = c
	s.mu.Unlock()
}

// callContext applies the configured per-call timeout.
func (s *Synchronizer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return context.WithCancel(ctx)
}

// logNavigator is the default hand-off: it only records the URL.
type logNavigator struct {
	logger *slog.Logger
}

func (n logNavigator) Open(ctx context.Context, url string) error {
	n.logger.Info("Checkout ready", "web_url", url)
	return nil
}
