package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/observability"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal fired.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the CLI logger. Debug overrides the configured level.
func NewLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// DebugHooks logs every synchronizer event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutationStart: func(ctx context.Context, e *domain.MutationEvent) {
			logger.Debug("Mutation Start", "op", e.Op, "checkout_id", e.CheckoutID)
		},
		OnMutationEnd: func(ctx context.Context, e *domain.MutationEvent) {
			if e.Err != nil {
				logger.Debug("Mutation End (Error)", "op", e.Op, "err", e.Err)
			} else {
				logger.Debug("Mutation End (Success)", "op", e.Op, "duration", e.Duration)
			}
		},
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			logger.Debug("Reconcile", "outcome", e.Outcome, "checkout_id", e.CheckoutID)
		},
	}
}

// WithDebugHooks appends debug hooks to existing ones.
func WithDebugHooks(hooks domain.LifecycleHooks, logger *slog.Logger) domain.LifecycleHooks {
	return observability.Combine(hooks, DebugHooks(logger))
}

// IsInterrupted reports whether err only signals that the user stopped the program.
func IsInterrupted(err error) bool {
	return err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, io.EOF))
}
