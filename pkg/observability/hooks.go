package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cartsync/pkg/domain"
)

// LoggingHooks logs every lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutationStart: func(ctx context.Context, e *domain.MutationEvent) {
			logger.DebugContext(ctx, "mutation_start", "op", e.Op, "checkout_id", e.CheckoutID)
		},
		OnMutationEnd: func(ctx context.Context, e *domain.MutationEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "mutation_end", "op", e.Op, "checkout_id", e.CheckoutID, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "mutation_end", "op", e.Op, "checkout_id", e.CheckoutID, "duration", e.Duration)
		},
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			attrs := []any{"outcome", e.Outcome, "checkout_id", e.CheckoutID, "duration", e.Duration}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.InfoContext(ctx, "reconcile", attrs...)
		},
	}
}

// Combine fans each event out to every non-nil callback, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		if h.OnMutationStart != nil {
			prev := out.OnMutationStart
			out.OnMutationStart = func(ctx context.Context, e *domain.MutationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnMutationStart(ctx, e)
			}
		}
		if h.OnMutationEnd != nil {
			prev := out.OnMutationEnd
			out.OnMutationEnd = func(ctx context.Context, e *domain.MutationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnMutationEnd(ctx, e)
			}
		}
		if h.OnReconcile != nil {
			prev := out.OnReconcile
			out.OnReconcile = func(ctx context.Context, e *domain.ReconcileEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnReconcile(ctx, e)
			}
		}
	}
	return out
}
