package runtime

import (
	"context"
	"time"

	"github.com/aretw0/cartsync/pkg/domain"
)

// Start launches the startup reconciliation in the background. Only the first
// call has any effect. The first guard slot is reserved before Start returns,
// so in queue mode mutations issued afterwards wait for reconciliation.
func (s *Synchronizer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		t := s.guard.enqueue()
		go func() {
			defer close(s.ready)
			if err := t.wait(ctx); err != nil {
				s.emitReconcile(ctx, domain.OutcomeCanceled, "", time.Now(), err)
				return
			}
			defer t.release()
			s.reconcile(ctx)
		}()
	})
}

// Ready is closed once the startup reconciliation has run.
func (s *Synchronizer) Ready() <-chan struct{} {
	return s.ready
}

// Reconcile runs the reconciliation protocol under the guard. Failures are
// absorbed into the returned outcome and logged.
func (s *Synchronizer) Reconcile(ctx context.Context) domain.ReconcileOutcome {
	release, err := acquire(ctx, s.guard)
	if err != nil {
		s.emitReconcile(ctx, domain.OutcomeCanceled, "", time.Now(), err)
		return domain.OutcomeCanceled
	}
	defer release()
	return s.reconcile(ctx)
}

// reconcile must be called with the guard held.
func (s *Synchronizer) reconcile(ctx context.Context) domain.ReconcileOutcome {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		s.emitReconcile(ctx, domain.OutcomeCanceled, "", start, err)
		return domain.OutcomeCanceled
	}

	id, ok := s.identity.Read(ctx)
	if !ok {
		created, err := s.create(ctx)
		if err != nil {
			s.logger.Error("Failed to create checkout", "err", err)
			s.emitReconcile(ctx, domain.OutcomeCreateFailed, "", start, err)
			return domain.OutcomeCreateFailed
		}
		s.persist(ctx, created.ID)
		s.install(created)
		s.emitReconcile(ctx, domain.OutcomeCreated, created.ID, start, nil)
		return domain.OutcomeCreated
	}

	fetched, err := s.fetch(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			// The caller went away; the stored identity may still be good.
			s.emitReconcile(ctx, domain.OutcomeCanceled, id, start, err)
			return domain.OutcomeCanceled
		}
		s.logger.Warn("Stored checkout could not be fetched, clearing identity", "checkout_id", id, "err", err)
		if clearErr := s.identity.Clear(ctx); clearErr != nil {
			s.logger.Error("Failed to clear checkout identity", "err", clearErr)
		}
		s.install(domain.NewPlaceholderCheckout())
		s.emitReconcile(ctx, domain.OutcomeCleared, id, start, err)
		return domain.OutcomeCleared
	}

	if !fetched.IsCompleted() {
		s.install(fetched)
		s.emitReconcile(ctx, domain.OutcomeResumed, fetched.ID, start, nil)
		return domain.OutcomeResumed
	}

	s.logger.Info("Stored checkout is completed, creating a new one", "checkout_id", id)
	created, err := s.create(ctx)
	if err != nil {
		s.logger.Error("Failed to replace completed checkout, clearing identity", "checkout_id", id, "err", err)
		if clearErr := s.identity.Clear(ctx); clearErr != nil {
			s.logger.Error("Failed to clear checkout identity", "err", clearErr)
		}
		s.install(domain.NewPlaceholderCheckout())
		s.emitReconcile(ctx, domain.OutcomeCreateFailed, id, start, err)
		return domain.OutcomeCreateFailed
	}
	s.persist(ctx, created.ID)
	s.install(created)
	s.emitReconcile(ctx, domain.OutcomeReplaced, created.ID, start, nil)
	return domain.OutcomeReplaced
}

func (s *Synchronizer) create(ctx context.Context) (domain.Checkout, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	c, err := s.client.CreateCheckout(callCtx)
	if err != nil {
		return domain.Checkout{}, domain.NewRemoteError(domain.OpCreateCheckout, err)
	}
	return c, nil
}

func (s *Synchronizer) fetch(ctx context.Context, id string) (domain.Checkout, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	c, err := s.client.FetchCheckout(callCtx, id)
	if err != nil {
		return domain.Checkout{}, domain.NewRemoteError(domain.OpFetchCheckout, err)
	}
	return c, nil
}

// persist writes the identity. A failure degrades durability only; the
// checkout is still installed.
func (s *Synchronizer) persist(ctx context.Context, id string) {
	if err := s.identity.Write(ctx, id); err != nil {
		s.logger.Error("Failed to persist checkout identity", "checkout_id", id, "err", err)
	}
}

func (s *Synchronizer) emitReconcile(ctx context.Context, outcome domain.ReconcileOutcome, id string, start time.Time, err error) {
	s.logger.Debug("Reconciliation finished", "outcome", outcome, "checkout_id", id)
	if s.hooks.OnReconcile == nil {
		return
	}
	s.hooks.OnReconcile(ctx, &domain.ReconcileEvent{
		Timestamp:  s.now(),
		Outcome:    outcome,
		CheckoutID: id,
		Duration:   time.Since(start),
		Err:        err,
	})
}
