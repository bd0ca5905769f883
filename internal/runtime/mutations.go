package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/cartsync/pkg/domain"
)

// remoteCall is one backend mutation against the checkout with the given id.
type remoteCall func(ctx context.Context, checkoutID string) (domain.Checkout, error)

// AddVariantToCart adds quantity units of a variant to the checkout.
func (s *Synchronizer) AddVariantToCart(ctx context.Context, variantID string, quantity any) error {
	if variantID == "" {
		return domain.NewValidationError("variant", domain.ReasonVariantRequired)
	}
	q, err := domain.ParseQuantity(quantity)
	if err != nil {
		return err
	}
	items := []domain.LineItemInput{{VariantID: variantID, Quantity: q}}
	return s.mutate(ctx, domain.OpAddLineItems, func(ctx context.Context, id string) (domain.Checkout, error) {
		return s.client.AddLineItems(ctx, id, items)
	})
}

// UpdateLineItemQuantity sets the quantity of an existing line item.
func (s *Synchronizer) UpdateLineItemQuantity(ctx context.Context, lineItemID string, quantity any) error {
	if lineItemID == "" {
		return domain.NewValidationError("line_item", domain.ReasonLineItemRequired)
	}
	q, err := domain.ParseQuantity(quantity)
	if err != nil {
		return err
	}
	updates := []domain.LineItemUpdate{{ID: lineItemID, Quantity: q}}
	return s.mutate(ctx, domain.OpUpdateLineItems, func(ctx context.Context, id string) (domain.Checkout, error) {
		return s.client.UpdateLineItems(ctx, id, updates)
	})
}

// RemoveLineItem removes a line item from the checkout.
func (s *Synchronizer) RemoveLineItem(ctx context.Context, lineItemID string) error {
	if lineItemID == "" {
		return domain.NewValidationError("line_item", domain.ReasonLineItemRequired)
	}
	ids := []string{lineItemID}
	return s.mutate(ctx, domain.OpRemoveLineItems, func(ctx context.Context, id string) (domain.Checkout, error) {
		return s.client.RemoveLineItems(ctx, id, ids)
	})
}

// ProceedToCheckout hands the checkout web URL to the navigator.
func (s *Synchronizer) ProceedToCheckout(ctx context.Context) error {
	url := s.current().WebURL
	if url == "" {
		return domain.ErrNoCheckoutURL
	}
	if err := s.navigator.Open(ctx, url); err != nil {
		return fmt.Errorf("failed to open checkout: %w", err)
	}
	return nil
}

// mutate runs call under the guard: acquire, one remote call, release.
// The snapshot changes only when the call succeeds.
func (s *Synchronizer) mutate(ctx context.Context, op string, call remoteCall) error {
	release, err := acquire(ctx, s.guard)
	if err != nil {
		return err
	}
	defer release()

	current := s.current()
	if current.IsPlaceholder() {
		if !s.reconcileOnMutation {
			return domain.NewRemoteError(op, domain.ErrCheckoutUnset)
		}
		if outcome := s.reconcile(ctx); !outcome.Installed() {
			return domain.NewRemoteError(op, fmt.Errorf("%w: reconciliation %s", domain.ErrCheckoutUnset, outcome))
		}
		current = s.current()
	}

	event := &domain.MutationEvent{
		Timestamp:  s.now(),
		Op:         op,
		CheckoutID: current.ID,
	}
	if s.hooks.OnMutationStart != nil {
		s.hooks.OnMutationStart(ctx, event)
	}

	start := time.Now()
	callCtx, cancel := s.callContext(ctx)
	result, err := call(callCtx, current.ID)
	cancel()

	event.Duration = time.Since(start)
	if err != nil {
		err = domain.NewRemoteError(op, err)
		event.Err = err
		s.logger.Warn("Checkout mutation failed", "op", op, "checkout_id", current.ID, "err", err)
	} else {
		s.install(result)
		s.logger.Debug("Checkout mutation applied", "op", op, "checkout_id", result.ID, "duration", event.Duration)
	}

	if s.hooks.OnMutationEnd != nil {
		s.hooks.OnMutationEnd(ctx, event)
	}
	return err
}
