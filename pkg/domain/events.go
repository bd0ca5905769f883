package domain

import (
	"context"
	"time"
)

// Operation names used in events, errors and metrics.
const (
	OpCreateCheckout  = "create_checkout"
	OpFetchCheckout   = "fetch_checkout"
	OpAddLineItems    = "add_line_items"
	OpUpdateLineItems = "update_line_items"
	OpRemoveLineItems = "remove_line_items"
)

// ReconcileOutcome is the absorbed result of a reconciliation run.
type ReconcileOutcome string

const (
	OutcomeCreated      ReconcileOutcome = "created"       // No identity; new checkout created and persisted
	OutcomeResumed      ReconcileOutcome = "resumed"       // Stored identity fetched and still open
	OutcomeReplaced     ReconcileOutcome = "replaced"      // Stored checkout was completed; a new one replaced it
	OutcomeCleared      ReconcileOutcome = "cleared"       // Fetch failed; identity cleared, placeholder kept
	OutcomeCreateFailed ReconcileOutcome = "create_failed" // Create failed; placeholder kept, nothing persisted
	OutcomeCanceled     ReconcileOutcome = "canceled"      // Context ended before reconciliation could run
)

// Installed reports whether the outcome left a usable checkout in the snapshot.
func (o ReconcileOutcome) Installed() bool {
	return o == OutcomeCreated || o == OutcomeResumed || o == OutcomeReplaced
}

// MutationEvent describes one guarded remote call.
type MutationEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Op         string        `json:"op"`
	CheckoutID string        `json:"checkout_id"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        error         `json:"-"`
}

// ReconcileEvent describes one reconciliation run.
type ReconcileEvent struct {
	Timestamp  time.Time        `json:"timestamp"`
	Outcome    ReconcileOutcome `json:"outcome"`
	CheckoutID string           `json:"checkout_id,omitempty"`
	Duration   time.Duration    `json:"duration,omitempty"`
	Err        error            `json:"-"`
}

// LifecycleHooks defines callbacks for synchronizer observability.
type LifecycleHooks struct {
	OnMutationStart func(context.Context, *MutationEvent)
	OnMutationEnd   func(context.Context, *MutationEvent)
	OnReconcile     func(context.Context, *ReconcileEvent)
}
