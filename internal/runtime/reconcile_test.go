package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/cartsync/internal/runtime"
	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/identity"
	"github.com/aretw0/cartsync/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSynchronizer(t *testing.T, client ports.CheckoutClient, kv ports.KeyValueStore, opts ...runtime.Option) *runtime.Synchronizer {
	t.Helper()
	return runtime.NewSynchronizer(client, identity.New(kv), opts...)
}

func waitReady(t *testing.T, s *runtime.Synchronizer) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("startup reconciliation did not finish")
	}
}

func storedID(t *testing.T, kv ports.KeyValueStore) (string, bool) {
	t.Helper()
	id, err := kv.Get(context.Background(), domain.DefaultIdentityKey)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return id, true
}

// failingSetStore reads as empty and refuses writes.
type failingSetStore struct {
	*memory.Store
}

func (failingSetStore) Set(ctx context.Context, key, value string) error {
	return errors.New("read-only medium")
}

func TestReconcile_AbsentIdentityCreates(t *testing.T) {
	client := newScriptedClient()
	kv := memory.NewStore()

	var outcomes []domain.ReconcileOutcome
	s := newSynchronizer(t, client, kv, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			outcomes = append(outcomes, e.Outcome)
		},
	}))

	assert.True(t, s.Snapshot().Checkout.IsPlaceholder(), "placeholder before startup")

	s.Start(context.Background())
	waitReady(t, s)

	snap := s.Snapshot()
	id, ok := storedID(t, kv)
	require.True(t, ok)
	assert.Equal(t, snap.Checkout.ID, id)

	created, err := client.Backend.FetchCheckout(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, created, snap.Checkout)
	assert.Equal(t, domain.StatusActive, snap.Checkout.Status())
	assert.True(t, snap.CheckoutEditable)
	assert.Equal(t, []domain.ReconcileOutcome{domain.OutcomeCreated}, outcomes)
}

func TestReconcile_AbsentIdentityCreateFailure(t *testing.T) {
	client := newScriptedClient()
	client.FailNext(domain.OpCreateCheckout, errors.New("offline"))
	kv := memory.NewStore()
	s := newSynchronizer(t, client, kv)

	outcome := s.Reconcile(context.Background())

	assert.Equal(t, domain.OutcomeCreateFailed, outcome)
	assert.False(t, outcome.Installed())
	_, ok := storedID(t, kv)
	assert.False(t, ok, "nothing persisted on create failure")
	assert.True(t, s.Snapshot().Checkout.IsPlaceholder())
}

func TestReconcile_PresentIdentityResumes(t *testing.T) {
	client := newScriptedClient()
	ctx := context.Background()
	existing, err := client.Backend.CreateCheckout(ctx)
	require.NoError(t, err)

	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, domain.DefaultIdentityKey, existing.ID))
	s := newSynchronizer(t, client, kv)

	assert.Equal(t, domain.OutcomeResumed, s.Reconcile(ctx))
	assert.Equal(t, existing, s.Snapshot().Checkout)
	assert.Equal(t, []string{"fetch_checkout:" + existing.ID}, client.Calls())

	id, _ := storedID(t, kv)
	assert.Equal(t, existing.ID, id)
}

func TestReconcile_CompletedCheckoutIsReplaced(t *testing.T) {
	client := newScriptedClient()
	ctx := context.Background()
	old, err := client.Backend.CreateCheckout(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Complete(old.ID))

	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, domain.DefaultIdentityKey, old.ID))
	s := newSynchronizer(t, client, kv)

	assert.Equal(t, domain.OutcomeReplaced, s.Reconcile(ctx))

	id, ok := storedID(t, kv)
	require.True(t, ok)
	assert.NotEqual(t, old.ID, id, "new id overwrites the stored identity")
	assert.Equal(t, id, s.Snapshot().Checkout.ID)
	assert.False(t, s.Snapshot().Checkout.IsCompleted())
}

func TestReconcile_ReplaceCreateFailureClearsIdentity(t *testing.T) {
	client := newScriptedClient()
	ctx := context.Background()
	old, err := client.Backend.CreateCheckout(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Complete(old.ID))

	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, domain.DefaultIdentityKey, old.ID))
	s := newSynchronizer(t, client, kv)

	client.FailNext(domain.OpCreateCheckout, errors.New("offline"))
	assert.Equal(t, domain.OutcomeCreateFailed, s.Reconcile(ctx))

	_, ok := storedID(t, kv)
	assert.False(t, ok, "completed checkout id must be removed")
	assert.True(t, s.Snapshot().Checkout.IsPlaceholder())

	// With the slot empty, the next run takes the create path.
	assert.Equal(t, domain.OutcomeCreated, s.Reconcile(ctx))
	id, ok := storedID(t, kv)
	require.True(t, ok)
	assert.NotEqual(t, old.ID, id)
}

func TestReconcile_FetchFailureClearsWithoutCreating(t *testing.T) {
	client := newScriptedClient()
	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, domain.DefaultIdentityKey, "expired-id"))
	s := newSynchronizer(t, client, kv)

	s.Start(ctx)
	waitReady(t, s)

	_, ok := storedID(t, kv)
	assert.False(t, ok, "identity cleared")
	assert.True(t, s.Snapshot().Checkout.IsPlaceholder())
	assert.Equal(t, []string{"fetch_checkout:expired-id"}, client.Calls(), "no create on fetch failure")

	// Retry is explicit: the next run takes the absent path.
	assert.Equal(t, domain.OutcomeCreated, s.Reconcile(ctx))
}

func TestReconcile_StartRunsOnce(t *testing.T) {
	client := newScriptedClient()
	s := newSynchronizer(t, client, memory.NewStore())

	s.Start(context.Background())
	s.Start(context.Background())
	waitReady(t, s)
	s.Start(context.Background())

	assert.Equal(t, 1, client.CallCount())
}

func TestReconcile_CanceledContext(t *testing.T) {
	client := newScriptedClient()
	kv := memory.NewStore()
	s := newSynchronizer(t, client, kv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, domain.OutcomeCanceled, s.Reconcile(ctx))
	assert.Zero(t, client.CallCount())
}

func TestReconcile_IdentityWriteFailureStillInstalls(t *testing.T) {
	client := newScriptedClient()
	s := newSynchronizer(t, client, failingSetStore{memory.NewStore()})

	assert.Equal(t, domain.OutcomeCreated, s.Reconcile(context.Background()))
	assert.False(t, s.Snapshot().Checkout.IsPlaceholder())
}
