package memory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogBackend(t *testing.T) *memory.Backend {
	t.Helper()
	return memory.NewBackend(
		memory.WithBaseURL("https://shop.example/"),
		memory.WithCatalog(memory.Catalog{
			"tee":  {ID: "tee", Title: "T-Shirt", Price: "12.50"},
			"mug":  {ID: "mug", Title: "Mug", Price: "8.00"},
			"sock": {ID: "sock", Title: "Socks", Price: "3.25"},
		}),
	)
}

func TestBackend_CreateAndFetch(t *testing.T) {
	b := newCatalogBackend(t)
	ctx := context.Background()

	created, err := b.CreateCheckout(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "0.00", created.TotalPrice)
	assert.Equal(t, "https://shop.example/checkouts/"+created.ID, created.WebURL)
	assert.Empty(t, created.LineItems)

	fetched, err := b.FetchCheckout(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	_, err = b.FetchCheckout(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}

func TestBackend_LineItemLifecycle(t *testing.T) {
	b := newCatalogBackend(t)
	ctx := context.Background()
	c, _ := b.CreateCheckout(ctx)

	c, err := b.AddLineItems(ctx, c.ID, []domain.LineItemInput{{VariantID: "tee", Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, c.LineItems, 1)
	assert.Equal(t, "T-Shirt", c.LineItems[0].Title)
	assert.Equal(t, "25.00", c.TotalPrice)

	// Same variant merges into the existing line.
	c, err = b.AddLineItems(ctx, c.ID, []domain.LineItemInput{{VariantID: "tee", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, c.LineItems, 1)
	assert.Equal(t, 3, c.LineItems[0].Quantity)

	c, err = b.AddLineItems(ctx, c.ID, []domain.LineItemInput{{VariantID: "sock", Quantity: 4}})
	require.NoError(t, err)
	assert.Equal(t, "50.50", c.TotalPrice)

	teeLine := c.LineItems[0].ID
	c, err = b.UpdateLineItems(ctx, c.ID, []domain.LineItemUpdate{{ID: teeLine, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "25.50", c.TotalPrice)

	c, err = b.RemoveLineItems(ctx, c.ID, []string{teeLine})
	require.NoError(t, err)
	require.Len(t, c.LineItems, 1)
	assert.Equal(t, "sock", c.LineItems[0].VariantID)
	assert.Equal(t, "13.00", c.TotalPrice)
}

func TestBackend_Rejections(t *testing.T) {
	b := newCatalogBackend(t)
	ctx := context.Background()
	c, _ := b.CreateCheckout(ctx)

	_, err := b.AddLineItems(ctx, c.ID, []domain.LineItemInput{{VariantID: "hat", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)

	_, err = b.UpdateLineItems(ctx, c.ID, []domain.LineItemUpdate{{ID: "nope", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrLineItemNotFound)

	_, err = b.RemoveLineItems(ctx, c.ID, []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrLineItemNotFound)

	_, err = b.AddLineItems(ctx, "missing", []domain.LineItemInput{{VariantID: "tee", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}

func TestBackend_CompletedCheckoutIsFrozen(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := memory.NewBackend(memory.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()
	c, _ := b.CreateCheckout(ctx)

	require.NoError(t, b.Complete(c.ID))

	fetched, err := b.FetchCheckout(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.CompletedAt)
	assert.True(t, fetched.CompletedAt.Equal(fixed))

	_, err = b.AddLineItems(ctx, c.ID, []domain.LineItemInput{{VariantID: "anything", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrCheckoutCompleted)

	assert.ErrorIs(t, b.Complete("missing"), domain.ErrCheckoutNotFound)
}

func TestBackend_FailNextAndForget(t *testing.T) {
	b := memory.NewBackend()
	ctx := context.Background()
	boom := errors.New("network down")

	b.FailNext(domain.OpCreateCheckout, boom)
	_, err := b.CreateCheckout(ctx)
	assert.ErrorIs(t, err, boom)

	// Failure is consumed by one call.
	c, err := b.CreateCheckout(ctx)
	require.NoError(t, err)

	b.Forget(c.ID)
	_, err = b.FetchCheckout(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}

func TestBackend_ReturnsCopies(t *testing.T) {
	b := memory.NewBackend()
	ctx := context.Background()
	c, _ := b.CreateCheckout(ctx)
	c, _ = b.AddLineItems(ctx, c.ID, []domain.LineItemInput{{VariantID: "v", Quantity: 1}})

	c.LineItems[0].Quantity = 50

	fetched, _ := b.FetchCheckout(ctx, c.ID)
	assert.Equal(t, 1, fetched.LineItems[0].Quantity)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
variants:
  - id: tee
    title: T-Shirt
    price: "12.50"
  - title: ignored without id
`), 0644))

	catalog, err := memory.LoadCatalog(yamlPath)
	require.NoError(t, err)
	assert.Len(t, catalog, 1)
	assert.Equal(t, "T-Shirt", catalog["tee"].Title)

	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"variants":[{"id":"mug","title":"Mug","price":"8"}]}`), 0644))
	catalog, err = memory.LoadCatalog(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "8", catalog["mug"].Price)

	missing, err := memory.LoadCatalog(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("variants:\n  - id: x\n    price: free\n"), 0644))
	_, err = memory.LoadCatalog(badPath)
	assert.Error(t, err)
}

func TestBackend_CatalogIsACopy(t *testing.T) {
	b := newCatalogBackend(t)

	c := b.Catalog()
	require.Len(t, c, 3)
	delete(c, "tee")

	assert.Len(t, b.Catalog(), 3)
}
