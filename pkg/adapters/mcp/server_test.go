package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/cartsync"
	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend() *memory.Backend {
	return memory.NewBackend(memory.WithCatalog(memory.Catalog{
		"tee": {ID: "tee", Title: "T-Shirt", Price: "12.50"},
		"mug": {ID: "mug", Title: "Mug", Price: "8.00"},
	}))
}

func newTestServer(t *testing.T, backend *memory.Backend) *Server {
	t.Helper()
	cart, err := cartsync.New(backend, memory.NewStore())
	require.NoError(t, err)
	cart.Start(context.Background())
	<-cart.Ready()
	return NewServer(cart)
}

func TestServer_CartTools(t *testing.T) {
	s := newTestServer(t, newBackend())
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	cart, err := s.handleGetCart(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, cart.Status)

	cart, err = s.handleAddToCart(ctx, req, map[string]interface{}{"variant_id": "tee", "quantity": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, cart.TotalQuantity)

	cart, err = s.handleAddToCart(ctx, req, map[string]interface{}{"variant_id": "mug"})
	require.NoError(t, err, "quantity defaults to 1")
	assert.Equal(t, 3, cart.TotalQuantity)

	line := cart.Checkout.LineItems[0].ID
	cart, err = s.handleUpdateLineItem(ctx, req, map[string]interface{}{"line_item_id": line, "quantity": "5"})
	require.NoError(t, err)
	assert.Equal(t, 6, cart.TotalQuantity)

	cart, err = s.handleRemoveLineItem(ctx, req, map[string]interface{}{"line_item_id": line})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.TotalQuantity)

	out, err := s.handleProceedToCheckout(ctx, req, nil)
	require.NoError(t, err)
	assert.Contains(t, out.WebURL, "/checkouts/"+cart.Checkout.ID)
}

func TestServer_ToolErrors(t *testing.T) {
	s := newTestServer(t, newBackend())
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleAddToCart(ctx, req, map[string]interface{}{"variant_id": "tee", "quantity": float64(0)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.handleUpdateLineItem(ctx, req, map[string]interface{}{"quantity": float64(1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.handleRemoveLineItem(ctx, req, map[string]interface{}{"line_item_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrRemote)
}

func TestServer_ReconcileAndResource(t *testing.T) {
	backend := newBackend()
	backend.FailNext(domain.OpCreateCheckout, errors.New("offline"))
	s := newTestServer(t, backend)
	ctx := context.Background()

	_, err := s.handleProceedToCheckout(ctx, mcp.CallToolRequest{}, nil)
	assert.ErrorIs(t, err, domain.ErrNoCheckoutURL)

	res, err := s.handleReconcile(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, res.Outcome)
	assert.Equal(t, domain.StatusActive, res.Cart.Status)

	contents, err := s.readCheckout(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CheckoutURI, text.URI)

	var view CartResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &view))
	assert.Equal(t, res.Cart.Checkout.ID, view.Checkout.ID)
	assert.NotNil(t, s.MCPServer())
}
