package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
)

// pendingCall is a backend response computed at issue time and held until
// the test releases it.
type pendingCall struct {
	Op      string
	Arg     string
	release chan error
}

// Resolve delivers the held response (nil) or fails the call (err).
func (p *pendingCall) Resolve(err error) {
	p.release <- err
}

// scriptedClient wraps the sandbox backend. It records every call in issue
// order and, when gated, holds each mutation response until the test resolves
// it. The backend applies calls in issue order; only delivery is delayed.
type scriptedClient struct {
	*memory.Backend

	gated  atomic.Bool
	issued chan *pendingCall

	mu    sync.Mutex
	calls []string
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		Backend: memory.NewBackend(),
		issued:  make(chan *pendingCall, 16),
	}
}

func (c *scriptedClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *scriptedClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *scriptedClient) record(op, arg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf("%s:%s", op, arg))
}

func (c *scriptedClient) deliver(ctx context.Context, op, arg string, result domain.Checkout, err error) (domain.Checkout, error) {
	if !c.gated.Load() {
		return result, err
	}
	p := &pendingCall{Op: op, Arg: arg, release: make(chan error, 1)}
	c.issued <- p
	select {
	case injected := <-p.release:
		if injected != nil {
			return domain.Checkout{}, injected
		}
		return result, err
	case <-ctx.Done():
		return domain.Checkout{}, ctx.Err()
	}
}

func (c *scriptedClient) CreateCheckout(ctx context.Context) (domain.Checkout, error) {
	c.record(domain.OpCreateCheckout, "")
	return c.Backend.CreateCheckout(ctx)
}

func (c *scriptedClient) FetchCheckout(ctx context.Context, id string) (domain.Checkout, error) {
	c.record(domain.OpFetchCheckout, id)
	return c.Backend.FetchCheckout(ctx, id)
}

func (c *scriptedClient) AddLineItems(ctx context.Context, id string, items []domain.LineItemInput) (domain.Checkout, error) {
	c.record(domain.OpAddLineItems, items[0].VariantID)
	res, err := c.Backend.AddLineItems(ctx, id, items)
	return c.deliver(ctx, domain.OpAddLineItems, items[0].VariantID, res, err)
}

func (c *scriptedClient) UpdateLineItems(ctx context.Context, id string, items []domain.LineItemUpdate) (domain.Checkout, error) {
	c.record(domain.OpUpdateLineItems, items[0].ID)
	res, err := c.Backend.UpdateLineItems(ctx, id, items)
	return c.deliver(ctx, domain.OpUpdateLineItems, items[0].ID, res, err)
}

func (c *scriptedClient) RemoveLineItems(ctx context.Context, id string, ids []string) (domain.Checkout, error) {
	c.record(domain.OpRemoveLineItems, ids[0])
	res, err := c.Backend.RemoveLineItems(ctx, id, ids)
	return c.deliver(ctx, domain.OpRemoveLineItems, ids[0], res, err)
}
