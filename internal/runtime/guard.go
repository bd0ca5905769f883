package runtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aretw0/cartsync/pkg/domain"
)

// guard serializes access to the remote checkout.
//
// enqueue reserves a place synchronously; wait blocks until the place is
// reached. Splitting the two lets Start reserve the first slot before its
// goroutine runs, so mutations issued right after Start queue behind it.
type guard interface {
	enqueue() ticket
	editable() bool
}

type ticket interface {
	// wait blocks until the ticket holder may proceed. On error the ticket is
	// already given up and release must not be called.
	wait(ctx context.Context) error
	release()
}

func newGuard(mode domain.LockMode) guard {
	if mode == domain.LockFlag {
		return &flagGuard{}
	}
	return &queueGuard{}
}

// acquire is enqueue followed by wait.
func acquire(ctx context.Context, g guard) (func(), error) {
	t := g.enqueue()
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.release, nil
}

// queueGuard is a FIFO mutex built from a chain of channels. Each ticket
// waits for its predecessor's channel to close and closes its own on release.
type queueGuard struct {
	mu      sync.Mutex
	tail    chan struct{}
	pending atomic.Int64
}

type queueTicket struct {
	g    *queueGuard
	prev <-chan struct{}
	done chan struct{}
	once sync.Once
}

func (g *queueGuard) enqueue() ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := &queueTicket{g: g, prev: g.tail, done: make(chan struct{})}
	g.tail = t.done
	g.pending.Add(1)
	return t
}

func (g *queueGuard) editable() bool {
	return g.pending.Load() == 0
}

func (t *queueTicket) wait(ctx context.Context) error {
	if t.prev == nil {
		return nil
	}
	select {
	case <-t.prev:
		return nil
	default:
	}
	select {
	case <-t.prev:
		return nil
	case <-ctx.Done():
		// Keep the chain intact: successors are linked to our channel, so it
		// must close only after the predecessor's does.
		go func() {
			<-t.prev
			t.release()
		}()
		return ctx.Err()
	}
}

func (t *queueTicket) release() {
	t.once.Do(func() {
		t.g.pending.Add(-1)
		close(t.done)
	})
}

// flagGuard is a single busy bit. Any release clears it, even while other
// holders are still in flight.
type flagGuard struct {
	busy atomic.Bool
}

type flagTicket struct {
	g *flagGuard
}

func (g *flagGuard) enqueue() ticket {
	return flagTicket{g: g}
}

func (g *flagGuard) editable() bool {
	return !g.busy.Load()
}

func (t flagTicket) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.g.busy.Store(true)
	return nil
}

func (t flagTicket) release() {
	t.g.busy.Store(false)
}
