package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueGuard_FIFO(t *testing.T) {
	g := newGuard(domain.LockQueue)
	ctx := context.Background()

	first := g.enqueue()
	require.NoError(t, first.wait(ctx))
	assert.False(t, g.editable())

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	tickets := make([]ticket, 5)
	for i := range tickets {
		tickets[i] = g.enqueue()
	}
	for i, tk := range tickets {
		wg.Add(1)
		go func(i int, tk ticket) {
			defer wg.Done()
			if err := tk.wait(ctx); err != nil {
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			tk.release()
		}(i, tk)
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, order, "nobody passes while the first ticket is held")
	mu.Unlock()

	first.release()
	first.release() // idempotent
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.True(t, g.editable())
}

func TestQueueGuard_CanceledWaiterKeepsChain(t *testing.T) {
	g := newGuard(domain.LockQueue)

	holder, err := acquire(context.Background(), g)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	canceled := g.enqueue()
	cancel()
	assert.ErrorIs(t, canceled.wait(ctx), context.Canceled)

	next := g.enqueue()
	done := make(chan struct{})
	go func() {
		_ = next.wait(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("successor passed before the holder released")
	case <-time.After(20 * time.Millisecond):
	}

	holder()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("successor never admitted")
	}
	next.release()
	assert.Eventually(t, g.editable, time.Second, 5*time.Millisecond)
}

func TestFlagGuard_NeverBlocks(t *testing.T) {
	g := newGuard(domain.LockFlag)
	ctx := context.Background()

	a, err := acquire(ctx, g)
	require.NoError(t, err)
	b, err := acquire(ctx, g)
	require.NoError(t, err, "second acquire proceeds immediately")
	assert.False(t, g.editable())

	b()
	assert.True(t, g.editable(), "any release clears the flag")
	a()
	assert.True(t, g.editable())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = acquire(cctx, g)
	assert.ErrorIs(t, err, context.Canceled)
}
