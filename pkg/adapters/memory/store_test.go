package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunKeyValueStoreContract(t, store)
}

func TestMemoryStore_Keys(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_ = store.Set(ctx, "a", "1")
	_ = store.Set(ctx, "b", "2")

	keys, err := store.Keys(ctx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}
