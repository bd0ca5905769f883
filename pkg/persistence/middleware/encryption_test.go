package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/persistence/middleware"
	"github.com/aretw0/cartsync/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunKeyValueStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlyingStore)

	ctx := context.Background()
	checkoutID := "gid://shopify/Checkout/secret"

	// 1. Set
	if err := secureStore.Set(ctx, domain.DefaultIdentityKey, checkoutID); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// 2. Underlying value must be opaque
	stored, err := underlyingStore.Get(ctx, domain.DefaultIdentityKey)
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if strings.Contains(stored, "secret") {
		t.Fatalf("Expected value to be hidden, found: %v", stored)
	}
	if !strings.HasPrefix(stored, "enc:v1:") {
		t.Fatalf("Expected envelope prefix, got %q", stored)
	}

	// 3. Get via middleware
	got, err := secureStore.Get(ctx, domain.DefaultIdentityKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != checkoutID {
		t.Errorf("Expected %q, got %q", checkoutID, got)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := oldStore.Set(ctx, "k", "checkout-1"); err != nil {
		t.Fatal(err)
	}

	// New key only: must fail.
	strict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlyingStore)
	if _, err := strict.Get(ctx, "k"); err == nil {
		t.Fatal("Expected decryption failure without fallback key")
	}

	// New key with fallback: must succeed.
	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)
	got, err := rotated.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get with fallback failed: %v", err)
	}
	if got != "checkout-1" {
		t.Errorf("Expected checkout-1, got %q", got)
	}
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	_ = underlyingStore.Set(ctx, "k", "plain-checkout-id")

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Get(ctx, "k"); err != middleware.ErrNotEncrypted {
		t.Errorf("Expected ErrNotEncrypted, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for short key")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
}

func TestEncryptionMiddleware_BindsValueToKey(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)

	if err := secureStore.Set(ctx, "shop_a", "checkout-a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	raw, _ := underlyingStore.Get(ctx, "shop_a")
	_ = underlyingStore.Set(ctx, "shop_b", raw)

	if _, err := secureStore.Get(ctx, "shop_b"); err == nil {
		t.Error("Expected a value copied under another key to fail decryption")
	}
}
