/*
Package cartsync keeps a local shopping-cart view consistent with a remote
storefront checkout.

A Cart owns one snapshot of the active checkout. On Start it reconciles the
checkout id persisted in a key/value medium against the backend: an open
checkout is resumed, a completed one is replaced, an unknown one is forgotten.
Every mutation then goes through a guard that issues exactly one remote call
and replaces the snapshot wholesale with the backend's answer.

# Usage

	backend := memory.NewBackend()
	cart, err := cartsync.New(backend, file.New(".cartsync/storage.json"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	cart.Start(ctx)
	<-cart.Ready()

	if err := cart.AddVariantToCart(ctx, "variant-1", 2); err != nil {
		log.Fatal(err)
	}
	fmt.Println(cart.TotalQuantity())

# Concurrency

By default mutations are admitted one at a time in issue order
(domain.LockQueue). domain.LockFlag reproduces a single busy bit: it never
blocks, and when mutations overlap the one that resolves last decides the
snapshot.

# Persistence

The identity medium is any ports.KeyValueStore: memory, file, Redis and
DynamoDB adapters are provided under pkg/adapters, and
pkg/persistence/middleware adds encryption at rest and key namespacing.
*/
package cartsync
