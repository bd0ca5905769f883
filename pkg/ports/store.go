package ports

import "context"

// KeyValueStore is a durable string key/value medium local to one client.
type KeyValueStore interface {
	// Get retrieves the value for key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
