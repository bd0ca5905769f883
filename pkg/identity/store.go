// Package identity persists the remote identifier of the active checkout.
//
// It is a single-slot view over a ports.KeyValueStore: one well-known key
// points at the last-known checkout id. Only the synchronizer's reconciliation
// and successful-resolution paths write to it.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/ports"
)

// Store is the checkout identity store.
type Store struct {
	kv     ports.KeyValueStore
	key    string
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithKey overrides the identity key (default domain.DefaultIdentityKey).
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger configures a logger for medium failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an identity store over kv.
func New(kv ports.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    domain.DefaultIdentityKey,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the identity key in use.
func (s *Store) Key() string {
	return s.key
}

// Read returns the persisted checkout id. A missing record, an empty value,
// or an unreadable medium all read as absent.
func (s *Store) Read(ctx context.Context) (string, bool) {
	id, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn("Identity medium unreadable, treating as absent", "key", s.key, "err", err)
		}
		return "", false
	}
	if id == "" {
		return "", false
	}
	return id, true
}

// Write overwrites the slot.
func (s *Store) Write(ctx context.Context, checkoutID string) error {
	if checkoutID == "" {
		return fmt.Errorf("checkout id cannot be empty")
	}
	if err := s.kv.Set(ctx, s.key, checkoutID); err != nil {
		return fmt.Errorf("failed to persist checkout identity: %w", err)
	}
	return nil
}

// Clear removes the slot. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear checkout identity: %w", err)
	}
	return nil
}
