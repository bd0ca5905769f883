package middleware

import (
	"context"

	"github.com/aretw0/cartsync/pkg/ports"
)

type namespaceMiddleware struct {
	next      ports.KeyValueStore
	namespace string
}

// NewNamespaceMiddleware scopes every key under namespace (e.g. the shop domain),
// so one medium can hold the identity records of several storefronts.
func NewNamespaceMiddleware(namespace string) Middleware {
	return func(next ports.KeyValueStore) ports.KeyValueStore {
		if namespace == "" {
			return next
		}
		return &namespaceMiddleware{next: next, namespace: namespace + "/"}
	}
}

func (m *namespaceMiddleware) Get(ctx context.Context, key string) (string, error) {
	return m.next.Get(ctx, m.namespace+key)
}

func (m *namespaceMiddleware) Set(ctx context.Context, key, value string) error {
	return m.next.Set(ctx, m.namespace+key, value)
}

func (m *namespaceMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, m.namespace+key)
}
