package ports

import "context"

// Navigator hands a checkout web URL off to an external mechanism
// (browser, terminal, redirect).
type Navigator interface {
	Open(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, url string) error

// Open calls f(ctx, url).
func (f NavigatorFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}
