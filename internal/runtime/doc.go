// Package runtime implements the checkout synchronizer: startup
// reconciliation of the persisted checkout identity against the backend, and
// guarded mutations that replace the local snapshot with each resolved remote
// result.
package runtime
