/*
Package observability turns synchronizer lifecycle events into Prometheus
metrics and structured log lines.

Both are plain domain.LifecycleHooks values, so they can be combined and
handed to cartsync.WithLifecycleHooks.
*/
package observability
