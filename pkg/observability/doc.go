/*
Package observability turns scheduler lifecycle events into Prometheus
metrics and structured log lines.

Both are exposed as domain.LifecycleHooks, so they plug into
stepwise.WithLifecycleHooks and can be combined with LifecycleHooks.Merge.
*/
package observability
