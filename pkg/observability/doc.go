/*
Package observability wires build and cache events into Prometheus metrics and slog.

Metrics are registered against a caller-supplied prometheus.Registerer so that tests and
embedding applications can use private registries. BuildHooks returned by Metrics.Hooks and
LoggingHooks can be merged with Combine and handed to the engine.
*/
package observability
