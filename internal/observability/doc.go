// Package observability groups the relay's logging and tracing helpers.
//
// Subpackages:
//   - logging: slog JSON logger construction and request-scoped loggers
//   - tracing: OpenTelemetry tracer provider setup and HTTP server spans
//
// Prometheus metrics live next to the code they measure
// (internal/handler/http and internal/infra/completion).
package observability
