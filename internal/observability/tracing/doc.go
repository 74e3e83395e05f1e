// Package tracing provides OpenTelemetry tracing for the relay.
//
// Setup installs an SDK tracer provider and the W3C trace-context propagator.
// Middleware opens a server span per HTTP request and StartSpan opens child
// spans around internal work such as the completion call.
//
//	shutdown := tracing.Setup(true, "reply-relay", version)
//	defer shutdown(context.Background())
package tracing
