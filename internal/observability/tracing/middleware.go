package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"reply-relay/internal/handler/http/responsewriter"
)

// Middleware opens a server span per request.
//
// It extracts W3C trace context from the inbound headers, names the span
// "<METHOD> <route>" where route maps the path to a bounded set of names,
// exposes the trace ID in the X-Trace-Id response header and records the
// status code. 5xx responses mark the span as an error.
func Middleware(route func(path string) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serve(route, next, w, r)
		})
	}
}

func serve(route func(string) string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	name := route(r.URL.Path)
	ctx, span := GetTracer().Start(ctx, r.Method+" "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", name),
			attribute.String("http.path", r.URL.Path),
		),
	)
	defer span.End()

	if sc := span.SpanContext(); sc.HasTraceID() {
		w.Header().Set("X-Trace-Id", sc.TraceID().String())
	}

	rw := responsewriter.Wrap(w)
	next.ServeHTTP(rw, r.WithContext(ctx))

	status := rw.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
