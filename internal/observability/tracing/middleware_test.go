package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// installRecorder swaps the global provider for one backed by a span recorder.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

func knownRoutes(path string) string {
	if path == "/process-html" {
		return path
	}
	return "other"
}

func attr(span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestMiddleware_CreatesServerSpan(t *testing.T) {
	recorder := installRecorder(t)

	var inner trace.SpanContext
	handler := Middleware(knownRoutes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = trace.SpanContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process-html", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "POST /process-html", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, int64(http.StatusOK), attr(span, "http.status_code").AsInt64())
	assert.Equal(t, "POST", attr(span, "http.method").AsString())
	assert.Equal(t, span.SpanContext().TraceID(), inner.TraceID())
	assert.Equal(t, span.SpanContext().TraceID().String(), rec.Header().Get("X-Trace-Id"))
}

func TestMiddleware_UnknownPathsShareOneSpanName(t *testing.T) {
	recorder := installRecorder(t)
	handler := Middleware(knownRoutes)(http.NotFoundHandler())

	for _, path := range []string{"/wp-admin", "/.env", "/admin/login.php"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	for _, span := range spans {
		assert.Equal(t, "GET other", span.Name())
		assert.Equal(t, "other", attr(span, "http.route").AsString())
	}
	assert.Equal(t, "/.env", attr(spans[1], "http.path").AsString())
}

func TestMiddleware_PropagatesInboundTraceContext(t *testing.T) {
	recorder := installRecorder(t)

	handler := Middleware(knownRoutes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/process-html", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestMiddleware_MarksServerErrors(t *testing.T) {
	tests := []struct {
		status    int
		wantError bool
	}{
		{status: http.StatusOK, wantError: false},
		{status: http.StatusBadRequest, wantError: false},
		{status: http.StatusInternalServerError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			recorder := installRecorder(t)
			handler := Middleware(knownRoutes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/process-html", nil))

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantError, spans[0].Status().Code == codes.Error)
		})
	}
}

func TestStartSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, parent := GetTracer().Start(context.Background(), "parent")
	_, child := StartSpan(ctx, "reply.orchestrate", attribute.String("provider", "openai"))
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "reply.orchestrate", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, "openai", attr(spans[0], "provider").AsString())
}

func TestSetup(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	t.Run("enabled", func(t *testing.T) {
		shutdown := Setup(true, "reply-relay", "test")
		_, span := GetTracer().Start(context.Background(), "setup-check")
		assert.True(t, span.SpanContext().IsValid())
		span.End()
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("disabled", func(t *testing.T) {
		otel.SetTracerProvider(prevTP)
		shutdown := Setup(false, "reply-relay", "test")
		assert.NoError(t, shutdown(context.Background()))
		assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	})
}
