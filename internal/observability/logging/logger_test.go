package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"reply-relay/internal/handler/http/requestid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_FromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	logger := NewLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("reply generated", slog.Int("length", 12))

	line := buf.String()
	require.True(t, gjson.Valid(line), "output is not JSON: %s", line)
	assert.Equal(t, "reply generated", gjson.Get(line, "msg").String())
	assert.Equal(t, int64(12), gjson.Get(line, "length").Int())
	assert.NotContains(t, line, "hidden")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, slog.LevelInfo)

	t.Run("with ID", func(t *testing.T) {
		buf.Reset()
		ctx := requestid.WithRequestID(context.Background(), "req-42")
		WithRequestID(ctx, base).Info("hello")
		assert.Equal(t, "req-42", gjson.Get(buf.String(), "request_id").String())
	})

	t.Run("without ID", func(t *testing.T) {
		assert.Same(t, base, WithRequestID(context.Background(), base))
	})
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	logger := New(&bytes.Buffer{}, slog.LevelInfo)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, slog.LevelInfo)

	handler := requestid.Middleware(Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
	})))

	req := httptest.NewRequest(http.MethodPost, "/process-html", nil)
	req.Header.Set(requestid.RequestIDHeader, "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "inside handler", gjson.Get(buf.String(), "msg").String())
	assert.Equal(t, "abc-123", gjson.Get(buf.String(), "request_id").String())
}
