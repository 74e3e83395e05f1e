package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "with request ID",
			ctx:      WithRequestID(context.Background(), "test-id-123"),
			expected: "test-id-123",
		},
		{
			name:     "without request ID",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "with invalid type in context",
			ctx:      context.WithValue(context.Background(), RequestIDKey, 12345),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromContext(tt.ctx))
		})
	}
}

func serve(t *testing.T, inbound string) (captured string, rec *httptest.ResponseRecorder) {
	t.Helper()
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/process-html", nil)
	if inbound != "" {
		req.Header.Set(RequestIDHeader, inbound)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return captured, rec
}

func TestMiddleware_ReusesInboundID(t *testing.T) {
	captured, rec := serve(t, "ext-7f3a-42")

	assert.Equal(t, "ext-7f3a-42", captured)
	assert.Equal(t, "ext-7f3a-42", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_GeneratesID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
	}{
		{name: "missing", inbound: ""},
		{name: "contains spaces", inbound: "id with spaces"},
		{name: "control characters", inbound: "id\x01x"},
		{name: "non-ASCII", inbound: "идентификатор"},
		{name: "too long", inbound: strings.Repeat("a", maxLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured, rec := serve(t, tt.inbound)

			_, err := uuid.Parse(captured)
			require.NoError(t, err, "expected a generated UUID, got %q", captured)
			assert.Equal(t, captured, rec.Header().Get(RequestIDHeader))
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	first, _ := serve(t, "")
	second, _ := serve(t, "")
	assert.NotEqual(t, first, second)
}
