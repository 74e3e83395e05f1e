package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"reply-relay/internal/handler/http/requestid"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLogging(t *testing.T) {
	logger, buf := newBufferLogger()

	h := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"HTML content is required"}`))
	})))

	req := httptest.NewRequest(http.MethodPost, "/process-html", strings.NewReader(`{}`))
	req.Header.Set(requestid.RequestIDHeader, "req-1")
	req.Header.Set("Origin", "chrome-extension://abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := buf.String()
	assert.Equal(t, "request completed", gjson.Get(entry, "msg").String())
	assert.Equal(t, "INFO", gjson.Get(entry, "level").String())
	assert.Equal(t, "req-1", gjson.Get(entry, "request_id").String())
	assert.Equal(t, "/process-html", gjson.Get(entry, "path").String())
	assert.Equal(t, int64(400), gjson.Get(entry, "status").Int())
	assert.Equal(t, int64(36), gjson.Get(entry, "bytes").Int())
	assert.Equal(t, "chrome-extension://abc", gjson.Get(entry, "origin").String())
}

func TestLogging_ServerErrorsLoggedAtErrorLevel(t *testing.T) {
	logger, buf := newBufferLogger()

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/process-html", nil))

	assert.Equal(t, "ERROR", gjson.Get(buf.String(), "level").String())
}

func TestRecover(t *testing.T) {
	logger, buf := newBufferLogger()

	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("normalizer exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process-html", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"normalizer exploded"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecover_AfterHeadersWritten(t *testing.T) {
	logger, _ := newBufferLogger()

	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process-html", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRecover_RepanicsAbortHandler(t *testing.T) {
	logger, _ := newBufferLogger()

	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLimitRequestBody(t *testing.T) {
	var readErr error
	h := LimitRequestBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/process-html", strings.NewReader(`{"html":"<p>too long</p>"}`)))

	var maxErr *http.MaxBytesError
	require.True(t, errors.As(readErr, &maxErr), "expected MaxBytesError, got %v", readErr)
	assert.Equal(t, int64(8), maxErr.Limit)
}
