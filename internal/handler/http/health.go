// Package http provides the relay's HTTP middleware, health and metrics endpoints.
// The reply endpoint itself lives in the reply subpackage.
package http

import (
	"net/http"
	"time"

	"reply-relay/internal/handler/http/respond"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// BreakerState reports the state of the completion circuit breaker.
// completion.Breaker satisfies it.
type BreakerState interface {
	Name() string
	IsOpen() bool
}

// HealthHandler serves the liveness endpoint. The relay has no backing store,
// so it reports healthy while the process is serving; an open circuit breaker
// is reported as "degraded" with status 200.
type HealthHandler struct {
	Version  string
	Provider string
	Breaker  BreakerState

	now func() time.Time
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		respond.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	now := time.Now
	if h.now != nil {
		now = h.now
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Checks:    map[string]string{"provider": h.Provider},
	}

	if h.Breaker != nil {
		state := "closed"
		if h.Breaker.IsOpen() {
			state = "open"
			resp.Status = "degraded"
		}
		resp.Checks[h.Breaker.Name()] = state
	}

	respond.JSON(w, http.StatusOK, resp)
}
