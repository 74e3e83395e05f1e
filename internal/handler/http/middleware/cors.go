// Package middleware provides the cross-origin policy for the relay's HTTP API.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"reply-relay/internal/handler/http/respond"
)

// ErrOriginNotAllowed is the body of a 403 sent for a disallowed Origin.
var ErrOriginNotAllowed = errors.New("origin not allowed")

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedMethods lists methods advertised in preflight responses.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string

	// AllowedHeaders lists request headers advertised in preflight responses.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials on allowed responses.
	// Default: false
	AllowCredentials bool

	// MaxAge is how long (seconds) browsers may cache a preflight result.
	// Default: 600
	MaxAge int

	// Validator decides whether an Origin is permitted.
	Validator OriginValidator

	// Logger receives policy violations and preflight traces. Nil disables logging.
	Logger *slog.Logger
}

// CORS returns middleware enforcing the origin allow-list.
//
// Behavior:
//   - No Origin header: not a cross-origin browser request, passed through untouched.
//   - Origin not allowed: 403 {"error": "origin not allowed"}; next is never called.
//   - Allowed preflight (OPTIONS): CORS headers plus 204; next is not called.
//   - Allowed actual request: Access-Control-Allow-Origin echoed, then next.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			if config.Validator == nil || !config.Validator.IsAllowed(origin) {
				if config.Logger != nil {
					config.Logger.WarnContext(r.Context(), "CORS: origin not allowed",
						slog.String("origin", origin),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("remote_addr", r.RemoteAddr))
				}
				respond.Error(w, http.StatusForbidden, ErrOriginNotAllowed)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)

				if config.Logger != nil {
					config.Logger.DebugContext(r.Context(), "CORS: preflight request",
						slog.String("origin", origin),
						slog.String("requested_method", r.Header.Get("Access-Control-Request-Method")),
						slog.String("requested_headers", r.Header.Get("Access-Control-Request-Headers")))
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
