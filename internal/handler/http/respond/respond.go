// Package respond provides utilities for sending HTTP responses in JSON format.
// Error bodies always have the shape {"error": "<message>"}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent, nothing left to report to the client
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": err.Error()} with the given status code.
// Use it for messages that are safe to show to callers as-is.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// InternalError logs err and writes a 500 response carrying its description.
// Credentials are masked in both the log entry and the response body.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	msg := SanitizeError(err)
	logger.Error("internal server error",
		slog.Int("code", http.StatusInternalServerError),
		slog.String("error", msg))
	JSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}
