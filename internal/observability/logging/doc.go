// Package logging provides structured logging utilities with context propagation.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func (h ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    logging.FromContext(r.Context()).Info("processing request")
//	}
package logging
