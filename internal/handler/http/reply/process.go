// Package reply serves POST /process-html.
package reply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"reply-relay/internal/domain/entity"
	"reply-relay/internal/handler/http/respond"
	"reply-relay/internal/observability/logging"
)

// Generator produces a reply for an HTML fragment.
// The use-case reply.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, fragment entity.HTMLFragment) (entity.Reply, error)
}

// processRequest is the body of POST /process-html.
type processRequest struct {
	HTML any `json:"html"`
}

// processResponse is the success body of POST /process-html.
type processResponse struct {
	Response string `json:"response"`
}

// ProcessHandler turns an HTML fragment into a single reply string.
//
//	200 {"response": "<reply or marker-prefixed failure>"}
//	400 {"error": "HTML content is required"}   html missing, null or empty
//	413 {"error": "request body too large"}
//	500 {"error": "<description>"}               malformed body
type ProcessHandler struct {
	Svc Generator
}

func (h ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		respond.InternalError(w, logger, fmt.Errorf("invalid request body: %w", err))
		return
	}

	html, err := fragmentFrom(req.HTML)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	reply, err := h.Svc.Generate(ctx, html)
	if errors.Is(err, entity.ErrEmptyHTML) {
		respond.Error(w, http.StatusBadRequest, entity.ErrEmptyHTML)
		return
	}

	recordOutcome(reply, err)
	out := entity.Render(reply, err)
	if err != nil {
		logger.WarnContext(ctx, "reply generation failed",
			slog.String("error", respond.SanitizeError(err)))
		out = respond.SanitizeString(out)
	}

	respond.JSON(w, http.StatusOK, processResponse{Response: out})
}

// fragmentFrom accepts a JSON string; a missing or null field is reported as
// entity.ErrEmptyHTML, any other JSON type as a type error.
func fragmentFrom(v any) (entity.HTMLFragment, error) {
	switch html := v.(type) {
	case nil:
		return "", entity.ErrEmptyHTML
	case string:
		return entity.HTMLFragment(html), nil
	default:
		return "", fmt.Errorf("html must be a string, got %T", v)
	}
}
