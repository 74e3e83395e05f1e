// Package reply orchestrates one relay request: normalize the HTML, ask the
// completion service for a reply and extract the message from its answer.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"reply-relay/internal/domain/entity"
	"reply-relay/internal/observability/logging"
	"reply-relay/internal/observability/tracing"
	"reply-relay/internal/utils/text"
)

const previewRunes = 120

// Normalizer converts an HTML fragment into plain text.
type Normalizer interface {
	Normalize(html string) string
}

// Completer sends a system prompt and user text to a language model and
// returns the raw completion text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Service composes a Normalizer and a Completer. It holds no per-request state
// and is safe for concurrent use when its collaborators are.
type Service struct {
	Normalizer Normalizer
	Completer  Completer

	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
}

// Generate validates the fragment, normalizes it and orchestrates a reply.
// It returns entity.ErrEmptyHTML for an empty fragment; every other failure
// comes from Orchestrate.
func (s Service) Generate(ctx context.Context, fragment entity.HTMLFragment) (entity.Reply, error) {
	if err := fragment.Validate(); err != nil {
		return entity.Reply{}, err
	}

	plain := s.Normalizer.Normalize(string(fragment))
	logging.FromContext(ctx).DebugContext(ctx, "html normalized",
		slog.Int("html_length", len(fragment)),
		slog.Int("text_length", text.CountRunes(plain)))

	return s.Orchestrate(ctx, plain)
}

// Orchestrate performs exactly one completion call for text and parses the
// answer. A missing "message" key is a successful, degraded result.
// Panics raised by collaborators are converted into errors.
func (s Service) Orchestrate(ctx context.Context, userText string) (reply entity.Reply, err error) {
	logger := logging.FromContext(ctx)

	ctx, span := tracing.StartSpan(ctx, "reply.orchestrate",
		attribute.Int("text_length", text.CountRunes(userText)))
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "panic during reply orchestration",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			reply, err = entity.Reply{}, fmt.Errorf("unexpected failure: %v", rec)
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Bool("reply.key_found", reply.KeyFound))
		span.End()
	}()

	raw, err := s.Completer.Complete(ctx, s.systemPrompt(), userText)
	if err != nil {
		return entity.Reply{}, err
	}

	reply, err = ParseReply(raw)
	if err != nil {
		logger.DebugContext(ctx, "unparseable completion",
			slog.String("completion_preview", text.Preview(raw, previewRunes)))
		return entity.Reply{}, err
	}
	if !reply.KeyFound {
		logger.WarnContext(ctx, "completion lacks message key",
			slog.Int("completion_length", text.CountRunes(raw)))
	}
	return reply, nil
}

// Respond is the string-only form of Orchestrate: failures are rendered with
// entity.ErrorMarker and never returned as errors.
func (s Service) Respond(ctx context.Context, userText string) string {
	return entity.Render(s.Orchestrate(ctx, userText))
}

func (s Service) systemPrompt() string {
	if s.SystemPrompt != "" {
		return s.SystemPrompt
	}
	return DefaultSystemPrompt
}
