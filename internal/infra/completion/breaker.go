package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reply-relay/internal/resilience/circuitbreaker"
)

// Breaker wraps a Completer with a circuit breaker. While the circuit is
// open, calls fail immediately without reaching the remote service.
type Breaker struct {
	next Completer
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreaker wraps next with cb.
func NewBreaker(next Completer, cb *circuitbreaker.CircuitBreaker) *Breaker {
	return &Breaker{next: next, cb: cb}
}

// Complete forwards to the wrapped Completer through the circuit breaker.
func (b *Breaker) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	result, err := b.cb.Call(func() (string, error) {
		return b.next.Complete(ctx, systemPrompt, userText)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		slog.WarnContext(ctx, "completion circuit breaker open, request rejected",
			slog.String("service", b.cb.Name()),
			slog.String("state", b.cb.State().String()))
		return "", fmt.Errorf("%s unavailable: %w", b.cb.Name(), err)
	}
	return result, err
}

// Name returns the circuit breaker name, e.g. "openai-api".
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// IsOpen reports whether calls are currently being rejected.
func (b *Breaker) IsOpen() bool {
	return b.cb.IsOpen()
}
