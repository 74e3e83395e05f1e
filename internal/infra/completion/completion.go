// Package completion provides chat-completion clients for the reply relay.
//
// Each client implements Completer: a single synchronous request made of a
// system instruction and one user turn, returning the raw text of the first
// generated message. Clients never retry.
package completion

import (
	"context"
	"errors"
	"fmt"

	"reply-relay/internal/config"
	"reply-relay/internal/resilience/circuitbreaker"
)

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("completion service returned empty response")

// Completer sends one system instruction plus one user turn and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// New builds the Completer selected by cfg.Provider.
// When cfg.CircuitBreaker is set the client is wrapped in a Breaker.
func New(cfg config.CompletionConfig) (Completer, error) {
	var c Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c = NewOpenAI(cfg)
	case config.ProviderClaude:
		c = NewClaude(cfg)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}

	if cfg.CircuitBreaker {
		c = NewBreaker(c, circuitbreaker.New(circuitbreaker.CompletionAPIConfig(cfg.Provider)))
	}
	return c, nil
}
