// Package circuitbreaker short-circuits calls to a failing completion service.
// It is a thin layer over github.com/sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// ErrOpen is returned by Call when the circuit rejects a request, either
// because it is open or because the half-open trial quota is used up.
var ErrOpen = errors.New("circuit breaker open")

var stateGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the breaker in logs, metrics and health output
	Name string

	// MaxRequests is the number of trial calls allowed while half-open
	MaxRequests uint32

	// Interval clears the closed-state counts; zero never clears them
	Interval time.Duration

	// Timeout is how long the circuit stays open before admitting trial calls
	Timeout time.Duration

	// FailureThreshold trips the circuit at this failure ratio, e.g. 0.6
	FailureThreshold float64

	// MinRequests is the sample size required before the ratio is considered
	MinRequests uint32
}

// DefaultConfig returns a default configuration for circuit breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// CompletionAPIConfig returns configuration for a language-model completion provider.
// The breaker is named "<provider>-api", e.g. "openai-api".
func CompletionAPIConfig(provider string) Config {
	cfg := DefaultConfig(provider + "-api")
	cfg.Timeout = 30 * time.Second
	return cfg
}

// CircuitBreaker guards calls that return a completion string.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a circuit breaker and publishes its state as closed.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			stateGauge.WithLabelValues(name).Set(stateValue(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	stateGauge.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Call runs fn through the breaker. Rejected calls return ErrOpen without
// invoking fn.
func (cb *CircuitBreaker) Call(fn func() (string, error)) (string, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrOpen
		}
		return "", err
	}
	s, _ := result.(string)
	return s, nil
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// isSuccessful does not count caller cancellation as a failure.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
