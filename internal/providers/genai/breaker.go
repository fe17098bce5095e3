package genai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"dekoassistant/internal/observability/metrics"
)

// BreakerSettings tunes the circuit breaker around model calls.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Zero uses 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Zero uses 30s.
	OpenTimeout time.Duration
}

func newBreaker[T any](name string, s BreakerSettings, logger zerolog.Logger, m *metrics.Metrics) *gobreaker.CircuitBreaker[T] {
	failures := s.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	timeout := s.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller giving up is not an upstream fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("genai: circuit breaker state changed")
			m.RecordBreakerState(name, to == gobreaker.StateOpen)
		},
	})
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
