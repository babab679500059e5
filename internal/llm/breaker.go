package llm

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker in front of a provider
type BreakerSettings struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerSettings trips after half of at least 5 calls fail transiently
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Enabled:          true,
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.5,
	}
}

// circuitBreaker wraps provider calls. A nil breaker runs calls directly.
type circuitBreaker struct {
	cb *gobreaker.CircuitBreaker[string]
}

func newCircuitBreaker(name string, s BreakerSettings, logger *zap.Logger) *circuitBreaker {
	if !s.Enabled {
		return nil
	}
	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("llm-%s", name),
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailureThreshold
		},
		// only transient failures count against the provider
		IsSuccessful: func(err error) bool {
			return err == nil || !isRetryableError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &circuitBreaker{cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *circuitBreaker) execute(fn func() (string, error)) (string, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// stats returns breaker state for diagnostics
func (b *circuitBreaker) stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}
