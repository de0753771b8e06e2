package memcache

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards exchanges on the connection. A breaker does
// not retry: it only fails fast once the connection has proven
// unhealthy, which keeps a dead server from stalling every caller for
// a full deadline.
type CircuitBreaker interface {
	Execute(op func() error) error
	State() gobreaker.State
}

// NewCircuitBreakerConfig returns a factory that creates circuit
// breakers, suitable for Config.NewCircuitBreaker.
// This is a helper for common use cases.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(addr string) CircuitBreaker {
	return func(addr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return &breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
	}
}

type breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func (b *breaker) Execute(op func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

func (b *breaker) State() gobreaker.State {
	return b.cb.State()
}
