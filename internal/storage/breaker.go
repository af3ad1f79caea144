package storage

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/anonto42/foodreels/backend/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

var _ Provider = (*BreakerProvider)(nil)

// BreakerSettings configures the upload circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerSettings opens after 5 consecutive failures and lets a trial upload through after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker so a failing
// storage backend is rejected fast instead of holding request goroutines.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[string]
	name string
}

func NewBreakerProvider(next Provider, s BreakerSettings) *BreakerProvider {
	name := "storage-" + next.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		// A client hanging up is not the provider's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("storage circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerProvider{next: next, cb: cb, name: name}
}

func (b *BreakerProvider) Name() string { return b.next.Name() }

// State exposes the breaker state; /health reports it.
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerProvider) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()
	url, err := b.cb.Execute(func() (string, error) {
		return b.next.Upload(ctx, key, data, contentType)
	})
	metrics.StorageUploadDuration.WithLabelValues(b.next.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.StorageUploads.WithLabelValues(b.next.Name(), "rejected").Inc()
			return "", errors.Join(ErrUnavailable, err)
		}
		metrics.StorageUploads.WithLabelValues(b.next.Name(), "failure").Inc()
		return "", err
	}

	metrics.StorageUploads.WithLabelValues(b.next.Name(), "success").Inc()
	return url, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
