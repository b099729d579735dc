package dynamodb

import (
	"context"
	"errors"
	"time"

	"product-search/application/ports"
	"product-search/domain/product"
	appErrors "product-search/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings holds configuration for the repository circuit breaker.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings mirrors the thresholds used by the HTTP breaker.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerRepository fails fast while DynamoDB keeps failing. It never
// retries; an open circuit surfaces as an UNAVAILABLE error.
type BreakerRepository struct {
	next   ports.RecordRepository
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerRepository wraps next with a circuit breaker.
func NewBreakerRepository(next ports.RecordRepository, settings BreakerSettings, logger *zap.Logger) *BreakerRepository {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		// Only store failures count against the circuit.
		IsSuccessful: func(err error) bool {
			return !appErrors.IsDatabase(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerRepository{
		next:   next,
		cb:     cb,
		logger: logger,
	}
}

// Strategy implements ports.RecordRepository.
func (r *BreakerRepository) Strategy() string {
	return r.next.Strategy()
}

// State reports the current breaker state.
func (r *BreakerRepository) State() gobreaker.State {
	return r.cb.State()
}

// QueryByProduct implements ports.RecordRepository.
func (r *BreakerRepository) QueryByProduct(ctx context.Context, productName string) ([]product.Record, error) {
	result, err := r.cb.Execute(func() (interface{}, error) {
		return r.next.QueryByProduct(ctx, productName)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.logger.Warn("Rejected search, circuit open",
				zap.String("product", productName),
				zap.String("state", r.cb.State().String()),
			)
			return nil, appErrors.NewUnavailableError("dynamodb").
				WithCause(err).
				WithDetails(map[string]interface{}{
					"breaker": r.cb.Name(),
					"state":   r.cb.State().String(),
				})
		}
		return nil, err
	}

	return result.([]product.Record), nil
}
