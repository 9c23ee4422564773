package overpass

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"
)

// tripAfterFailures fallos consecutivos abren el circuito.
const tripAfterFailures = 3

// ResilientClient envuelve un Client con circuit breaker y reintentos de fortify.
type ResilientClient struct {
	client         Client
	circuitBreaker circuitbreaker.CircuitBreaker[*Response]
	retrier        retry.Retry[*Response]
	logger         *zap.Logger
}

type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	OpenTimeout  time.Duration
	Logger       *zap.Logger
}

func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		OpenTimeout:  60 * time.Second,
	}
}

func NewResilientClient(client Client, cfg ResilientConfig) *ResilientClient {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	rc := &ResilientClient{client: client, logger: logger}

	rc.circuitBreaker = circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfterFailures
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("overpass circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	rc.retrier = retry.New[*Response](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   IsRetryable,
	})
	return rc
}

func (c *ResilientClient) Query(ctx context.Context, ql string) (*Response, error) {
	return c.circuitBreaker.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return c.retrier.Do(ctx, func(ctx context.Context) (*Response, error) {
			return c.client.Query(ctx, ql)
		})
	})
}

// IsRetryable solo reintenta respuestas de sobrecarga; un timeout ya consumió todo el presupuesto.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.Code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
