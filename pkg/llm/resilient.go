package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// ResilientGenerator wraps a TextGenerator with the guard rails the raw
// model call lacks: a per-attempt timeout, a single bounded retry, a rate
// limiter and a circuit breaker. A call that still fails after the retry is
// the one condition the pipeline reports to its caller.
type ResilientGenerator struct {
	inner   domain.TextGenerator
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	retries int
	log     *logrus.Logger
}

// NewResilientGenerator builds the decorator from the Gemini configuration.
func NewResilientGenerator(inner domain.TextGenerator, cfg domain.GeminiConfig, logger *logrus.Logger) *ResilientGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.RetryCount
	if retries < 0 {
		retries = 0
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = rps
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Gemini",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientGenerator{
		inner:   inner,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		timeout: timeout,
		retries: retries,
		log:     logger,
	}
}

// Generate runs the underlying generator with timeout, retry, rate limit
// and breaker applied. The context bounds the whole call including waits.
func (g *ResilientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			g.log.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"error":   lastErr,
			}).Warn("Retrying generation")
		}

		result, err := g.breaker.Execute(func() (interface{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()
			return g.inner.Generate(attemptCtx, prompt)
		})
		if err == nil {
			return result.(string), nil
		}
		lastErr = err

		// A cancelled parent context is not retryable.
		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("generation failed after %d attempt(s): %w", g.retries+1, lastErr)
}
