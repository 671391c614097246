package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts bounds how often a transiently failing call is retried
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the first backoff delay; it doubles each attempt
	DefaultBaseDelay = 1 * time.Second
)

// transientMarkers identify rate-limiting and quota exhaustion in upstream
// error text. Anything else is treated as permanent and not retried.
var transientMarkers = []string{"429", "quota", "rate"}

// IsTransient reports whether an upstream error looks like rate limiting or
// quota exhaustion
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// RetryingGateway wraps a Gateway with bounded retry and exponential backoff
// for transient failures. It holds no mutable state, so one instance is safe
// to share across concurrent requests.
type RetryingGateway struct {
	inner       Gateway
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

// NewRetryingGateway wraps the given gateway with the default retry policy
func NewRetryingGateway(inner Gateway) *RetryingGateway {
	return &RetryingGateway{
		inner:       inner,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       time.Sleep,
	}
}

// Model returns the wrapped gateway's model identifier
func (g *RetryingGateway) Model() string {
	return g.inner.Model()
}

// Generate forwards to the wrapped gateway, retrying transient failures up to
// the attempt ceiling with delays of baseDelay, 2*baseDelay, 4*baseDelay, ...
// Permanent failures propagate immediately; exhausting all attempts
// propagates the last transient error.
func (g *RetryingGateway) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		text, err := g.inner.Generate(ctx, req)
		if err == nil {
			return text, nil
		}

		if !IsTransient(err) {
			return "", err
		}

		lastErr = err
		if attempt < g.maxAttempts-1 {
			delay := g.baseDelay << uint(attempt)
			slog.Warn("LLM call rate limited, backing off",
				"attempt", attempt+1,
				"max_attempts", g.maxAttempts,
				"delay", delay.String(),
				"error", err.Error(),
			)
			g.sleep(delay)
		}
	}

	return "", lastErr
}
