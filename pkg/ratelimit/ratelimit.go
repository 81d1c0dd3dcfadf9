// Package ratelimit throttles scenario fetches sent to an upstream Grafana.
package ratelimit

import (
	"context"

	"testdata-grafana-plugin/pkg/models"

	"golang.org/x/time/rate"
)

// NewLimiter creates a token bucket refilled at rps tokens per second that
// holds at most burst tokens. A rate of zero or less disables limiting and
// returns nil.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Source provides a scenario list.
type Source interface {
	GetScenarios(ctx context.Context) ([]models.Scenario, error)
}

type throttledSource struct {
	source  Source
	limiter *rate.Limiter
}

// Throttle returns a source that waits on limiter before each fetch from
// source. A nil limiter returns source unchanged.
func Throttle(source Source, limiter *rate.Limiter) Source {
	if limiter == nil {
		return source
	}
	return &throttledSource{source: source, limiter: limiter}
}

func (t *throttledSource) GetScenarios(ctx context.Context) ([]models.Scenario, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.source.GetScenarios(ctx)
}
