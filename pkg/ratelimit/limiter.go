package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound notification sends so a burst of fires
// cannot flood the transport.
type Limiter struct {
	limiter *rate.Limiter
}

func New(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a send token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
