package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Completer
	limiter *rate.Limiter
}

// RateLimited returns a Completer that waits on a token bucket of perSecond
// requests (burst at least 1) before delegating to next.
func RateLimited(next Completer, perSecond float64, burst int) Completer {
	if burst < 1 {
		burst = 1
	}
	return &rateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *rateLimited) Complete(ctx context.Context, system, user string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}
	return r.next.Complete(ctx, system, user)
}
