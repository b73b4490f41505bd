package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Client with a process-wide request rate limit shared by
// every concurrent caller.
type RateLimited struct {
	Client
	limiter *rate.Limiter
}

// NewRateLimited returns next unchanged when rps <= 0.
func NewRateLimited(next Client, rps float64, burst int) Client {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		Client:  next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// GenerateStructured waits for a token before delegating.
func (r *RateLimited) GenerateStructured(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return r.Client.GenerateStructured(ctx, req)
}
