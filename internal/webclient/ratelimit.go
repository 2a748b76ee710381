package webclient

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited throttles another WebClient to a fixed request rate.
type RateLimited struct {
	next    WebClient
	limiter *rate.Limiter
}

// NewLimiter allows rps requests per second with a burst of one.
func NewLimiter(rps float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// NewRateLimited throttles next to rps requests per second.
func NewRateLimited(next WebClient, rps float64) *RateLimited {
	return NewSharedRateLimited(next, NewLimiter(rps))
}

// NewSharedRateLimited throttles next with a limiter other clients may share.
func NewSharedRateLimited(next WebClient, limiter *rate.Limiter) *RateLimited {
	return &RateLimited{next: next, limiter: limiter}
}

func (r *RateLimited) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Do(ctx, req)
}

func (r *RateLimited) Get(ctx context.Context, url string) (*Response, error) {
	return r.Do(ctx, &Request{Method: "GET", URL: url})
}

func (r *RateLimited) Head(ctx context.Context, url string) (*Response, error) {
	return r.Do(ctx, &Request{Method: "HEAD", URL: url})
}

func (r *RateLimited) Close() error {
	return r.next.Close()
}
