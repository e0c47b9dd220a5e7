// Package ratelimit throttles outbound calls to the generation API.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobboard/internal/ai"
)

// Endpoint names used as limiter keys.
const (
	EndpointGenerate = "generate"
	EndpointVideo    = "video"
	EndpointPoll     = "poll"
	EndpointDownload = "download"
)

// EndpointLimiter keeps one token bucket per endpoint so a burst of polls
// does not starve submissions.
type EndpointLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

// NewEndpointLimiter creates a limiter allowing reqPerSec sustained requests
// with the given burst per endpoint. reqPerSec <= 0 disables limiting.
func NewEndpointLimiter(reqPerSec float64, burst int) *EndpointLimiter {
	r := rate.Limit(reqPerSec)
	if reqPerSec <= 0 {
		r = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &EndpointLimiter{
		m: make(map[string]*rate.Limiter),
		r: r,
		b: burst,
	}
}

func (l *EndpointLimiter) limiterFor(endpoint string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.m[endpoint]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.r, l.b)
	l.m[endpoint] = lim
	return lim
}

// Wait blocks until endpoint may be called or ctx is done.
func (l *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	if err := l.limiterFor(endpoint).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", endpoint, err)
	}
	return nil
}

// RateLimitedProvider is a decorator that waits on the limiter before
// delegating to the wrapped provider.
type RateLimitedProvider struct {
	inner   ai.Provider
	limiter *EndpointLimiter
}

// NewRateLimitedProvider wraps inner with endpoint-level rate limiting.
func NewRateLimitedProvider(inner ai.Provider, limiter *EndpointLimiter) *RateLimitedProvider {
	return &RateLimitedProvider{inner: inner, limiter: limiter}
}

func (p *RateLimitedProvider) GenerateContent(ctx context.Context, parts []ai.Part) ([]ai.Part, error) {
	if err := p.limiter.Wait(ctx, EndpointGenerate); err != nil {
		return nil, err
	}
	return p.inner.GenerateContent(ctx, parts)
}

func (p *RateLimitedProvider) StartVideo(ctx context.Context, req ai.VideoRequest) (*ai.Operation, error) {
	if err := p.limiter.Wait(ctx, EndpointVideo); err != nil {
		return nil, err
	}
	return p.inner.StartVideo(ctx, req)
}

func (p *RateLimitedProvider) GetOperation(ctx context.Context, name string) (*ai.Operation, error) {
	if err := p.limiter.Wait(ctx, EndpointPoll); err != nil {
		return nil, err
	}
	return p.inner.GetOperation(ctx, name)
}

func (p *RateLimitedProvider) Download(ctx context.Context, uri string) (*ai.Media, error) {
	if err := p.limiter.Wait(ctx, EndpointDownload); err != nil {
		return nil, err
	}
	return p.inner.Download(ctx, uri)
}
