package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amishk599/jobboard/internal/ai"
)

func TestWait_SameEndpoint_EnforcesRate(t *testing.T) {
	limiter := NewEndpointLimiter(10, 1) // one request per 100ms
	ctx := context.Background()

	if err := limiter.Wait(ctx, EndpointPoll); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, EndpointPoll); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentEndpoints_NoCrossBlocking(t *testing.T) {
	limiter := NewEndpointLimiter(5, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, EndpointPoll); err != nil {
		t.Fatalf("poll wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, EndpointDownload); err != nil {
		t.Fatalf("download wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected download wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ZeroRateDisablesLimiting(t *testing.T) {
	limiter := NewEndpointLimiter(0, 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := limiter.Wait(ctx, EndpointGenerate); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected no throttling, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewEndpointLimiter(0.2, 1) // one request per 5s
	if err := limiter.Wait(context.Background(), EndpointVideo); err != nil {
		t.Fatalf("seed wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, EndpointVideo); err == nil {
		t.Fatal("expected error when the wait exceeds the context deadline")
	}
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) GenerateContent(context.Context, []ai.Part) ([]ai.Part, error) {
	c.calls++
	return nil, nil
}

func (c *countingProvider) StartVideo(context.Context, ai.VideoRequest) (*ai.Operation, error) {
	c.calls++
	return &ai.Operation{Name: "op"}, nil
}

func (c *countingProvider) GetOperation(_ context.Context, name string) (*ai.Operation, error) {
	c.calls++
	return &ai.Operation{Name: name}, nil
}

func (c *countingProvider) Download(context.Context, string) (*ai.Media, error) {
	c.calls++
	return &ai.Media{}, nil
}

func TestRateLimitedProvider_DelegatesAfterWait(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, NewEndpointLimiter(100, 1))
	ctx := context.Background()

	if _, err := p.GenerateContent(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := p.StartVideo(ctx, ai.VideoRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.GetOperation(ctx, "op"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Download(ctx, "uri"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 4 {
		t.Fatalf("expected 4 delegated calls, got %d", inner.calls)
	}
}

func TestRateLimitedProvider_CancelledWaitSkipsCall(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, NewEndpointLimiter(0.1, 1))

	if _, err := p.GetOperation(context.Background(), "op"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.GetOperation(ctx, "op")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 delegated call, got %d", inner.calls)
	}
}
