// Package retry re-runs operations that fail with transient errors.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobboard/internal/model"
)

// Retrier retries transient failures with exponential backoff and jitter.
type Retrier struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetrier creates a Retrier.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetrier(maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Retrier {
	return &Retrier{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Do runs fn, retrying it while it fails with a retryable error.
// op names the operation in log lines.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	for retries := 0; ; retries++ {
		err := fn(ctx)
		if err == nil || !isRetryable(err) || retries == r.maxRetries {
			return err
		}

		wait := r.backoffDelay(retries+1, err)
		r.logger.Warn("transient failure, retrying",
			"op", op,
			"retry", retries+1,
			"max_retries", r.maxRetries,
			"wait", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: retry cancelled: %w", op, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// backoffDelay is baseDelay doubled per earlier retry, scaled by a random
// factor in [0.7, 1.3). A server-supplied Retry-After wins.
func (r *Retrier) backoffDelay(retry int, err error) time.Duration {
	if wait := retryAfter(err); wait > 0 {
		return wait
	}
	base := r.baseDelay << (retry - 1)
	return time.Duration(float64(base) * (0.7 + 0.6*rand.Float64()))
}

func retryAfter(err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}

// isRetryable reports whether another attempt could succeed. Only throttling
// and server faults are retried among HTTP errors; errors without a status
// are transport failures and are retried too.
func isRetryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, model.ErrCredentialRequired):
		return false
	}

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		return true
	}
	return httpErr.StatusCode == http.StatusTooManyRequests ||
		httpErr.StatusCode >= http.StatusInternalServerError
}
