// Package poller waits on long-running remote operations.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrTimeout is returned when every allowed poll ran and the operation was
// still not done.
var ErrTimeout = errors.New("operation still pending after last poll")

// CheckFunc polls the operation once and reports whether it has finished.
// attempt starts at 1.
type CheckFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poller repeats a check on a fixed interval up to a bounded number of times.
type Poller struct {
	Name        string
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewPoller creates a poller that waits interval before each of at most
// maxAttempts checks.
func NewPoller(name string, interval time.Duration, maxAttempts int, logger *slog.Logger) *Poller {
	return &Poller{
		Name:        name,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// MaxAttempts returns the poll ceiling.
func (p *Poller) MaxAttempts() int {
	return p.maxAttempts
}

// UntilDone sleeps, checks, and repeats until check reports done, check
// fails, ctx is cancelled, or maxAttempts checks have run. It never checks
// more than maxAttempts times.
func (p *Poller) UntilDone(ctx context.Context, check CheckFunc) error {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		p.logger.Debug("waiting for operation",
			"operation", p.Name,
			"attempt", attempt,
			"max_attempts", p.maxAttempts,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("polling %s cancelled: %w", p.Name, ctx.Err())
		case <-time.After(p.interval):
		}

		done, err := check(ctx, attempt)
		if err != nil {
			return fmt.Errorf("polling %s: %w", p.Name, err)
		}
		if done {
			p.logger.Info("operation finished", "operation", p.Name, "attempts", attempt)
			return nil
		}
	}

	p.logger.Warn("operation timed out", "operation", p.Name, "attempts", p.maxAttempts)
	return fmt.Errorf("polling %s: %w", p.Name, ErrTimeout)
}
