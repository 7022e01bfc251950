package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viral-clip-gen/internal/logging"
)

// ErrExternalCapability marks a remote text/transcription call that
// exhausted its retries.
var ErrExternalCapability = errors.New("external capability call failed")

// RetryPolicy is an explicit, injected retry schedule for calls to the
// external capabilities. Backoff doubles per attempt up to a cap.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 4 * time.Second,
		MaxBackoff:     10 * time.Second,
	}
}

// delay is the sleep before attempt+1, given the just-failed attempt
// number (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. The
// context cancels the wait, not a running attempt.
func (p RetryPolicy) Do(ctx context.Context, op string, log *logging.Logger, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrNotConfigured) {
			return fmt.Errorf("%w: %s: %v", ErrExternalCapability, op, lastErr)
		}
		if attempt == p.MaxAttempts {
			break
		}
		wait := p.delay(attempt)
		log.Warnf("%s: attempt %d/%d failed (%v), retrying in %s", op, attempt, p.MaxAttempts, lastErr, wait)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", ErrExternalCapability, op, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrExternalCapability, op, p.MaxAttempts, lastErr)
}
