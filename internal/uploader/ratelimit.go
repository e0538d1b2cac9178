package uploader

import (
	"context"
	"time"
)

// RateLimiter enforces a fixed minimum delay between consecutive remote
// calls. Not a token bucket: the remote service's usage policy asks for
// pacing, not bursts.
type RateLimiter struct {
	delay time.Duration
	last  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter builds a limiter with the given inter-call delay. A
// zero or negative delay disables waiting.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		delay: delay,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Wait blocks until at least the configured delay has passed since the
// previous call, or the context is cancelled.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l == nil || l.delay <= 0 {
		return nil
	}

	now := l.now()
	if !l.last.IsZero() {
		if remaining := l.delay - now.Sub(l.last); remaining > 0 {
			if err := l.sleep(ctx, remaining); err != nil {
				return err
			}
			now = l.now()
		}
	}
	l.last = now
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
