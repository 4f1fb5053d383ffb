package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy retries timeouts, throttling, server errors, and empty
// completions with doubling delays. Retry-After wins over the computed delay.
type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
	sleeper  func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 1, base: time.Second, max: 10 * time.Second}
}

func (p retryPolicy) do(ctx context.Context, op string, call func() error) error {
	attempts := max(p.attempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		delay, ok := p.delayFor(err, attempt)
		if !ok {
			return err
		}
		if waitErr := p.wait(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	if attempts == 1 {
		return err
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, err)
}

// delayFor reports whether err is retryable and how long to wait first.
func (p retryPolicy) delayFor(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return p.backoff(attempt), true
	}
	var status *httpStatusError
	if errors.As(err, &status) {
		if status.StatusCode != http.StatusRequestTimeout &&
			status.StatusCode != http.StatusTooManyRequests &&
			status.StatusCode < http.StatusInternalServerError {
			return 0, false
		}
		if status.RetryAfter > 0 {
			return p.clamp(status.RetryAfter), true
		}
		return p.backoff(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

// backoff doubles base per attempt: base, 2*base, 4*base, ... up to max.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt && delay < p.max; i++ {
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) clamp(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.max > 0 && delay > p.max {
		return p.max
	}
	return delay
}

func (p retryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, seconds >= 0
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay >= 0 {
			return delay, true
		}
	}
	return 0, false
}
