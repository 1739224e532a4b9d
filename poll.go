package hubclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
)

// Condition is a predicate over a polled response.
type Condition func(*Response) bool

// PollPolicy bounds how long Poll keeps retrying.
// Delays grow from InitialInterval by Multiplier up to MaxInterval; a
// Multiplier of 1 gives a fixed delay. MaxAttempts is the hard ceiling on
// requests issued.
type PollPolicy struct {
	MaxAttempts     int           `yaml:"maxAttempts"`
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxInterval     time.Duration `yaml:"maxInterval"`
	Multiplier      float64       `yaml:"multiplier"`
}

// DefaultPollPolicy returns 10 attempts, 100ms growing by 1.5x, capped at 2s.
// The worst case wait is a little over 8 seconds.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		MaxAttempts:     10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      1.5,
	}
}

func (p PollPolicy) validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("poll policy: max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.InitialInterval < 0 || p.MaxInterval < 0 {
		return fmt.Errorf("poll policy: intervals must not be negative")
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("poll policy: multiplier must be at least 1, got %v", p.Multiplier)
	}
	return nil
}

// newBackOff builds the delay sequence between attempts. Jitter is disabled
// so the total wait stays predictable.
func (p PollPolicy) newBackOff() backoff.BackOff {
	if p.MaxAttempts <= 1 {
		// WithMaxRetries treats zero retries as unlimited.
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
}

// Poll issues GET requests against rawURL until until holds or the poll
// policy is exhausted. On exhaustion the last response observed is returned
// with a nil error so the caller can assert on the final state. An error is
// returned only when no response was obtained at all, e.g. every attempt
// failed at the transport level or ctx ended before the first response.
func (c *Client) Poll(ctx context.Context, rawURL string, headers http.Header, until Condition) (*Response, error) {
	if until == nil {
		return nil, fmt.Errorf("poll %s: nil condition", rawURL)
	}

	b := c.PollPolicy.newBackOff()
	var last *Response
	var lastErr error

	for attempt := 1; ; attempt++ {
		resp, err := c.Get(ctx, rawURL, headers)
		if err != nil {
			lastErr = err
			slog.Debug("Poll: attempt failed", "url", rawURL, "attempt", attempt, "error", err)
		} else {
			last = resp
			if until(resp) {
				slog.Debug("Poll: condition met", "url", rawURL, "attempt", attempt, "status", resp.StatusCode)
				return resp, nil
			}
			slog.Debug("Poll: condition not met", "url", rawURL, "attempt", attempt, "status", resp.StatusCode)
		}

		next := b.NextBackOff()
		if next == backoff.Stop {
			break
		}

		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			if last != nil {
				return last, nil
			}
			return nil, fmt.Errorf("poll %s: %w", rawURL, ctx.Err())
		case <-timer.C:
		}
	}

	if last != nil {
		return last, nil
	}
	return nil, fmt.Errorf("poll %s: no response after %d attempts: %w", rawURL, c.PollPolicy.MaxAttempts, lastErr)
}

// StatusIs returns a Condition satisfied by any of the given status codes.
func StatusIs(codes ...int) Condition {
	return func(r *Response) bool {
		for _, code := range codes {
			if r.StatusCode == code {
				return true
			}
		}
		return false
	}
}

// StatusBetween returns a Condition satisfied by a status in [low, high].
func StatusBetween(low, high int) Condition {
	return func(r *Response) bool {
		return r.StatusCode >= low && r.StatusCode <= high
	}
}
