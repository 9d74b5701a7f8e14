// Package retry provides a bounded retry executor with exponential
// backoff. Callers must supply idempotent-safe operations.
package retry

import (
	"time"

	"github.com/skoom21/zocdoc-scraper/internal/logger"
)

// Runner executes operations with retry and exponential backoff.
// The zero value is not usable; set MaxAttempts and BaseDelay.
type Runner struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep defaults to time.Sleep; tests inject a recorder.
	Sleep func(time.Duration)
	// OnRetry is invoked once per failed attempt, for metrics.
	OnRetry func()
	Log     logger.Logger
}

// Do runs op up to MaxAttempts times. After a failed attempt with
// attempts remaining it sleeps BaseDelay * 2^attempt (0-based) before
// retrying. The last error is returned unchanged so callers can
// classify it; no sleep precedes the first attempt or follows the
// final failure.
func (r Runner) Do(name string, op func() error) error {
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 0; attempt < r.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if r.OnRetry != nil {
			r.OnRetry()
		}

		if attempt < r.MaxAttempts-1 {
			delay := r.BaseDelay * (1 << attempt)
			if r.Log != nil {
				r.Log.Warnf("%s: attempt %d/%d failed: %v. Retrying in %v...",
					name, attempt+1, r.MaxAttempts, err, delay)
			}
			sleep(delay)
		} else if r.Log != nil {
			r.Log.Errorf("%s: all %d attempts failed. Last error: %v",
				name, r.MaxAttempts, err)
		}
	}
	return lastErr
}
