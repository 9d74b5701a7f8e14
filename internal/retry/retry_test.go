package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	var sleeps []time.Duration
	errBoom := errors.New("boom")
	calls := 0

	r := Runner{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		Sleep:       func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	err := r.Do("op", func() error {
		calls++
		if calls <= 2 {
			return errBoom
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, sleeps)
}

func TestDoBackoffDoubles(t *testing.T) {
	var sleeps []time.Duration
	errBoom := errors.New("boom")

	r := Runner{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		Sleep:       func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	err := r.Do("op", func() error { return errBoom })

	require.Error(t, err)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, sleeps)
}

func TestDoReturnsLastErrorUnchanged(t *testing.T) {
	errBoom := errors.New("boom")
	r := Runner{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: func(time.Duration) {}}

	err := r.Do("op", func() error { return errBoom })

	// Callers classify the error downstream, so it must not be wrapped.
	assert.Same(t, errBoom, err)
}

func TestDoNoSleepAroundSingleAttempt(t *testing.T) {
	var sleeps int
	r := Runner{
		MaxAttempts: 1,
		BaseDelay:   time.Second,
		Sleep:       func(time.Duration) { sleeps++ },
	}

	err := r.Do("op", func() error { return errors.New("boom") })

	require.Error(t, err)
	assert.Zero(t, sleeps, "no sleep precedes the first attempt or follows the final failure")
}

func TestDoCountsEveryFailedAttempt(t *testing.T) {
	retries := 0
	r := Runner{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Sleep:       func(time.Duration) {},
		OnRetry:     func() { retries++ },
	}

	_ = r.Do("op", func() error { return errors.New("boom") })

	assert.Equal(t, 3, retries)
}

func TestDoImmediateSuccess(t *testing.T) {
	var sleeps, retries int
	r := Runner{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Sleep:       func(time.Duration) { sleeps++ },
		OnRetry:     func() { retries++ },
	}

	err := r.Do("op", func() error { return nil })

	require.NoError(t, err)
	assert.Zero(t, sleeps)
	assert.Zero(t, retries)
}
