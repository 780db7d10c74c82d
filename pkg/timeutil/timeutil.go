package timeutil

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in the slice, or 0 when empty.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	highest := durations[0]
	for _, d := range durations[1:] {
		if d > highest {
			highest = d
		}
	}
	return highest
}

// ExponentialBackoffDelay computes initial * multiplier^(attempt-1), capped at
// the max duration, plus a pseudo-random jitter in [0, jitter).
// A nil rng disables jitter.
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), float64(attempt-1))
	if param.MaxDuration() > 0 && delay > float64(param.MaxDuration()) {
		delay = float64(param.MaxDuration())
	}
	if jitter > 0 && rng != nil {
		delay += float64(rng.Int63n(int64(jitter)))
	}
	return time.Duration(delay)
}

// SleepContext waits for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when the context ended the wait.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
