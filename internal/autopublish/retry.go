package autopublish

import "time"

// retryDelays holds the backoff ladder between publish attempts. Attempt
// counts past the end of the ladder stay at the final step.
var retryDelays = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	45 * time.Minute,
	120 * time.Minute,
	360 * time.Minute,
}

// DefaultMaxAttempts is the total number of publish attempts allowed
// before a schedule is marked permanently failed.
const DefaultMaxAttempts = 5

// RetryDelay returns the backoff before the next publish attempt:
// 5, 15, 45, 120 and 360 minutes for attempt counts 0..4, capped at
// 360 minutes for anything higher.
func RetryDelay(attemptCount int) time.Duration {
	if attemptCount < 0 {
		attemptCount = 0
	}
	if attemptCount >= len(retryDelays) {
		attemptCount = len(retryDelays) - 1
	}
	return retryDelays[attemptCount]
}

// ShouldRetry reports whether another publish attempt is permitted.
func ShouldRetry(attemptCount, maxAttempts int) bool {
	return attemptCount < maxAttempts
}
