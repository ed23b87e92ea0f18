package nsapi

import (
	"net/http"
	"strconv"
	"time"
)

// #region constants

const maxRetries = 2 // max 2 retries = 3 total attempts

// #endregion

// #region policy

// Attempt is one failed request.
type Attempt struct {
	Status     int
	RetryAfter time.Duration // from the Retry-After header, -1 when absent
}

// RetryPolicy decides whether a failed request is sent again.
type RetryPolicy struct {
	Backoff time.Duration // wait per attempt when the server gives no Retry-After
}

// DefaultRetryPolicy returns the policy a new Client starts with.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Backoff: 2 * time.Second}
}

// #endregion

// #region should-retry

// ShouldRetry returns whether to retry and how long to wait first.
// attempts contains all attempts so far (including the one just failed).
// A rate-limited request never reached the game and is always safe to resend.
// Server errors are only retried for reads: an issue command may already
// have been applied.
func (r RetryPolicy) ShouldRetry(idempotent bool, attempts []Attempt) (bool, time.Duration) {
	if len(attempts) == 0 || len(attempts) > maxRetries {
		return false, 0
	}

	latest := attempts[len(attempts)-1]
	switch {
	case latest.Status == http.StatusTooManyRequests:
	case latest.Status >= 500 && idempotent:
	default:
		return false, 0
	}

	if latest.RetryAfter >= 0 {
		return true, latest.RetryAfter
	}
	return true, r.Backoff * time.Duration(len(attempts))
}

// parseRetryAfter reads a Retry-After header in seconds.
func parseRetryAfter(h string) time.Duration {
	secs, err := strconv.Atoi(h)
	if err != nil || secs < 0 {
		return -1
	}
	return time.Duration(secs) * time.Second
}

// #endregion
