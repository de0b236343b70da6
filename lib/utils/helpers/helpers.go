package helpers

import (
	"context"
	"time"
)

func IsContextDone(ctx context.Context) bool {
	if ctx == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return false
}

// RetryWithBackoff runs op up to attempts times, doubling the delay between
// tries. op reports whether its error is worth retrying; business failures
// are returned as-is on the first attempt. Cancellation of ctx stops the loop
// with the last error seen.
func RetryWithBackoff(ctx context.Context, attempts int, delay time.Duration, op func() (retry bool, err error)) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		retry, err := op()
		if err == nil || !retry {
			return err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}
