package dispatch

import (
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy defines the arguments to control the retry behavior of a host execution.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, the first one included. Zero means one.
	MaxAttempts uint
	// Delay is the base delay of the exponential backoff between attempts.
	Delay time.Duration
}

// options returns the 'avast/retry' functional options for the retry policy.
func (p RetryPolicy) options() []retry.Option {
	return []retry.Option{
		retry.Attempts(max(p.MaxAttempts, 1)),
		retry.Delay(p.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

// NewUnrecoverableError creates an error that indicates an unrecoverable error.
// If a HostClient returns it, the host is not retried and the failure is recorded at once.
func NewUnrecoverableError(err error) error {
	return retry.Unrecoverable(err)
}
