package sdk

import (
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

// Defaults applied by NewClient. Sync tools wait on Jira, so the call
// timeout leaves room for a full project run.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 500 * time.Millisecond
)

type options struct {
	timeout time.Duration
	retry   retry.Config
}

func defaultOptions() options {
	return options{
		timeout: DefaultTimeout,
		retry: retry.Config{
			MaxAttempts:   DefaultMaxAttempts,
			InitialDelay:  DefaultInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Option configures the SDK client.
type Option func(*options)

// WithTimeout bounds every tool call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetry sets how often a failed transport call is attempted.
// maxAttempts below one disables retries.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		o.retry.MaxAttempts = maxAttempts
		o.retry.InitialDelay = initialDelay
	}
}
