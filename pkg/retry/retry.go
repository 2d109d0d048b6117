// Package retry runs upstream calls under a bounded exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// Policy bounds how many times an operation is attempted and how long the
// first wait between attempts is. Later waits grow exponentially.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// NoRetry attempts an operation exactly once.
var NoRetry = Policy{MaxAttempts: 1}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Do calls op until it succeeds, returns a permanent error, the attempts are
// used up, or ctx is done. The last error from op is returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	if p.MaxAttempts <= 1 {
		return unwrapPermanent(op())
	}

	b := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		b.InitialInterval = p.BaseDelay
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
	return backoff.Retry(op, policy)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

func unwrapPermanent(err error) error {
	if p, ok := err.(*backoff.PermanentError); ok {
		return p.Err
	}
	return err
}
