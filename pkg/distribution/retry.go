package distribution

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the exponential-backoff retry behavior used for
// NetworkTransient failures (spec.md §4.7: "at most N retries, then classify
// as NetworkTransient or Fatal based on error taxonomy").
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

func (p RetryPolicy) backoffPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	limit := p.MaxRetries
	if limit == 0 {
		limit = 5
	}
	return backoff.WithMaxRetries(b, limit)
}

// withRetry runs fn under the policy's exponential backoff, retrying only
// while fn's error classifies as NetworkTransient. A Fatal or WorkerExit
// classification returns immediately without further retries.
func (p RetryPolicy) withRetry(ctx context.Context, fn func() error) error {
	operation := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if ClassifyFailure(err, false) != NetworkTransient {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(p.backoffPolicy(), ctx))
}

// isNetworkTransient reports whether err looks like a recoverable network
// condition (connection reset, timeout, temporary DNS failure) rather than a
// protocol-level or configuration failure.
func isNetworkTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
