// Package retry implements the bounded exponential backoff wrapping every
// chain-state read (spec §4.2). Two policies exist, deliberately not merged
// (spec §9 Open Questions): Query for the workload's C3 query interface
// (4 attempts, 1s initial delay, doubling, capped at 10s) and Probe for the
// health prober's checks (3 retries, so 4 attempts, fixed 2s sleep).
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy wraps a fallible operation with a bounded retry schedule.
type Policy struct {
	newBackOff func() backoff.BackOff
}

// Query is the C3 retry policy: up to 4 attempts, 1s initial delay,
// doubling, capped at 10s between attempts. On exhaustion the inner error
// is returned unchanged.
func Query() *Policy {
	return &Policy{newBackOff: func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 1 * time.Second
		b.Multiplier = 2
		b.MaxInterval = 10 * time.Second
		b.MaxElapsedTime = 0
		return backoff.WithMaxRetries(b, 3)
	}}
}

// Probe is the health-prober retry policy: exactly 3 retries (4 attempts)
// with a fixed 2s sleep, per the original implementation's health checks.
func Probe() *Policy {
	return &Policy{newBackOff: func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ConstantBackOff{Interval: 2 * time.Second}, 3)
	}}
}

// NewForTests builds a Policy from an arbitrary backoff factory, letting
// other packages' tests exercise retry behavior without waiting out the
// production Query/Probe schedules.
func NewForTests(newBackOff func() backoff.BackOff) *Policy {
	return &Policy{newBackOff: newBackOff}
}

// Do runs fn, retrying per the policy's schedule until it succeeds, the
// schedule is exhausted, or ctx is cancelled. The final error is returned
// unchanged (not wrapped), matching spec §4.2's "inner error is returned
// unchanged" contract.
func (p *Policy) Do(ctx context.Context, fn func() error) error {
	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return fn()
	}, backoff.WithContext(p.newBackOff(), ctx))
}
