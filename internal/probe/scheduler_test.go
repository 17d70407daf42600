package probe

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"namadrift/internal/retry"
)

func instantPolicy() *retry.Policy {
	return retry.NewForTests(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 0)
	})
}

type countingCheck struct {
	cadence int
	calls   *int
	fail    bool
}

func (c countingCheck) Name() string        { return "counting" }
func (c countingCheck) CadenceSeconds() int { return c.cadence }
func (c countingCheck) Do(ctx context.Context, _ Collaborators, _ *State) error {
	*c.calls++
	if c.fail {
		return errTest
	}
	return nil
}

var errTest = fmt.Errorf("test failure")

func TestTickOnlyRunsChecksWhoseCadenceDividesTheSecond(t *testing.T) {
	calls := 0
	s := &Scheduler{Checks: []Check{countingCheck{cadence: 5, calls: &calls}}, State: &State{}}

	s.tick(context.Background(), time.Date(2026, 1, 1, 0, 0, 3, 0, time.UTC))
	require.Equal(t, 0, calls)

	s.tick(context.Background(), time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC))
	require.Equal(t, 1, calls)
}

func TestRunOneFlipsHealthyOnFailure(t *testing.T) {
	calls := 0
	healthy := NewHealthy()
	s := &Scheduler{Healthy: healthy, State: &State{}, Policy: instantPolicy()}
	s.runOne(context.Background(), countingCheck{cadence: 1, calls: &calls, fail: true})
	require.False(t, healthy.Flag().Load())
}
