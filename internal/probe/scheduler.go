package probe

import (
	"context"
	"log/slog"
	"time"

	"namadrift/internal/retry"
	"namadrift/internal/wlog"
)

// Scheduler ticks every second and runs each Check whose cadence divides
// the current wall-clock second, the same gating rule the original
// implementation used (now.Second() % cadence == 0).
type Scheduler struct {
	Checks        []Check
	Collaborators Collaborators
	State         *State
	Metrics       *Metrics
	Healthy       *Healthy
	Logger        *slog.Logger
	Policy        *retry.Policy
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Scheduler) policy() *retry.Policy {
	if s.Policy != nil {
		return s.Policy
	}
	return retry.Probe()
}

// Run blocks, ticking once a second, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	second := now.Second()
	ran := false
	for _, c := range s.Checks {
		cadence := c.CadenceSeconds()
		if cadence <= 0 || second%cadence != 0 {
			continue
		}
		s.runOne(ctx, c)
		ran = true
	}
	if ran && s.Metrics != nil {
		s.Metrics.SyncState(s.State)
	}
}

func (s *Scheduler) runOne(ctx context.Context, c Check) {
	err := s.policy().Do(ctx, func() error {
		return c.Do(ctx, s.Collaborators, s.State)
	})
	if s.Metrics != nil {
		s.Metrics.Observe(c.Name(), err == nil)
	}
	if s.Healthy != nil {
		s.Healthy.Set(err == nil)
	}
	wlog.Assertion(s.logger(), wlog.Always, c.Name(), err == nil, "check", c.Name(), "error", errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
