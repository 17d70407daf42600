// Package executor is the single-invocation pipeline (C8): it drives one
// configured step from epoch fetch through state persistence, classifying
// every failure into the werr taxonomy the CLI maps to an exit code.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/check"
	"namadrift/internal/retry"
	"namadrift/internal/sdk"
	"namadrift/internal/step"
	"namadrift/internal/task"
	"namadrift/internal/werr"
	"namadrift/internal/wlog"
	"namadrift/internal/wstate"
)

// Config bundles the external collaborators and tuning knobs a single
// invocation's Run needs.
type Config struct {
	Client       *sdk.Client
	Querier      *chainquery.Querier
	Wallet       *sdk.Wallet
	NoCheck      bool
	PollInterval time.Duration
	Logger       *slog.Logger
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return 2 * time.Second
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// shieldedStepKinds crossing an epoch boundary mid-flight surface as
// InvalidShielded rather than a plain Execution failure (spec §7).
var shieldedStepKinds = map[string]struct{}{
	"Shielding": {}, "ShieldedTransfer": {}, "Unshielding": {},
}

// Init blocks until the chain is usable for a workload invocation: height
// at least 2, the faucet funded, and its public key revealed.
func Init(ctx context.Context, cfg Config) error {
	interval := cfg.pollInterval()

	if err := waitForHeight(ctx, cfg.Querier, 2, interval); err != nil {
		return werr.New(werr.KindStateFatal, "init: wait for chain height", err)
	}

	const faucetBalanceAttempts = 15
	funded := false
	for attempt := 0; attempt < faucetBalanceAttempts && !funded; attempt++ {
		_, balance, err := cfg.Querier.Balance(ctx, alias.Faucet, alias.NativeDenom)
		if err == nil && balance > 0 {
			funded = true
			break
		}
		select {
		case <-ctx.Done():
			return werr.New(werr.KindStateFatal, "init: wait for faucet balance", ctx.Err())
		case <-time.After(interval):
		}
	}
	if !funded {
		return werr.New(werr.KindStateFatal, "init: faucet balance still zero after retry budget", nil)
	}

	revealed, err := cfg.Querier.PkRevealed(ctx, alias.Faucet)
	if err != nil {
		return werr.New(werr.KindStateFatal, "init: check faucet pk revealed", err)
	}
	if !revealed {
		if err := revealPk(ctx, cfg, alias.Faucet); err != nil {
			return werr.New(werr.KindStateFatal, "init: reveal faucet pk", err)
		}
	}
	return nil
}

func waitForHeight(ctx context.Context, q *chainquery.Querier, min uint64, interval time.Duration) error {
	for {
		h, err := q.BlockHeight(ctx)
		if err == nil && h >= min {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// revealPk submits a RevealPk transaction for a and retries until it is
// accepted and applied, or ctx is cancelled.
func revealPk(ctx context.Context, cfg Config, a alias.Alias) error {
	for {
		if err := revealPkOnce(ctx, cfg, a); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.pollInterval()):
		}
	}
}

func revealPkOnce(ctx context.Context, cfg Config, a alias.Alias) error {
	return retry.Query().Do(ctx, func() error {
		built, err := cfg.Client.BuildTx(ctx, sdk.BuildRequest{
			Kind:     "RevealPk",
			Signers:  []string{a.Name()},
			Payer:    a.Name(),
			GasLimit: task.DefaultGasLimit,
			Args:     map[string]interface{}{"alias": a.Name()},
		})
		if err != nil {
			return err
		}
		outcome, err := cfg.Client.Broadcast(ctx, built.Bytes)
		if err != nil {
			return err
		}
		if !outcome.Accepted || outcome.Code != 0 {
			return fmt.Errorf("reveal pk for %s rejected (code=%d info=%s)", a, outcome.Code, outcome.Info)
		}
		return nil
	})
}

// Outcome is the fully classified result of one invocation's pipeline.
type Outcome struct {
	Kind werr.Kind
	Err  error
}

func success() Outcome { return Outcome{Kind: werr.KindSuccess} }

func failure(kind werr.Kind, err error) Outcome { return Outcome{Kind: kind, Err: err} }

// Run drives stepName through exactly one invocation's pipeline against s.
// It never persists s itself; the caller persists on every return path per
// the state store's guaranteed-release contract.
func Run(ctx context.Context, cfg Config, s *wstate.State, stepName string) Outcome {
	st, ok := step.ByName[stepName]
	if !ok {
		return failure(werr.KindOtherFailure, fmt.Errorf("executor: unknown step %q", stepName))
	}
	log := cfg.logger()

	epoch, err := cfg.Querier.Epoch(ctx)
	if err != nil {
		return failure(werr.KindOtherFailure, fmt.Errorf("executor: fetch epoch: %w", err))
	}

	if !st.IsValid(s, epoch) {
		log.Info("invalid step", "step", stepName, "epoch", epoch)
		return success()
	}

	initHeight, err := cfg.Querier.BlockHeight(ctx)
	if err != nil {
		return failure(werr.KindOtherFailure, fmt.Errorf("executor: record init height: %w", err))
	}

	tasks, err := st.BuildTasks(ctx, cfg.Querier, s, epoch)
	if err != nil {
		return failure(werr.KindBuildFailure, fmt.Errorf("executor: build_tasks(%s): %w", stepName, err))
	}
	if len(tasks) == 0 {
		return failure(werr.KindNoTask, fmt.Errorf("executor: build_tasks(%s) produced no tasks", stepName))
	}
	for _, t := range tasks {
		if b, ok := t.(*task.Batch); ok && len(b.Tasks) == 0 {
			return failure(werr.KindEmptyBatch, fmt.Errorf("executor: %s produced an empty batch", stepName))
		}
	}

	var allChecks []check.Check
	if !cfg.NoCheck {
		for _, t := range tasks {
			checks, err := t.BuildChecks(ctx, cfg.Querier)
			if err != nil {
				return failure(werr.KindOtherFailure, fmt.Errorf("executor: build_checks(%s): %w", t.Summary(), err))
			}
			assertNoDrift(log, s, checks)
			allChecks = append(allChecks, checks...)
		}
	}

	fees := map[alias.Alias]uint64{}
	executionHeight := initHeight
	var applied []task.Task

	for _, t := range tasks {
		settledHeight, outcome := executeOne(ctx, cfg, t, initHeight, fees)
		if outcome != nil {
			return finalize(s, fees, applied, *outcome)
		}
		if settledHeight > executionHeight {
			executionHeight = settledHeight
		}
		applied = append(applied, t)
	}

	if !cfg.NoCheck && len(allChecks) > 0 {
		if err := cfg.Querier.WaitBlockSettlement(ctx, executionHeight, cfg.pollInterval()); err != nil {
			return finalize(s, fees, nil, failure(werr.KindOtherFailure, fmt.Errorf("executor: wait for check height: %w", err)))
		}
		if err := check.DoAll(ctx, allChecks, cfg.Querier, fees); err != nil {
			return finalize(s, fees, nil, failure(werr.KindStateCheck, fmt.Errorf("executor: post-condition check failed: %w", err)))
		}
	}

	log.Info("step succeeded", "step", stepName, "tasks", len(tasks), "execution_height", executionHeight)
	return finalize(s, fees, applied, success())
}

// finalize folds the applied tasks' effects into s through s.Update, plus
// every fee aggregated along the way (including fees from a task that failed
// execution, since an applied-but-errored tx still debits a fee), before
// returning outcome. This runs on every return path out of the
// execution/check phase, not only the success path: a broadcast rejection,
// execution failure, or post-check mismatch does not undo a fee the chain
// already charged. Task effects are folded only when execution and the
// post-condition checks succeeded; the check-phase failure paths pass no
// applied tasks.
func finalize(s *wstate.State, fees map[alias.Alias]uint64, applied []task.Task, outcome Outcome) Outcome {
	mutations := make([]wstate.StateMutation, len(applied))
	for i, t := range applied {
		mutations[i] = t
	}
	s.Update(mutations)
	if err := s.ApplyFeePayments(fees); err != nil && outcome.Err == nil {
		return failure(werr.KindStateFatal, fmt.Errorf("executor: apply fee payments: %w", err))
	}
	return outcome
}

// executeOne submits t, classifies the chain's response, and either returns
// the height the response settled at or a terminal Outcome. The wallet-only
// NewWalletKeyPair task never reaches the chain at all.
func executeOne(ctx context.Context, cfg Config, t task.Task, initHeight uint64, fees map[alias.Alias]uint64) (uint64, *Outcome) {
	if wk, ok := t.(*task.NewWalletKeyPair); ok {
		return initHeight, executeWalletKeyPair(ctx, cfg, wk, fees)
	}

	built, err := t.BuildTx(ctx, cfg.Client)
	if err != nil {
		return 0, ptr(failure(werr.KindBuildFailure, fmt.Errorf("build tx %s: %w", t.Summary(), err)))
	}
	if built == nil {
		t.AggregateFees(fees, true)
		return initHeight, nil
	}

	outcome, err := cfg.Client.Broadcast(ctx, built.Bytes)
	if err != nil {
		t.AggregateFees(fees, false)
		waitSettle(ctx, cfg, initHeight)
		return 0, ptr(failure(werr.KindBroadcastFailure, fmt.Errorf("broadcast %s: %w", t.Summary(), err)))
	}

	if !outcome.Accepted {
		t.AggregateFees(fees, false)
		waitSettle(ctx, cfg, initHeight)
		return 0, ptr(failure(werr.KindBroadcastFailure, fmt.Errorf("broadcast %s rejected: code=%d info=%s", t.Summary(), outcome.Code, outcome.Info)))
	}

	if isShieldedEpochBoundary(t, outcome) {
		t.AggregateFees(fees, outcome.Applied)
		if !outcome.Applied {
			waitSettle(ctx, cfg, initHeight)
		}
		wrapped := &werr.InvalidShielded{Err: fmt.Errorf("%s crossed an epoch boundary: %s", t.Summary(), outcome.Info), WasFeePaid: outcome.Applied, BuildHeight: initHeight}
		return 0, ptr(failure(werr.KindOtherFailure, wrapped))
	}

	if outcome.Code != 0 {
		t.AggregateFees(fees, true)
		waitSettle(ctx, cfg, outcome.Height)
		wrapped := &werr.Execution{Err: fmt.Errorf("%s applied with error: code=%d info=%s", t.Summary(), outcome.Code, outcome.Info), Height: outcome.Height}
		return 0, ptr(failure(werr.KindExecutionFailure, wrapped))
	}

	t.AggregateFees(fees, true)
	if err := cfg.Querier.WaitBlockSettlement(ctx, outcome.Height, cfg.pollInterval()); err != nil {
		return 0, ptr(failure(werr.KindOtherFailure, fmt.Errorf("wait settlement for %s: %w", t.Summary(), err)))
	}
	return outcome.Height, nil
}

func executeWalletKeyPair(ctx context.Context, cfg Config, wk *task.NewWalletKeyPair, fees map[alias.Alias]uint64) *Outcome {
	key, err := sdk.GeneratePrivateKey()
	if err != nil {
		return ptr(failure(werr.KindOtherFailure, fmt.Errorf("generate key pair for %s: %w", wk.Source, err)))
	}
	if err := cfg.Wallet.Insert(wk.Source, key); err != nil {
		return ptr(failure(werr.KindOtherFailure, fmt.Errorf("insert wallet entry for %s: %w", wk.Source, err)))
	}
	if err := cfg.Wallet.Save(); err != nil {
		return ptr(failure(werr.KindOtherFailure, fmt.Errorf("save wallet after %s: %w", wk.Source, err)))
	}
	wk.AggregateFees(fees, true)
	return nil
}

func waitSettle(ctx context.Context, cfg Config, height uint64) {
	_ = cfg.Querier.WaitBlockSettlement(ctx, height, cfg.pollInterval())
}

func isShieldedEpochBoundary(t task.Task, outcome sdk.TxOutcome) bool {
	if _, ok := shieldedStepKinds[t.Name()]; !ok {
		return false
	}
	return strings.Contains(strings.ToLower(outcome.Info), "epoch")
}

// assertNoDrift logs an always-assertion comparing each check's recorded
// pre-balance against the state store's belief, catching state drift
// between invocations sharing the same aliases.
func assertNoDrift(log *slog.Logger, s *wstate.State, checks []check.Check) {
	for _, c := range checks {
		switch v := c.(type) {
		case check.BalanceSource:
			wlog.Assertion(log, wlog.Always, "pre-balance matches local state", v.Pre == s.GetBalanceFor(v.Alias),
				"alias", v.Alias.Name(), "local", s.GetBalanceFor(v.Alias), "chain", v.Pre)
		case check.BalanceTarget:
			wlog.Assertion(log, wlog.Always, "pre-balance matches local state", v.Pre == s.GetBalanceFor(v.Alias),
				"alias", v.Alias.Name(), "local", s.GetBalanceFor(v.Alias), "chain", v.Pre)
		case check.BalanceShieldedSource:
			wlog.Assertion(log, wlog.Always, "pre-shielded-balance matches local state", v.Pre == s.GetShieldedBalanceFor(v.Alias),
				"alias", v.Alias.Name(), "local", s.GetShieldedBalanceFor(v.Alias), "chain", v.Pre)
		case check.BalanceShieldedTarget:
			wlog.Assertion(log, wlog.Always, "pre-shielded-balance matches local state", v.Pre == s.GetShieldedBalanceFor(v.Alias),
				"alias", v.Alias.Name(), "local", s.GetShieldedBalanceFor(v.Alias), "chain", v.Pre)
		}
	}
}

func ptr(o Outcome) *Outcome { return &o }
