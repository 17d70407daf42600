package task

import (
	"context"
	"fmt"
	"strings"

	"namadrift/internal/aggregate"
	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/check"
	"namadrift/internal/sdk"
	"namadrift/internal/wstate"
)

// BatchTask is the subset of Task a Batch can merge: it must also expose
// its effects for aggregation.
type BatchTask interface {
	Task
	aggregate.Effector
}

// Batch merges several tasks into a single on-chain transaction. Its
// checks are produced by the aggregator (C7) instead of concatenating each
// inner task's own checks, avoiding false positives from unsettled
// intermediate balances within the batch.
type Batch struct {
	Tasks    []BatchTask
	settings Settings
}

// NewBatch merges tasks under settings (typically FaucetBatchSettings for
// an all-faucet batch, or NewSettings for a mixed-signer batch).
func NewBatch(tasks []BatchTask, settings Settings) *Batch {
	return &Batch{Tasks: tasks, settings: settings}
}

func (t *Batch) Name() string { return "Batch" }

func (t *Batch) Summary() string {
	parts := make([]string, len(t.Tasks))
	for i, inner := range t.Tasks {
		parts[i] = inner.Summary()
	}
	return fmt.Sprintf("batch-%d -> %s", len(t.Tasks), strings.Join(parts, " -> "))
}

func (t *Batch) Settings() Settings { return t.settings }

// BuildTx merges the per-task builders into one on-chain transaction,
// combining their signing data (spec §4.4).
func (t *Batch) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	signerSet := map[string]struct{}{}
	args := make([]map[string]interface{}, 0, len(t.Tasks))
	for _, inner := range t.Tasks {
		for _, s := range inner.Settings().Signers {
			signerSet[s.Name()] = struct{}{}
		}
		args = append(args, map[string]interface{}{"kind": inner.Name(), "summary": inner.Summary()})
	}
	signers := make([]string, 0, len(signerSet))
	for s := range signerSet {
		signers = append(signers, s)
	}
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: signers, Payer: t.settings.Payer.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"inner": args},
	})
}

func (t *Batch) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	effectors := make([]aggregate.Effector, len(t.Tasks))
	for i, inner := range t.Tasks {
		effectors[i] = inner
	}
	return aggregate.BuildChecks(ctx, effectors, q)
}

func (t *Batch) Apply(s *wstate.State) {
	for _, inner := range t.Tasks {
		inner.Apply(s)
	}
}

func (t *Batch) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	if !applied || t.settings.Payer.IsFaucet() {
		return
	}
	fees[t.settings.Payer] += wstate.DefaultFeeInNativeToken
}
