package task

import (
	"context"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/check"
	"namadrift/internal/sdk"
	"namadrift/internal/wstate"
)

// Task is one on-chain operation. Implementations satisfy
// wstate.StateMutation via Apply so an executed batch can be folded
// straight into state.Update without an adapter layer.
type Task interface {
	// Name is the step kind this task belongs to, used for stats and logs.
	Name() string
	// Summary is a unique log tag including the task's key arguments.
	Summary() string
	// Settings returns the signer set, payer, and gas limit.
	Settings() Settings
	// BuildTx delegates construction and signing to the external SDK.
	BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error)
	// BuildChecks snapshots pre-execution state and returns the checks
	// that must hold after execution.
	BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error)
	// Apply folds this task's effect into local state after a successful
	// execution. An applied-but-errored execution only has its fee recorded,
	// through AggregateFees.
	Apply(s *wstate.State)
	// AggregateFees records this task's fee against its payer. applied
	// reports whether the transaction reached the chain (and so incurred
	// a fee) versus failing at the broadcast layer.
	AggregateFees(fees map[alias.Alias]uint64, applied bool)
}

func chargeDefaultFee(fees map[alias.Alias]uint64, payer alias.Alias, applied bool) {
	if !applied || payer.IsFaucet() {
		return
	}
	fees[payer] += wstate.DefaultFeeInNativeToken
}
