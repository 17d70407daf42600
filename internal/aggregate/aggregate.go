// Package aggregate is the batch effect aggregator (C7): given a batch's
// inner tasks, it folds their individual effects into the minimal set of
// post-condition checks, rather than concatenating each task's own checks.
// This avoids false positives from unsettled intermediate balances within
// the batch (e.g. alias A sends to B, then B sends to C: only the net A and
// C deltas are observable on-chain once the whole batch transaction
// applies).
//
// Effector is implemented structurally by internal/task's concrete task
// types; this package never imports internal/task, so internal/task can
// freely import internal/aggregate to power its Batch.BuildChecks without
// creating an import cycle.
package aggregate

import (
	"context"
	"fmt"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/check"
)

// BalanceDelta is one task's signed effect on an alias's transparent
// balance in some denom.
type BalanceDelta struct {
	Alias  alias.Alias
	Amount int64
	Denom  string
}

// ShieldedDelta is one task's signed effect on an alias's shielded native
// balance.
type ShieldedDelta struct {
	Alias  alias.Alias
	Amount int64
}

// BondDelta is one task's signed effect on a (source, validator, epoch)
// bond record.
type BondDelta struct {
	Alias     alias.Alias
	Validator string
	Epoch     uint64
	Amount    int64
}

// Effector is the structural interface a batched task must satisfy to
// contribute to aggregation. Tasks with no effect in a category return an
// empty slice.
type Effector interface {
	RevealPks() []alias.Alias
	BalanceDeltas() []BalanceDelta
	ShieldedDeltas() []ShieldedDelta
	BondDeltas() []BondDelta
}

type balanceKey struct {
	alias alias.Alias
	denom string
}

type bondKey struct {
	alias     alias.Alias
	validator string
	epoch     uint64
}

// BuildChecks folds every inner task's effect into net per-alias deltas and
// emits the minimal check set proving them, querying each alias's
// pre-balance exactly once regardless of how many inner tasks touch it.
func BuildChecks(ctx context.Context, tasks []Effector, q *chainquery.Querier) ([]check.Check, error) {
	revealed := map[alias.Alias]struct{}{}
	balances := map[balanceKey]int64{}
	shielded := map[alias.Alias]int64{}
	bonds := map[bondKey]int64{}

	for _, t := range tasks {
		for _, a := range t.RevealPks() {
			revealed[a] = struct{}{}
		}
		for _, d := range t.BalanceDeltas() {
			balances[balanceKey{d.Alias, d.Denom}] += d.Amount
		}
		for _, d := range t.ShieldedDeltas() {
			shielded[d.Alias] += d.Amount
		}
		for _, d := range t.BondDeltas() {
			bonds[bondKey{d.Alias, d.Validator, d.Epoch}] += d.Amount
		}
	}

	var checks []check.Check
	for a := range revealed {
		checks = append(checks, check.RevealPk{Alias: a})
	}
	for key, delta := range balances {
		if delta == 0 {
			continue
		}
		_, pre, err := q.Balance(ctx, key.alias, key.denom)
		if err != nil {
			return nil, fmt.Errorf("aggregate: pre-balance for %s/%s: %w", key.alias, key.denom, err)
		}
		if delta > 0 {
			checks = append(checks, check.BalanceTarget{Alias: key.alias, Pre: pre, Amount: uint64(delta), Denom: key.denom, AllowGreater: true})
		} else {
			checks = append(checks, check.BalanceSource{Alias: key.alias, Pre: pre, Amount: uint64(-delta), Denom: key.denom})
		}
	}
	for a, delta := range shielded {
		if delta == 0 {
			continue
		}
		pre, _, err := q.ShieldedBalance(ctx, a, nil)
		if err != nil {
			return nil, fmt.Errorf("aggregate: pre-shielded-balance for %s: %w", a, err)
		}
		if delta > 0 {
			checks = append(checks, check.BalanceShieldedTarget{Alias: a, Pre: pre, Amount: uint64(delta)})
		} else {
			checks = append(checks, check.BalanceShieldedSource{Alias: a, Pre: pre, Amount: uint64(-delta)})
		}
	}
	for key, delta := range bonds {
		if delta == 0 {
			continue
		}
		pre, err := q.Bond(ctx, key.alias, key.validator, key.epoch+2)
		if err != nil {
			return nil, fmt.Errorf("aggregate: pre-bond for %s/%s: %w", key.alias, key.validator, err)
		}
		if delta > 0 {
			checks = append(checks, check.BondIncrease{Alias: key.alias, Validator: key.validator, Pre: pre, Epoch: key.epoch, Amount: uint64(delta)})
		} else {
			checks = append(checks, check.BondDecrease{Alias: key.alias, Validator: key.validator, Pre: pre, Epoch: key.epoch, Amount: uint64(-delta)})
		}
	}
	return checks, nil
}
