// Package check is the checker suite (C6): each Check snapshots a
// pre-execution observation and later re-queries the chain to assert the
// expected post-condition. A Check's DoCheck retries its query and reports
// a definitive pass/fail; a final mismatch is fatal to the invocation.
package check

import (
	"context"
	"fmt"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
)

// ValidatorExpectation is the expected post-epoch validator lifecycle
// state for a ValidatorStatus check.
type ValidatorExpectation string

const (
	ExpectActive       ValidatorExpectation = "active"
	ExpectInactive     ValidatorExpectation = "inactive"
	ExpectReactivating ValidatorExpectation = "reactivating"
)

// Check is one post-condition assertion built from a pre-execution
// observation.
type Check interface {
	// DoCheck re-queries the chain at checkHeight and reports whether the
	// observed post-state matches what was predicted. fees is the
	// per-payer fee map accumulated during this invocation's execution,
	// used to correct Source-balance expectations.
	DoCheck(ctx context.Context, q *chainquery.Querier, fees map[alias.Alias]uint64) error
}

// RevealPk asserts alias's public key is now revealed on-chain.
type RevealPk struct {
	Alias alias.Alias
}

func (c RevealPk) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	revealed, err := q.PkRevealed(ctx, c.Alias)
	if err != nil {
		return fmt.Errorf("check RevealPk(%s): %w", c.Alias, err)
	}
	if !revealed {
		return fmt.Errorf("check RevealPk(%s): pk not revealed", c.Alias)
	}
	return nil
}

// BalanceTarget asserts post = pre + amount (or post >= pre + amount when
// AllowGreater, used when the target may also have received unrelated
// incoming transfers within the same batch).
type BalanceTarget struct {
	Alias        alias.Alias
	Pre          uint64
	Amount       uint64
	Denom        string
	AllowGreater bool
}

func (c BalanceTarget) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	_, post, err := q.Balance(ctx, c.Alias, c.Denom)
	if err != nil {
		return fmt.Errorf("check BalanceTarget(%s): %w", c.Alias, err)
	}
	want := c.Pre + c.Amount
	if c.AllowGreater {
		if post < want {
			return fmt.Errorf("check BalanceTarget(%s): got %d, want >= %d", c.Alias, post, want)
		}
		return nil
	}
	if post != want {
		return fmt.Errorf("check BalanceTarget(%s): got %d, want %d", c.Alias, post, want)
	}
	return nil
}

// BalanceSource asserts post = pre - amount - any fee charged to this alias
// during this invocation's execution.
type BalanceSource struct {
	Alias  alias.Alias
	Pre    uint64
	Amount uint64
	Denom  string
}

func (c BalanceSource) DoCheck(ctx context.Context, q *chainquery.Querier, fees map[alias.Alias]uint64) error {
	_, post, err := q.Balance(ctx, c.Alias, c.Denom)
	if err != nil {
		return fmt.Errorf("check BalanceSource(%s): %w", c.Alias, err)
	}
	fee := fees[c.Alias]
	if c.Pre < c.Amount+fee {
		return fmt.Errorf("check BalanceSource(%s): pre %d insufficient for amount %d + fee %d", c.Alias, c.Pre, c.Amount, fee)
	}
	want := c.Pre - c.Amount - fee
	if post != want {
		return fmt.Errorf("check BalanceSource(%s): got %d, want %d (pre %d, amount %d, fee %d)", c.Alias, post, want, c.Pre, c.Amount, fee)
	}
	return nil
}

// BalanceShieldedTarget asserts a shielded post-balance of pre + amount.
type BalanceShieldedTarget struct {
	Alias  alias.Alias
	Pre    uint64
	Amount uint64
}

func (c BalanceShieldedTarget) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	post, ok, err := q.ShieldedBalance(ctx, c.Alias, nil)
	if err != nil {
		return fmt.Errorf("check BalanceShieldedTarget(%s): %w", c.Alias, err)
	}
	if !ok {
		return fmt.Errorf("check BalanceShieldedTarget(%s): indexer has no answer yet", c.Alias)
	}
	want := c.Pre + c.Amount
	if post != want {
		return fmt.Errorf("check BalanceShieldedTarget(%s): got %d, want %d", c.Alias, post, want)
	}
	return nil
}

// BalanceShieldedSource asserts a shielded post-balance of pre - amount.
type BalanceShieldedSource struct {
	Alias  alias.Alias
	Pre    uint64
	Amount uint64
}

func (c BalanceShieldedSource) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	post, ok, err := q.ShieldedBalance(ctx, c.Alias, nil)
	if err != nil {
		return fmt.Errorf("check BalanceShieldedSource(%s): %w", c.Alias, err)
	}
	if !ok {
		return fmt.Errorf("check BalanceShieldedSource(%s): indexer has no answer yet", c.Alias)
	}
	if c.Pre < c.Amount {
		return fmt.Errorf("check BalanceShieldedSource(%s): pre %d insufficient for amount %d", c.Alias, c.Pre, c.Amount)
	}
	want := c.Pre - c.Amount
	if post != want {
		return fmt.Errorf("check BalanceShieldedSource(%s): got %d, want %d", c.Alias, post, want)
	}
	return nil
}

// BondIncrease asserts the bond at epoch+2 equals pre + amount.
type BondIncrease struct {
	Alias     alias.Alias
	Validator string
	Pre       uint64
	Epoch     uint64
	Amount    uint64
}

func (c BondIncrease) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	post, err := q.Bond(ctx, c.Alias, c.Validator, c.Epoch+2)
	if err != nil {
		return fmt.Errorf("check BondIncrease(%s,%s): %w", c.Alias, c.Validator, err)
	}
	want := c.Pre + c.Amount
	if post != want {
		return fmt.Errorf("check BondIncrease(%s,%s): got %d, want %d", c.Alias, c.Validator, post, want)
	}
	return nil
}

// BondDecrease asserts the bond at epoch+2 equals pre - amount.
type BondDecrease struct {
	Alias     alias.Alias
	Validator string
	Pre       uint64
	Epoch     uint64
	Amount    uint64
}

func (c BondDecrease) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	post, err := q.Bond(ctx, c.Alias, c.Validator, c.Epoch+2)
	if err != nil {
		return fmt.Errorf("check BondDecrease(%s,%s): %w", c.Alias, c.Validator, err)
	}
	if c.Pre < c.Amount {
		return fmt.Errorf("check BondDecrease(%s,%s): pre %d insufficient for amount %d", c.Alias, c.Validator, c.Pre, c.Amount)
	}
	want := c.Pre - c.Amount
	if post != want {
		return fmt.Errorf("check BondDecrease(%s,%s): got %d, want %d", c.Alias, c.Validator, post, want)
	}
	return nil
}

// AccountExist asserts an established account exists on-chain with the
// submitted threshold and the same number of signer keys. Which keys the
// account holds is not compared.
type AccountExist struct {
	Alias     alias.Alias
	Threshold uint64
	Signers   []alias.Alias
}

func (c AccountExist) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	info, ok, err := q.AccountInfo(ctx, c.Alias)
	if err != nil {
		return fmt.Errorf("check AccountExist(%s): %w", c.Alias, err)
	}
	if !ok {
		return fmt.Errorf("check AccountExist(%s): account not found on chain", c.Alias)
	}
	if info.Threshold != c.Threshold {
		return fmt.Errorf("check AccountExist(%s): threshold got %d, want %d", c.Alias, info.Threshold, c.Threshold)
	}
	if len(info.PublicKeys) != len(c.Signers) {
		return fmt.Errorf("check AccountExist(%s): signer count got %d, want %d", c.Alias, len(info.PublicKeys), len(c.Signers))
	}
	return nil
}

// IsValidatorAccount asserts alias is a validator on-chain.
type IsValidatorAccount struct {
	Alias alias.Alias
	Epoch uint64
}

func (c IsValidatorAccount) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	_, ok, err := q.ValidatorStateAt(ctx, c.Alias, c.Epoch+2)
	if err != nil {
		return fmt.Errorf("check IsValidatorAccount(%s): %w", c.Alias, err)
	}
	if !ok {
		return fmt.Errorf("check IsValidatorAccount(%s): not a validator on-chain", c.Alias)
	}
	return nil
}

// ValidatorStatus asserts alias's validator lifecycle state at epoch+2
// matches the expected state.
type ValidatorStatus struct {
	Alias    alias.Alias
	Epoch    uint64
	Expected ValidatorExpectation
}

func (c ValidatorStatus) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	state, ok, err := q.ValidatorStateAt(ctx, c.Alias, c.Epoch+2)
	if err != nil {
		return fmt.Errorf("check ValidatorStatus(%s): %w", c.Alias, err)
	}
	if !ok {
		return fmt.Errorf("check ValidatorStatus(%s): not found on-chain", c.Alias)
	}
	matches := map[ValidatorExpectation]func(chainquery.ValidatorState) bool{
		ExpectActive: func(s chainquery.ValidatorState) bool {
			return s == chainquery.ValidatorConsensus || s == chainquery.ValidatorBelowCap || s == chainquery.ValidatorBelowThresh
		},
		ExpectInactive:     func(s chainquery.ValidatorState) bool { return s == chainquery.ValidatorInactive },
		ExpectReactivating: func(s chainquery.ValidatorState) bool { return s != chainquery.ValidatorInactive },
	}
	check, ok := matches[c.Expected]
	if !ok || !check(state) {
		return fmt.Errorf("check ValidatorStatus(%s): got %s, expected %s", c.Alias, state, c.Expected)
	}
	return nil
}

// VoteResult asserts voter's ballot on proposal id was recorded on-chain.
type VoteResult struct {
	ProposalID uint64
	Voter      alias.Alias
	Choice     string
}

func (c VoteResult) DoCheck(ctx context.Context, q *chainquery.Querier, _ map[alias.Alias]uint64) error {
	// Querier.VoteRecorded asks the chain (workload_voteRecorded) whether
	// voter's ballot with this choice is recorded on proposal id.
	return q.VoteRecorded(ctx, c.ProposalID, c.Voter, c.Choice)
}

// DoAll runs every check and returns the first failure, or nil if the
// check list is empty or all checks pass (spec: "empty check list
// short-circuits with success").
func DoAll(ctx context.Context, checks []Check, q *chainquery.Querier, fees map[alias.Alias]uint64) error {
	for _, c := range checks {
		if err := c.DoCheck(ctx, q, fees); err != nil {
			return err
		}
	}
	return nil
}
