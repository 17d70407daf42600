// Package chainquery is the narrow, pure read interface over the external
// chain SDK (C3). Every operation block-polls through a retry policy until
// it succeeds or the retry budget is exhausted; retry is never applied to
// transaction submissions (those belong to internal/executor).
package chainquery

import (
	"context"
	"fmt"
	"time"

	"namadrift/internal/alias"
	"namadrift/internal/retry"
	"namadrift/internal/sdk"
)

// Querier is the live query handle bound to one chain endpoint and retry
// policy.
type Querier struct {
	client *sdk.Client
	policy *retry.Policy
}

// New binds a Querier to client using the workload query retry policy (4
// attempts, 1s initial delay, doubling, capped at 10s).
func New(client *sdk.Client) *Querier {
	return &Querier{client: client, policy: retry.Query()}
}

// ValidatorState enumerates a validator account's on-chain bonding status.
type ValidatorState string

const (
	ValidatorConsensus   ValidatorState = "consensus"
	ValidatorBelowCap    ValidatorState = "below-capacity"
	ValidatorBelowThresh ValidatorState = "below-threshold"
	ValidatorInactive    ValidatorState = "inactive"
	ValidatorJailed      ValidatorState = "jailed"
)

// AccountInfo is the optional account metadata the chain holds for an
// established account.
type AccountInfo struct {
	Threshold uint64
	PublicKeys []string
}

// GovernanceParameters are the chain-wide proposal timing and deposit
// parameters queried once per invocation when governance steps run.
type GovernanceParameters struct {
	MinProposalPeriod uint64
	MaxProposalPeriod uint64
	ProposalLatency   uint64
	ProposalGrace     uint64
	MinProposalDeposit uint64
}

func (q *Querier) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	return q.policy.Do(ctx, func() error {
		return q.client.Call(ctx, method, params, out)
	})
}

// Balance returns alias's on-chain address and its denom balance.
func (q *Querier) Balance(ctx context.Context, a alias.Alias, denom string) (addr string, amount uint64, err error) {
	var resp struct {
		Address string `json:"address"`
		Amount  uint64 `json:"amount"`
	}
	if err := q.call(ctx, "workload_balance", []interface{}{a.Name(), denom}, &resp); err != nil {
		return "", 0, fmt.Errorf("chainquery: balance(%s,%s): %w", a, denom, err)
	}
	return resp.Address, resp.Amount, nil
}

// Bond returns the bonded amount between source and validator as observed
// at the given epoch. Callers pass the current epoch plus 2, the chain's
// pipeline-length delay before a bond takes effect.
func (q *Querier) Bond(ctx context.Context, source alias.Alias, validator string, epoch uint64) (uint64, error) {
	var amount uint64
	if err := q.call(ctx, "workload_bond", []interface{}{source.Name(), validator, epoch}, &amount); err != nil {
		return 0, fmt.Errorf("chainquery: bond(%s,%s,%d): %w", source, validator, epoch, err)
	}
	return amount, nil
}

// Epoch returns the chain's current epoch.
func (q *Querier) Epoch(ctx context.Context) (uint64, error) {
	var epoch uint64
	if err := q.call(ctx, "workload_epoch", nil, &epoch); err != nil {
		return 0, fmt.Errorf("chainquery: epoch: %w", err)
	}
	return epoch, nil
}

// MaspEpoch returns the chain's current MASP reward epoch, which may lag
// the ordinary epoch.
func (q *Querier) MaspEpoch(ctx context.Context) (uint64, error) {
	var epoch uint64
	if err := q.call(ctx, "workload_maspEpoch", nil, &epoch); err != nil {
		return 0, fmt.Errorf("chainquery: masp epoch: %w", err)
	}
	return epoch, nil
}

// BlockHeight returns the latest committed block height.
func (q *Querier) BlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	if err := q.call(ctx, "workload_blockHeight", nil, &height); err != nil {
		return 0, fmt.Errorf("chainquery: block height: %w", err)
	}
	return height, nil
}

// PkRevealed reports whether alias's public key has been revealed on
// chain, a precondition for several transaction kinds.
func (q *Querier) PkRevealed(ctx context.Context, a alias.Alias) (bool, error) {
	var revealed bool
	if err := q.call(ctx, "workload_pkRevealed", []interface{}{a.Name()}, &revealed); err != nil {
		return false, fmt.Errorf("chainquery: pk revealed(%s): %w", a, err)
	}
	return revealed, nil
}

// AccountInfo returns an established account's threshold and public-key
// set, or ok=false if the account does not yet exist on chain.
func (q *Querier) AccountInfo(ctx context.Context, a alias.Alias) (info AccountInfo, ok bool, err error) {
	var resp struct {
		Found      bool     `json:"found"`
		Threshold  uint64   `json:"threshold"`
		PublicKeys []string `json:"public_keys"`
	}
	if err := q.call(ctx, "workload_accountInfo", []interface{}{a.Name()}, &resp); err != nil {
		return AccountInfo{}, false, fmt.Errorf("chainquery: account info(%s): %w", a, err)
	}
	if !resp.Found {
		return AccountInfo{}, false, nil
	}
	return AccountInfo{Threshold: resp.Threshold, PublicKeys: resp.PublicKeys}, true, nil
}

// ValidatorStateAt returns alias's validator state at epoch, or ok=false if
// alias is not a validator.
func (q *Querier) ValidatorStateAt(ctx context.Context, a alias.Alias, epoch uint64) (state ValidatorState, ok bool, err error) {
	var resp struct {
		Found bool           `json:"found"`
		State ValidatorState `json:"state"`
	}
	if err := q.call(ctx, "workload_validatorState", []interface{}{a.Name(), epoch}, &resp); err != nil {
		return "", false, fmt.Errorf("chainquery: validator state(%s,%d): %w", a, epoch, err)
	}
	if !resp.Found {
		return "", false, nil
	}
	return resp.State, true, nil
}

// ShieldedBalance returns the shielded native balance for alias, optionally
// pinned to a specific height, or ok=false if the indexer has no answer
// yet (still catching up).
func (q *Querier) ShieldedBalance(ctx context.Context, a alias.Alias, height *uint64) (amount uint64, ok bool, err error) {
	var h interface{}
	if height != nil {
		h = *height
	}
	var resp struct {
		Found  bool   `json:"found"`
		Amount uint64 `json:"amount"`
	}
	if err := q.call(ctx, "workload_shieldedBalance", []interface{}{a.Name(), h}, &resp); err != nil {
		return 0, false, fmt.Errorf("chainquery: shielded balance(%s): %w", a, err)
	}
	return resp.Amount, resp.Found, nil
}

// GovernanceParams returns the chain's current proposal timing and deposit
// parameters.
func (q *Querier) GovernanceParams(ctx context.Context) (GovernanceParameters, error) {
	var p GovernanceParameters
	if err := q.call(ctx, "workload_governanceParameters", nil, &p); err != nil {
		return GovernanceParameters{}, fmt.Errorf("chainquery: governance parameters: %w", err)
	}
	return p, nil
}

// VoteRecorded asserts voter's ballot on proposalID was recorded on-chain
// with the given choice.
func (q *Querier) VoteRecorded(ctx context.Context, proposalID uint64, voter alias.Alias, choice string) error {
	var resp struct {
		Recorded bool   `json:"recorded"`
		Choice   string `json:"choice"`
	}
	if err := q.call(ctx, "workload_voteRecorded", []interface{}{proposalID, voter.Name()}, &resp); err != nil {
		return fmt.Errorf("chainquery: vote recorded(%d,%s): %w", proposalID, voter, err)
	}
	if !resp.Recorded {
		return fmt.Errorf("chainquery: vote not recorded for proposal %d, voter %s", proposalID, voter)
	}
	if resp.Choice != choice {
		return fmt.Errorf("chainquery: vote choice mismatch for proposal %d, voter %s: got %s, want %s", proposalID, voter, resp.Choice, choice)
	}
	return nil
}

// WaitBlockSettlement blocks until the chain's latest committed height is
// strictly greater than h, polling every pollInterval. Used after a
// successful execution (to let it settle for observation) and after a
// broadcast failure (to let mempool contention clear).
func (q *Querier) WaitBlockSettlement(ctx context.Context, h uint64, pollInterval time.Duration) error {
	for {
		height, err := q.BlockHeight(ctx)
		if err != nil {
			return err
		}
		if height > h {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
