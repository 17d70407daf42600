package task

import (
	"context"
	"fmt"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/check"
	"namadrift/internal/sdk"
	"namadrift/internal/wstate"
)

// DefaultProposal submits a minimal governance proposal funded by the
// chain's minimum deposit, using the queried governance parameters to pick
// activation and voting-window epochs.
type DefaultProposal struct {
	ID               uint64
	Author           alias.Alias
	Deposit          uint64
	ActivationEpoch  uint64
	VotingStartEpoch uint64
	VotingEndEpoch   uint64
	settings         Settings
}

func NewDefaultProposal(id uint64, author alias.Alias, deposit uint64, activation, votingStart, votingEnd uint64) *DefaultProposal {
	return &DefaultProposal{
		ID: id, Author: author, Deposit: deposit,
		ActivationEpoch: activation, VotingStartEpoch: votingStart, VotingEndEpoch: votingEnd,
		settings: NewSettings([]alias.Alias{author}, author),
	}
}

func (t *DefaultProposal) Name() string    { return "DefaultProposal" }
func (t *DefaultProposal) Summary() string { return fmt.Sprintf("default-proposal/%d/%s", t.ID, t.Author) }
func (t *DefaultProposal) Settings() Settings { return t.settings }

func (t *DefaultProposal) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Author.Name()}, Payer: t.Author.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{
			"author": t.Author.Name(), "deposit": t.Deposit,
			"activation_epoch": t.ActivationEpoch, "voting_start_epoch": t.VotingStartEpoch, "voting_end_epoch": t.VotingEndEpoch,
		},
	})
}

func (t *DefaultProposal) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	_, pre, err := q.Balance(ctx, t.Author, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{check.BalanceSource{Alias: t.Author, Pre: pre, Amount: t.Deposit, Denom: alias.NativeDenom}}, nil
}

func (t *DefaultProposal) Apply(s *wstate.State) {
	_ = s.DecreaseBalance(t.Author, alias.NativeDenom, t.Deposit)
	s.InsertProposal(wstate.Proposal{
		ID: t.ID, ActivationEpoch: t.ActivationEpoch, VotingStartEpoch: t.VotingStartEpoch, VotingEndEpoch: t.VotingEndEpoch,
	})
}

func (t *DefaultProposal) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Author, applied)
}

// Vote casts a governance ballot from an existing bonded voter.
type Vote struct {
	ProposalID uint64
	Voter      alias.Alias
	Choice     wstate.VoteChoice
	settings   Settings
}

func NewVote(proposalID uint64, voter alias.Alias, choice wstate.VoteChoice) *Vote {
	return &Vote{ProposalID: proposalID, Voter: voter, Choice: choice,
		settings: NewSettings([]alias.Alias{voter}, voter).WithGasMultiplier(5)}
}

func (t *Vote) Name() string    { return "Vote" }
func (t *Vote) Summary() string { return fmt.Sprintf("vote/%d/%s/%s", t.ProposalID, t.Voter, t.Choice) }
func (t *Vote) Settings() Settings { return t.settings }

func (t *Vote) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Voter.Name()}, Payer: t.Voter.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"proposal_id": t.ProposalID, "voter": t.Voter.Name(), "choice": string(t.Choice)},
	})
}

func (t *Vote) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return []check.Check{check.VoteResult{ProposalID: t.ProposalID, Voter: t.Voter, Choice: string(t.Choice)}}, nil
}

func (t *Vote) Apply(s *wstate.State) { s.RecordVote(t.ProposalID, t.Voter, t.Choice) }

func (t *Vote) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Voter, applied)
}
