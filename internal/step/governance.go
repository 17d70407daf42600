package step

import (
	"context"

	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

type defaultProposal struct{}

var DefaultProposal = register(defaultProposal{})

func (defaultProposal) Name() string { return "DefaultProposal" }
func (defaultProposal) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AnyAccountWithMinBalance(wstate.MinProposalDeposit)
}
func (defaultProposal) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	author, ok := s.RandomAccountWithMinBalance(nil, wstate.MinProposalDeposit)
	if !ok {
		return nil, nil
	}
	params, err := q.GovernanceParams(ctx)
	if err != nil {
		return nil, err
	}
	id := nextProposalID(s)
	activation := epoch + params.MinProposalPeriod
	votingStart := epoch + 1
	votingEnd := votingStart + params.MinProposalPeriod
	return []task.Task{task.NewDefaultProposal(id, author.Alias, wstate.MinProposalDeposit, activation, votingStart, votingEnd)}, nil
}

// nextProposalID picks one past the largest proposal id known locally; the
// chain is the source of truth for the assigned id, but build_tasks must
// pick one deterministically from local state alone.
func nextProposalID(s *wstate.State) uint64 {
	var max uint64
	for id := range s.Proposals {
		if id > max {
			max = id
		}
	}
	return max + 1
}

type voteProposal struct{}

var VoteProposal = register(voteProposal{})

func (voteProposal) Name() string { return "VoteProposal" }
func (voteProposal) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AnyBond() && s.AnyVotableProposal(epoch)
}
func (voteProposal) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	proposal, ok := s.RandomVotableProposal(epoch)
	if !ok {
		return nil, nil
	}
	b, ok := s.RandomBond()
	if !ok {
		return nil, nil
	}
	choice := []wstate.VoteChoice{wstate.VoteYay, wstate.VoteNay, wstate.VoteAbstain}[s.RandomUint64Between(0, 2)]
	return []task.Task{task.NewVote(proposal.ID, b.Source, choice)}, nil
}
