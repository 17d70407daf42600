package step

import (
	"context"
	"sort"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

type initAccount struct{}

var InitAccount = register(initAccount{})

func (initAccount) Name() string                               { return "InitAccount" }
func (initAccount) IsValid(s *wstate.State, epoch uint64) bool { return s.MinNImplicitAccounts(3) }
func (initAccount) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	signers, ok := s.RandomImplicitAccounts(nil, 3)
	if !ok {
		return nil, nil
	}
	signerAliases := make([]alias.Alias, len(signers))
	for i, acc := range signers {
		signerAliases[i] = acc.Alias
	}
	newAccount := freshAlias("established", s)
	payer := signers[0].Alias
	return []task.Task{task.NewInitAccount(newAccount, signerAliases, uint64(len(signerAliases)), payer)}, nil
}

type updateAccount struct{}

var UpdateAccount = register(updateAccount{})

func (updateAccount) Name() string { return "UpdateAccount" }
func (updateAccount) IsValid(s *wstate.State, epoch uint64) bool {
	return s.MinNEstablishedAccounts(1) && s.MinNImplicitAccounts(3)
}
func (updateAccount) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	account, ok := s.RandomEstablishedAccount(nil, 1)
	if !ok {
		return nil, nil
	}
	signers, ok := s.RandomImplicitAccounts(nil, 3)
	if !ok {
		return nil, nil
	}
	signerAliases := make([]alias.Alias, len(signers))
	for i, acc := range signers {
		signerAliases[i] = acc.Alias
	}
	return []task.Task{task.NewUpdateAccount(account.Alias, signerAliases, uint64(len(signerAliases)))}, nil
}

type becomeValidator struct{}

var BecomeValidator = register(becomeValidator{})

func (becomeValidator) Name() string                               { return "BecomeValidator" }
func (becomeValidator) IsValid(s *wstate.State, epoch uint64) bool { return s.MinNEstablishedAccounts(1) }
func (becomeValidator) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	account, ok := s.RandomEstablishedAccount(nil, 1)
	if !ok {
		return nil, nil
	}
	return []task.Task{task.NewBecomeValidator(account.Alias, epoch)}, nil
}

type changeMetadata struct{}

var ChangeMetadata = register(changeMetadata{})

func (changeMetadata) Name() string                               { return "ChangeMetadata" }
func (changeMetadata) IsValid(s *wstate.State, epoch uint64) bool { return s.MinNValidators(1) }
func (changeMetadata) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	validator, ok := randomValidatorAlias(s)
	if !ok {
		return nil, nil
	}
	return []task.Task{task.NewChangeMetadata(validator)}, nil
}

type changeConsensusKey struct{}

var ChangeConsensusKey = register(changeConsensusKey{})

func (changeConsensusKey) Name() string                               { return "ChangeConsensusKeys" }
func (changeConsensusKey) IsValid(s *wstate.State, epoch uint64) bool { return s.MinNValidators(1) }
func (changeConsensusKey) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	validator, ok := randomValidatorAlias(s)
	if !ok {
		return nil, nil
	}
	return []task.Task{task.NewChangeConsensusKey(validator)}, nil
}

type deactivateValidator struct{}

var DeactivateValidator = register(deactivateValidator{})

func (deactivateValidator) Name() string                               { return "DeactivateValidator" }
func (deactivateValidator) IsValid(s *wstate.State, epoch uint64) bool { return s.MinNValidators(1) }
func (deactivateValidator) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	validator, ok := randomValidatorAlias(s)
	if !ok {
		return nil, nil
	}
	return []task.Task{task.NewDeactivateValidator(validator, epoch)}, nil
}

type reactivateValidator struct{}

var ReactivateValidator = register(reactivateValidator{})

func (reactivateValidator) Name() string { return "ReactivateValidator" }
func (reactivateValidator) IsValid(s *wstate.State, epoch uint64) bool {
	return s.MinNDeactivatedValidators(1)
}
func (reactivateValidator) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	validator, ok := s.RandomDeactivatedValidator(nil, 1)
	if !ok {
		return nil, nil
	}
	return []task.Task{task.NewReactivateValidator(validator.Alias, epoch)}, nil
}

// randomValidatorAlias samples a uniformly random alias from the local
// active-validator set.
func randomValidatorAlias(s *wstate.State) (alias.Alias, bool) {
	validators := s.Validators
	if len(validators) == 0 {
		return alias.Alias{}, false
	}
	names := make([]alias.Alias, 0, len(validators))
	for a := range validators {
		names = append(names, a)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name() < names[j].Name() })
	idx := int(s.RandomUint64Between(0, uint64(len(names)-1)))
	return names[idx], true
}
