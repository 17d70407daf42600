package step

import (
	"context"
	"sort"

	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

// genesisValidator is the fallback bonding target used before any
// BecomeValidator step has produced a locally known validator, mirroring
// every reference chain's pre-funded genesis validator set.
const genesisValidator = "genesis-validator-1"

func pickValidatorTarget(s *wstate.State) string {
	validators := s.Validators
	if len(validators) == 0 {
		return genesisValidator
	}
	// Validators is a set keyed by alias; names are sorted before sampling
	// so the drawn index maps to the same validator for a given RNG state
	// (map iteration order is not stable).
	names := make([]string, 0, len(validators))
	for a := range validators {
		names = append(names, a.Name())
	}
	sort.Strings(names)
	idx := int(s.RandomUint64Between(0, uint64(len(names)-1)))
	return names[idx]
}

type bond struct{}

var Bond = register(bond{})

func (bond) Name() string { return "Bond" }
func (bond) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AnyAccountWithMinBalance(wstate.MinTransferBalance)
}
func (bond) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	source, ok := s.RandomAccountWithMinBalance(nil, wstate.MinTransferBalance)
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetBalanceFor(source.Alias))
	return []task.Task{task.NewBond(source.Alias, pickValidatorTarget(s), amount, epoch)}, nil
}

type unbond struct{}

var Unbond = register(unbond{})

func (unbond) Name() string                               { return "Unbond" }
func (unbond) IsValid(s *wstate.State, epoch uint64) bool { return s.AnyBond() }
func (unbond) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	b, ok := s.RandomBond()
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(1, b.Amount)
	return []task.Task{task.NewUnbond(b.Source, b.Validator, amount, epoch)}, nil
}

type redelegate struct{}

var Redelegate = register(redelegate{})

func (redelegate) Name() string { return "Redelegate" }
func (redelegate) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AnyBond() && s.MinNValidators(2)
}
func (redelegate) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	b, ok := s.RandomBond()
	if !ok {
		return nil, nil
	}
	existingTargets := s.GetRedelegationsTargetsFor(b.Source)
	to := pickValidatorTarget(s)
	for attempt := 0; attempt < 8; attempt++ {
		if _, already := existingTargets[to]; !already && to != b.Validator {
			break
		}
		to = pickValidatorTarget(s)
	}
	if to == b.Validator {
		return nil, nil
	}
	amount := s.RandomUint64Between(1, b.Amount)
	return []task.Task{task.NewRedelegate(b.Source, b.Validator, to, amount, epoch)}, nil
}

type claimRewards struct{}

var ClaimRewards = register(claimRewards{})

func (claimRewards) Name() string                               { return "ClaimRewards" }
func (claimRewards) IsValid(s *wstate.State, epoch uint64) bool { return s.AnyBond() }
func (claimRewards) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	b, ok := s.RandomBond()
	if !ok {
		return nil, nil
	}
	return []task.Task{task.NewClaimRewards(b.Source, b.Validator, epoch)}, nil
}
