package step

import (
	"context"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

type batchBond struct{}

var BatchBond = register(batchBond{})

func (batchBond) Name() string { return "BatchBond" }
func (batchBond) IsValid(s *wstate.State, epoch uint64) bool {
	return atLeastNAccountsWithMinBalance(s, 3, wstate.MinTransferBalance)
}
func (batchBond) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	sources, ok := randomAccountsWithMinBalance(s, 3, wstate.MinTransferBalance)
	if !ok {
		return nil, nil
	}
	tasks := make([]task.BatchTask, 0, len(sources))
	signers := make([]alias.Alias, 0, len(sources))
	for _, source := range sources {
		amount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetBalanceFor(source))
		tasks = append(tasks, task.NewBond(source, pickValidatorTarget(s), amount, epoch))
		signers = append(signers, source)
	}
	settings := task.NewSettings(signers, sources[0]).WithGasMultiplier(uint64(len(tasks)))
	return []task.Task{task.NewBatch(tasks, settings)}, nil
}

type batchRandom struct{}

var BatchRandom = register(batchRandom{})

func (batchRandom) Name() string { return "BatchRandom" }
func (batchRandom) IsValid(s *wstate.State, epoch uint64) bool {
	return atLeastNAccountsWithMinBalance(s, 3, wstate.MinTransferBalance) && s.MinBonds(3)
}
func (batchRandom) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	accounts, ok := randomAccountsWithMinBalance(s, 3, wstate.MinTransferBalance)
	if !ok {
		return nil, nil
	}
	a, b, c := accounts[0], accounts[1], accounts[2]

	transferAmount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetBalanceFor(a))
	bondAmount := s.RandomUint64Between(1, maxUint64(1, s.GetBalanceFor(a)-transferAmount))
	shieldAmount := s.RandomUint64Between(1, 1+bondAmount)

	paymentTarget, ok := s.RandomPaymentAddress(nil)
	if !ok {
		paymentTarget = c
	}

	tasks := []task.BatchTask{
		task.NewTransparentTransfer(a, b, transferAmount),
		task.NewBond(a, pickValidatorTarget(s), bondAmount, epoch),
		task.NewShielding(a, alias.Derive(paymentTarget, alias.PaymentAddress), shieldAmount),
	}
	settings := task.NewSettings([]alias.Alias{a}, a).WithGasMultiplier(uint64(len(tasks)))
	return []task.Task{task.NewBatch(tasks, settings)}, nil
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// atLeastNAccountsWithMinBalance counts candidates without touching the
// RNG, so it is safe to call from IsValid (a pure function of local state).
func atLeastNAccountsWithMinBalance(s *wstate.State, n int, m uint64) bool {
	count := 0
	for a := range s.Accounts {
		if s.GetBalanceFor(a) >= m {
			count++
			if count >= n {
				return true
			}
		}
	}
	return false
}

// randomAccountsWithMinBalance samples n distinct accounts each holding at
// least m native tokens, drawing each from the state's RNG in turn and
// excluding earlier picks from later draws.
func randomAccountsWithMinBalance(s *wstate.State, n int, m uint64) ([]alias.Alias, bool) {
	picked := make([]alias.Alias, 0, n)
	for len(picked) < n {
		acc, ok := s.RandomAccountWithMinBalance(picked, m)
		if !ok {
			return nil, false
		}
		picked = append(picked, acc.Alias)
	}
	return picked, true
}
