package step

import (
	"context"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

type shielding struct{}

var Shielding = register(shielding{})

func (shielding) Name() string { return "Shielding" }
func (shielding) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AnyAccountWithMinBalance(wstate.MinTransferBalance) && s.AtLeastMASPAccounts(1)
}
func (shielding) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	source, ok := s.RandomAccountWithMinBalance(nil, wstate.MinTransferBalance)
	if !ok {
		return nil, nil
	}
	target, ok := s.RandomPaymentAddress(nil)
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetBalanceFor(source.Alias))
	paymentAddress := alias.Derive(target, alias.PaymentAddress)
	return []task.Task{task.NewShielding(source.Alias, paymentAddress, amount)}, nil
}

type shieldedTransfer struct{}

var ShieldedTransfer = register(shieldedTransfer{})

func (shieldedTransfer) Name() string { return "ShieldedTransfer" }
func (shieldedTransfer) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AtLeastMASPAccountWithMinimalBalance(1, wstate.MinTransferBalance) && s.AtLeastMASPAccounts(2)
}
func (shieldedTransfer) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	source, ok := s.RandomPaymentAddress(nil)
	if !ok {
		return nil, nil
	}
	if s.GetShieldedBalanceFor(source) < wstate.MinTransferBalance {
		return nil, nil
	}
	target, ok := s.RandomPaymentAddress([]alias.Alias{source})
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetShieldedBalanceFor(source))
	return []task.Task{task.NewShieldedTransfer(source, alias.Derive(target, alias.PaymentAddress), amount)}, nil
}

type unshielding struct{}

var Unshielding = register(unshielding{})

func (unshielding) Name() string { return "Unshielding" }
func (unshielding) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AtLeastMASPAccountWithMinimalBalance(1, wstate.MinTransferBalance)
}
func (unshielding) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	source, ok := s.RandomPaymentAddress(nil)
	if !ok {
		return nil, nil
	}
	if s.GetShieldedBalanceFor(source) < wstate.MinTransferBalance {
		return nil, nil
	}
	target, ok := s.RandomAccount(nil)
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetShieldedBalanceFor(source))
	return []task.Task{task.NewUnshielding(source, target.Alias, amount)}, nil
}
