package step

import (
	"context"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

type newWalletKeyPair struct{}

// NewWalletKeyPair is registered at package init.
var NewWalletKeyPair = register(newWalletKeyPair{})

func (newWalletKeyPair) Name() string                               { return "NewWalletKeyPair" }
func (newWalletKeyPair) IsValid(s *wstate.State, epoch uint64) bool { return true }
func (newWalletKeyPair) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	return []task.Task{task.NewNewWalletKeyPair(freshAlias("wallet", s))}, nil
}

type faucetTransfer struct{}

var FaucetTransfer = register(faucetTransfer{})

func (faucetTransfer) Name() string { return "FaucetTransfer" }

// IsValid needs an account besides the faucet itself, which is always
// present in state; the faucet is never its own transfer target.
func (faucetTransfer) IsValid(s *wstate.State, epoch uint64) bool { return s.AtLeastAccounts(2) }
func (faucetTransfer) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	target, ok := s.RandomAccount([]alias.Alias{alias.Faucet})
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(wstate.MinTransferBalance, wstate.MinTransferBalance*1000)
	return []task.Task{task.NewFaucetTransfer(target.Alias, amount)}, nil
}

type transparentTransfer struct{}

var TransparentTransfer = register(transparentTransfer{})

func (transparentTransfer) Name() string { return "TransparentTransfer" }
func (transparentTransfer) IsValid(s *wstate.State, epoch uint64) bool {
	return s.AtLeastAccounts(2) && s.AnyAccountWithMinBalance(wstate.MinTransferBalance)
}
func (transparentTransfer) BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error) {
	source, ok := s.RandomAccountWithMinBalance(nil, wstate.MinTransferBalance)
	if !ok {
		return nil, nil
	}
	target, ok := s.RandomAccount([]alias.Alias{source.Alias})
	if !ok {
		return nil, nil
	}
	amount := s.RandomUint64Between(wstate.MinTransferBalance, s.GetBalanceFor(source.Alias))
	return []task.Task{task.NewTransparentTransfer(source.Alias, target.Alias, amount)}, nil
}
