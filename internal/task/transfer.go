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

// NewWalletKeyPair generates a fresh implicit account and registers it in
// the wallet. Unlike every other task kind it has no on-chain transaction
// of its own: BuildTx returns no transaction, and the executor generates
// the key pair and stores it in the wallet directly.
type NewWalletKeyPair struct {
	Source   alias.Alias
	settings Settings
}

// NewNewWalletKeyPair constructs the task for a freshly chosen alias name.
func NewNewWalletKeyPair(source alias.Alias) *NewWalletKeyPair {
	return &NewWalletKeyPair{Source: source, settings: FaucetSettings()}
}

func (t *NewWalletKeyPair) Name() string      { return "NewWalletKeyPair" }
func (t *NewWalletKeyPair) Summary() string   { return fmt.Sprintf("wallet-key-pair/%s", t.Source) }
func (t *NewWalletKeyPair) Settings() Settings { return t.settings }

func (t *NewWalletKeyPair) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return nil, nil
}

func (t *NewWalletKeyPair) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return nil, nil
}

func (t *NewWalletKeyPair) Apply(s *wstate.State) { s.AddImplicitAccount(t.Source) }

func (t *NewWalletKeyPair) AggregateFees(fees map[alias.Alias]uint64, applied bool) {}

// FaucetTransfer funds target with amount native tokens from the
// unlimited faucet.
type FaucetTransfer struct {
	Target   alias.Alias
	Amount   uint64
	settings Settings
}

func NewFaucetTransfer(target alias.Alias, amount uint64) *FaucetTransfer {
	return &FaucetTransfer{Target: target, Amount: amount, settings: FaucetSettings()}
}

func (t *FaucetTransfer) Name() string      { return "FaucetTransfer" }
func (t *FaucetTransfer) Summary() string   { return fmt.Sprintf("faucet-transfer/%s/%d", t.Target, t.Amount) }
func (t *FaucetTransfer) Settings() Settings { return t.settings }

func (t *FaucetTransfer) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind:     t.Name(),
		Signers:  []string{alias.Faucet.Name()},
		Payer:    alias.Faucet.Name(),
		GasLimit: t.settings.GasLimit,
		Args:     map[string]interface{}{"target": t.Target.Name(), "amount": t.Amount, "denom": alias.NativeDenom},
	})
}

func (t *FaucetTransfer) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	_, pre, err := q.Balance(ctx, t.Target, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{check.BalanceTarget{Alias: t.Target, Pre: pre, Amount: t.Amount, Denom: alias.NativeDenom}}, nil
}

func (t *FaucetTransfer) Apply(s *wstate.State) {
	_ = s.IncreaseBalance(t.Target, alias.NativeDenom, t.Amount)
}

func (t *FaucetTransfer) AggregateFees(fees map[alias.Alias]uint64, applied bool) {}

// TransparentTransfer moves amount native tokens from source to target.
type TransparentTransfer struct {
	Source   alias.Alias
	Target   alias.Alias
	Amount   uint64
	settings Settings
}

func NewTransparentTransfer(source, target alias.Alias, amount uint64) *TransparentTransfer {
	return &TransparentTransfer{Source: source, Target: target, Amount: amount, settings: NewSettings([]alias.Alias{source}, source)}
}

func (t *TransparentTransfer) Name() string { return "TransparentTransfer" }
func (t *TransparentTransfer) Summary() string {
	return fmt.Sprintf("transparent-transfer/%s/%s/%d", t.Source, t.Target, t.Amount)
}
func (t *TransparentTransfer) Settings() Settings { return t.settings }

func (t *TransparentTransfer) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind:     t.Name(),
		Signers:  []string{t.Source.Name()},
		Payer:    t.Source.Name(),
		GasLimit: t.settings.GasLimit,
		Args:     map[string]interface{}{"source": t.Source.Name(), "target": t.Target.Name(), "amount": t.Amount, "denom": alias.NativeDenom},
	})
}

func (t *TransparentTransfer) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	_, preSource, err := q.Balance(ctx, t.Source, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	_, preTarget, err := q.Balance(ctx, t.Target, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{
		check.BalanceSource{Alias: t.Source, Pre: preSource, Amount: t.Amount, Denom: alias.NativeDenom},
		check.BalanceTarget{Alias: t.Target, Pre: preTarget, Amount: t.Amount, Denom: alias.NativeDenom, AllowGreater: t.Source == t.Target},
	}, nil
}

func (t *TransparentTransfer) Apply(s *wstate.State) {
	_ = s.DecreaseBalance(t.Source, alias.NativeDenom, t.Amount)
	_ = s.IncreaseBalance(t.Target, alias.NativeDenom, t.Amount)
}

func (t *TransparentTransfer) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}
