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

// Shielding moves amount native tokens from a transparent source into a
// MASP payment address, shielding it.
type Shielding struct {
	Source         alias.Alias
	PaymentAddress alias.Alias
	Amount         uint64
	settings       Settings
}

func NewShielding(source, paymentAddress alias.Alias, amount uint64) *Shielding {
	return &Shielding{Source: source, PaymentAddress: paymentAddress, Amount: amount, settings: NewSettings([]alias.Alias{source}, source)}
}

func (t *Shielding) Name() string { return "Shielding" }
func (t *Shielding) Summary() string {
	return fmt.Sprintf("shielding/%s/%s/%d", t.Source, t.PaymentAddress, t.Amount)
}
func (t *Shielding) Settings() Settings { return t.settings }

func (t *Shielding) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "target": t.PaymentAddress.Name(), "amount": t.Amount},
	})
}

func (t *Shielding) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	_, preBalance, err := q.Balance(ctx, t.Source, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	base := t.PaymentAddress.Base()
	preShielded, _, err := q.ShieldedBalance(ctx, base, nil)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{
		check.BalanceSource{Alias: t.Source, Pre: preBalance, Amount: t.Amount, Denom: alias.NativeDenom},
		check.BalanceShieldedTarget{Alias: base, Pre: preShielded, Amount: t.Amount},
	}, nil
}

func (t *Shielding) Apply(s *wstate.State) {
	_ = s.DecreaseBalance(t.Source, alias.NativeDenom, t.Amount)
	_ = s.IncreaseShieldedBalance(t.PaymentAddress.Base(), t.Amount)
}

func (t *Shielding) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}

// ShieldedTransfer moves amount shielded native tokens between two MASP
// accounts entirely within the shielded pool.
type ShieldedTransfer struct {
	Source         alias.Alias
	PaymentAddress alias.Alias
	Amount         uint64
	settings       Settings
}

func NewShieldedTransfer(source, paymentAddress alias.Alias, amount uint64) *ShieldedTransfer {
	return &ShieldedTransfer{Source: source, PaymentAddress: paymentAddress, Amount: amount, settings: NewSettings([]alias.Alias{source}, source)}
}

func (t *ShieldedTransfer) Name() string { return "ShieldedTransfer" }
func (t *ShieldedTransfer) Summary() string {
	return fmt.Sprintf("shielded-transfer/%s/%s/%d", t.Source, t.PaymentAddress, t.Amount)
}
func (t *ShieldedTransfer) Settings() Settings { return t.settings }

func (t *ShieldedTransfer) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "target": t.PaymentAddress.Name(), "amount": t.Amount},
	})
}

func (t *ShieldedTransfer) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	preSource, _, err := q.ShieldedBalance(ctx, t.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	base := t.PaymentAddress.Base()
	preTarget, _, err := q.ShieldedBalance(ctx, base, nil)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{
		check.BalanceShieldedSource{Alias: t.Source, Pre: preSource, Amount: t.Amount},
		check.BalanceShieldedTarget{Alias: base, Pre: preTarget, Amount: t.Amount},
	}, nil
}

func (t *ShieldedTransfer) Apply(s *wstate.State) {
	_ = s.DecreaseShieldedBalance(t.Source, t.Amount)
	_ = s.IncreaseShieldedBalance(t.PaymentAddress.Base(), t.Amount)
}

func (t *ShieldedTransfer) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}

// Unshielding moves amount native tokens out of the shielded pool into a
// transparent target account.
type Unshielding struct {
	Source   alias.Alias
	Target   alias.Alias
	Amount   uint64
	settings Settings
}

func NewUnshielding(source, target alias.Alias, amount uint64) *Unshielding {
	return &Unshielding{Source: source, Target: target, Amount: amount, settings: NewSettings([]alias.Alias{source}, source)}
}

func (t *Unshielding) Name() string { return "Unshielding" }
func (t *Unshielding) Summary() string {
	return fmt.Sprintf("unshielding/%s/%s/%d", t.Source, t.Target, t.Amount)
}
func (t *Unshielding) Settings() Settings { return t.settings }

func (t *Unshielding) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "target": t.Target.Name(), "amount": t.Amount},
	})
}

func (t *Unshielding) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	preSource, _, err := q.ShieldedBalance(ctx, t.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	_, preTarget, err := q.Balance(ctx, t.Target, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{
		check.BalanceShieldedSource{Alias: t.Source, Pre: preSource, Amount: t.Amount},
		check.BalanceTarget{Alias: t.Target, Pre: preTarget, Amount: t.Amount, Denom: alias.NativeDenom},
	}, nil
}

func (t *Unshielding) Apply(s *wstate.State) {
	_ = s.DecreaseShieldedBalance(t.Source, t.Amount)
	_ = s.IncreaseBalance(t.Target, alias.NativeDenom, t.Amount)
}

func (t *Unshielding) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}
