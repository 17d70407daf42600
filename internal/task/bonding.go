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

// Bond delegates amount native tokens from source to validator at the
// current epoch.
type Bond struct {
	Source    alias.Alias
	Validator string
	Amount    uint64
	Epoch     uint64
	settings  Settings
}

func NewBond(source alias.Alias, validator string, amount, epoch uint64) *Bond {
	return &Bond{Source: source, Validator: validator, Amount: amount, Epoch: epoch, settings: NewSettings([]alias.Alias{source}, source)}
}

func (t *Bond) Name() string    { return "Bond" }
func (t *Bond) Summary() string { return fmt.Sprintf("bond/%s/%s/%d", t.Source, t.Validator, t.Amount) }
func (t *Bond) Settings() Settings { return t.settings }

func (t *Bond) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "validator": t.Validator, "amount": t.Amount},
	})
}

func (t *Bond) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	_, preBalance, err := q.Balance(ctx, t.Source, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	preBond, err := q.Bond(ctx, t.Source, t.Validator, t.Epoch+2)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{
		check.BalanceSource{Alias: t.Source, Pre: preBalance, Amount: t.Amount, Denom: alias.NativeDenom},
		check.BondIncrease{Alias: t.Source, Validator: t.Validator, Pre: preBond, Epoch: t.Epoch, Amount: t.Amount},
	}, nil
}

func (t *Bond) Apply(s *wstate.State) {
	_ = s.DecreaseBalance(t.Source, alias.NativeDenom, t.Amount)
	s.ModifyBond(t.Source, t.Validator, t.Epoch, t.Amount)
}

func (t *Bond) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}

// Unbond withdraws amount from an existing bond between source and
// validator. Amount is guaranteed <= the existing bonded total by
// construction (step's build_tasks samples it from the bond record).
type Unbond struct {
	Source    alias.Alias
	Validator string
	Amount    uint64
	Epoch     uint64
	settings  Settings
}

func NewUnbond(source alias.Alias, validator string, amount, epoch uint64) *Unbond {
	return &Unbond{Source: source, Validator: validator, Amount: amount, Epoch: epoch, settings: NewSettings([]alias.Alias{source}, source)}
}

func (t *Unbond) Name() string { return "Unbond" }
func (t *Unbond) Summary() string {
	return fmt.Sprintf("unbond/%s/%s/%d", t.Source, t.Validator, t.Amount)
}
func (t *Unbond) Settings() Settings { return t.settings }

func (t *Unbond) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "validator": t.Validator, "amount": t.Amount},
	})
}

func (t *Unbond) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	preBond, err := q.Bond(ctx, t.Source, t.Validator, t.Epoch+2)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{check.BondDecrease{Alias: t.Source, Validator: t.Validator, Pre: preBond, Epoch: t.Epoch, Amount: t.Amount}}, nil
}

func (t *Unbond) Apply(s *wstate.State) {
	_ = s.ModifyUnbond(t.Source, t.Validator, t.Epoch, t.Amount)
}

func (t *Unbond) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}

// Redelegate moves amount from an existing bond with fromValidator to a
// new bond with toValidator, in a single on-chain transaction.
type Redelegate struct {
	Source        alias.Alias
	FromValidator string
	ToValidator   string
	Amount        uint64
	Epoch         uint64
	settings      Settings
}

func NewRedelegate(source alias.Alias, from, to string, amount, epoch uint64) *Redelegate {
	return &Redelegate{Source: source, FromValidator: from, ToValidator: to, Amount: amount, Epoch: epoch,
		settings: NewSettings([]alias.Alias{source}, source).WithGasMultiplier(5)}
}

func (t *Redelegate) Name() string { return "Redelegate" }
func (t *Redelegate) Summary() string {
	return fmt.Sprintf("redelegate/%s/%s/%s/%d", t.Source, t.FromValidator, t.ToValidator, t.Amount)
}
func (t *Redelegate) Settings() Settings { return t.settings }

func (t *Redelegate) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "from": t.FromValidator, "to": t.ToValidator, "amount": t.Amount},
	})
}

func (t *Redelegate) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	preFrom, err := q.Bond(ctx, t.Source, t.FromValidator, t.Epoch+2)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	preTo, err := q.Bond(ctx, t.Source, t.ToValidator, t.Epoch+2)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	return []check.Check{
		check.BondDecrease{Alias: t.Source, Validator: t.FromValidator, Pre: preFrom, Epoch: t.Epoch, Amount: t.Amount},
		check.BondIncrease{Alias: t.Source, Validator: t.ToValidator, Pre: preTo, Epoch: t.Epoch, Amount: t.Amount},
	}, nil
}

func (t *Redelegate) Apply(s *wstate.State) {
	_ = s.ModifyUnbond(t.Source, t.FromValidator, t.Epoch, t.Amount)
	s.ModifyBond(t.Source, t.ToValidator, t.Epoch, t.Amount)
}

func (t *Redelegate) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}

// ClaimRewards withdraws accrued bonding rewards for source's bond with
// validator into source's transparent balance.
type ClaimRewards struct {
	Source    alias.Alias
	Validator string
	Epoch     uint64
	settings  Settings
}

func NewClaimRewards(source alias.Alias, validator string, epoch uint64) *ClaimRewards {
	return &ClaimRewards{Source: source, Validator: validator, Epoch: epoch,
		settings: NewSettings([]alias.Alias{source}, source).WithGasMultiplier(5)}
}

func (t *ClaimRewards) Name() string { return "ClaimRewards" }
func (t *ClaimRewards) Summary() string {
	return fmt.Sprintf("claim-rewards/%s/%s", t.Source, t.Validator)
}
func (t *ClaimRewards) Settings() Settings { return t.settings }

func (t *ClaimRewards) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Source.Name()}, Payer: t.Source.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"source": t.Source.Name(), "validator": t.Validator},
	})
}

func (t *ClaimRewards) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	_, pre, err := q.Balance(ctx, t.Source, alias.NativeDenom)
	if err != nil {
		return nil, fmt.Errorf("build checks %s: %w", t.Summary(), err)
	}
	// The reward amount is not known until the transaction is applied;
	// the check only asserts the balance did not decrease past fees, via
	// AllowGreater.
	return []check.Check{check.BalanceTarget{Alias: t.Source, Pre: pre, Amount: 0, Denom: alias.NativeDenom, AllowGreater: true}}, nil
}

func (t *ClaimRewards) Apply(s *wstate.State) {
	s.SetClaimedEpoch(t.Source, t.Epoch)
}

func (t *ClaimRewards) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.settings.Payer, applied)
}
