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

// InitAccount establishes a new multisig account whose signers are drawn
// from a set of existing implicit accounts.
type InitAccount struct {
	New       alias.Alias
	Signers   []alias.Alias
	Threshold uint64
	payer     alias.Alias
	settings  Settings
}

func NewInitAccount(newAccount alias.Alias, signers []alias.Alias, threshold uint64, payer alias.Alias) *InitAccount {
	return &InitAccount{New: newAccount, Signers: signers, Threshold: threshold, payer: payer, settings: NewSettings(signers, payer)}
}

func (t *InitAccount) Name() string    { return "InitAccount" }
func (t *InitAccount) Summary() string { return fmt.Sprintf("init-account/%s", t.New) }
func (t *InitAccount) Settings() Settings { return t.settings }

func (t *InitAccount) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	signerNames := make([]string, len(t.Signers))
	for i, s := range t.Signers {
		signerNames[i] = s.Name()
	}
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: signerNames, Payer: t.payer.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"new": t.New.Name(), "signers": signerNames, "threshold": t.Threshold},
	})
}

func (t *InitAccount) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return []check.Check{check.AccountExist{Alias: t.New, Threshold: t.Threshold, Signers: t.Signers}}, nil
}

func (t *InitAccount) Apply(s *wstate.State) {
	s.AddEstablishedAccount(t.New, t.Signers, t.Threshold)
}

func (t *InitAccount) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.payer, applied)
}

// UpdateAccount changes an established account's signer set and threshold.
type UpdateAccount struct {
	Account   alias.Alias
	Signers   []alias.Alias
	Threshold uint64
	settings  Settings
}

func NewUpdateAccount(account alias.Alias, signers []alias.Alias, threshold uint64) *UpdateAccount {
	return &UpdateAccount{Account: account, Signers: signers, Threshold: threshold, settings: NewSettings(signers, account)}
}

func (t *UpdateAccount) Name() string    { return "UpdateAccount" }
func (t *UpdateAccount) Summary() string { return fmt.Sprintf("update-account/%s", t.Account) }
func (t *UpdateAccount) Settings() Settings { return t.settings }

func (t *UpdateAccount) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	signerNames := make([]string, len(t.Signers))
	for i, s := range t.Signers {
		signerNames[i] = s.Name()
	}
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: signerNames, Payer: t.Account.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"account": t.Account.Name(), "signers": signerNames, "threshold": t.Threshold},
	})
}

func (t *UpdateAccount) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return []check.Check{check.AccountExist{Alias: t.Account, Threshold: t.Threshold, Signers: t.Signers}}, nil
}

func (t *UpdateAccount) Apply(s *wstate.State) {
	s.ModifyEstablishedAccount(t.Account, t.Signers, t.Threshold)
}

func (t *UpdateAccount) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Account, applied)
}

// BecomeValidator promotes an established account to an active validator.
type BecomeValidator struct {
	Account       alias.Alias
	ConsensusKey  alias.Alias
	Epoch         uint64
	settings      Settings
}

func NewBecomeValidator(account alias.Alias, epoch uint64) *BecomeValidator {
	return &BecomeValidator{Account: account, ConsensusKey: alias.Derive(account, alias.ConsensusKey), Epoch: epoch,
		settings: NewSettings([]alias.Alias{account}, account)}
}

func (t *BecomeValidator) Name() string    { return "BecomeValidator" }
func (t *BecomeValidator) Summary() string { return fmt.Sprintf("become-validator/%s", t.Account) }
func (t *BecomeValidator) Settings() Settings { return t.settings }

func (t *BecomeValidator) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Account.Name()}, Payer: t.Account.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"account": t.Account.Name(), "consensus_key": t.ConsensusKey.Name()},
	})
}

func (t *BecomeValidator) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return []check.Check{check.IsValidatorAccount{Alias: t.Account, Epoch: t.Epoch}}, nil
}

func (t *BecomeValidator) Apply(s *wstate.State) { s.SetEstablishedAsValidator(t.Account) }

func (t *BecomeValidator) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Account, applied)
}

// ChangeMetadata updates a validator's public metadata (commission,
// website, ...). State carries no metadata fields, so Apply is a no-op;
// the transaction's success is the only observable effect.
type ChangeMetadata struct {
	Validator alias.Alias
	settings  Settings
}

func NewChangeMetadata(validator alias.Alias) *ChangeMetadata {
	return &ChangeMetadata{Validator: validator, settings: NewSettings([]alias.Alias{validator}, validator)}
}

func (t *ChangeMetadata) Name() string    { return "ChangeMetadata" }
func (t *ChangeMetadata) Summary() string { return fmt.Sprintf("change-metadata/%s", t.Validator) }
func (t *ChangeMetadata) Settings() Settings { return t.settings }

func (t *ChangeMetadata) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Validator.Name()}, Payer: t.Validator.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"validator": t.Validator.Name()},
	})
}

func (t *ChangeMetadata) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return nil, nil
}

func (t *ChangeMetadata) Apply(s *wstate.State) {}

func (t *ChangeMetadata) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Validator, applied)
}

// ChangeConsensusKey rotates a validator's consensus key to a fresh derived
// alias.
type ChangeConsensusKey struct {
	Validator alias.Alias
	NewKey    alias.Alias
	settings  Settings
}

func NewChangeConsensusKey(validator alias.Alias) *ChangeConsensusKey {
	return &ChangeConsensusKey{Validator: validator, NewKey: alias.Derive(validator, alias.ConsensusKey),
		settings: NewSettings([]alias.Alias{validator}, validator)}
}

func (t *ChangeConsensusKey) Name() string { return "ChangeConsensusKey" }
func (t *ChangeConsensusKey) Summary() string {
	return fmt.Sprintf("change-consensus-key/%s", t.Validator)
}
func (t *ChangeConsensusKey) Settings() Settings { return t.settings }

func (t *ChangeConsensusKey) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Validator.Name()}, Payer: t.Validator.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"validator": t.Validator.Name(), "new_key": t.NewKey.Name()},
	})
}

func (t *ChangeConsensusKey) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return nil, nil
}

func (t *ChangeConsensusKey) Apply(s *wstate.State) {}

func (t *ChangeConsensusKey) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Validator, applied)
}

// DeactivateValidator moves an active validator into the chain's
// deactivated set.
type DeactivateValidator struct {
	Validator alias.Alias
	Epoch     uint64
	settings  Settings
}

func NewDeactivateValidator(validator alias.Alias, epoch uint64) *DeactivateValidator {
	return &DeactivateValidator{Validator: validator, Epoch: epoch, settings: NewSettings([]alias.Alias{validator}, validator)}
}

func (t *DeactivateValidator) Name() string { return "DeactivateValidator" }
func (t *DeactivateValidator) Summary() string {
	return fmt.Sprintf("deactivate-validator/%s", t.Validator)
}
func (t *DeactivateValidator) Settings() Settings { return t.settings }

func (t *DeactivateValidator) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Validator.Name()}, Payer: t.Validator.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"validator": t.Validator.Name()},
	})
}

func (t *DeactivateValidator) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return []check.Check{check.ValidatorStatus{Alias: t.Validator, Epoch: t.Epoch, Expected: check.ExpectInactive}}, nil
}

func (t *DeactivateValidator) Apply(s *wstate.State) { s.DeactivateValidator(t.Validator) }

func (t *DeactivateValidator) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Validator, applied)
}

// ReactivateValidator moves a deactivated validator back into the active
// set.
type ReactivateValidator struct {
	Validator alias.Alias
	Epoch     uint64
	settings  Settings
}

func NewReactivateValidator(validator alias.Alias, epoch uint64) *ReactivateValidator {
	return &ReactivateValidator{Validator: validator, Epoch: epoch, settings: NewSettings([]alias.Alias{validator}, validator)}
}

func (t *ReactivateValidator) Name() string { return "ReactivateValidator" }
func (t *ReactivateValidator) Summary() string {
	return fmt.Sprintf("reactivate-validator/%s", t.Validator)
}
func (t *ReactivateValidator) Settings() Settings { return t.settings }

func (t *ReactivateValidator) BuildTx(ctx context.Context, client *sdk.Client) (*sdk.BuiltTx, error) {
	return client.BuildTx(ctx, sdk.BuildRequest{
		Kind: t.Name(), Signers: []string{t.Validator.Name()}, Payer: t.Validator.Name(), GasLimit: t.settings.GasLimit,
		Args: map[string]interface{}{"validator": t.Validator.Name()},
	})
}

func (t *ReactivateValidator) BuildChecks(ctx context.Context, q *chainquery.Querier) ([]check.Check, error) {
	return []check.Check{check.ValidatorStatus{Alias: t.Validator, Epoch: t.Epoch, Expected: check.ExpectReactivating}}, nil
}

func (t *ReactivateValidator) Apply(s *wstate.State) { s.ReactivateValidator(t.Validator) }

func (t *ReactivateValidator) AggregateFees(fees map[alias.Alias]uint64, applied bool) {
	chargeDefaultFee(fees, t.Validator, applied)
}
