package task

import (
	"namadrift/internal/aggregate"
	"namadrift/internal/alias"
)

// This file implements internal/aggregate's Effector interface for every
// task kind that can appear inside a Batch. Kinds with no effect in a
// category simply return nil for it.

func (t *NewWalletKeyPair) RevealPks() []alias.Alias { return []alias.Alias{t.Source} }
func (t *NewWalletKeyPair) BalanceDeltas() []aggregate.BalanceDelta { return nil }
func (t *NewWalletKeyPair) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *NewWalletKeyPair) BondDeltas() []aggregate.BondDelta     { return nil }

func (t *FaucetTransfer) RevealPks() []alias.Alias { return nil }
func (t *FaucetTransfer) BalanceDeltas() []aggregate.BalanceDelta {
	return []aggregate.BalanceDelta{{Alias: t.Target, Amount: int64(t.Amount), Denom: alias.NativeDenom}}
}
func (t *FaucetTransfer) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *FaucetTransfer) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *TransparentTransfer) RevealPks() []alias.Alias { return nil }
func (t *TransparentTransfer) BalanceDeltas() []aggregate.BalanceDelta {
	return []aggregate.BalanceDelta{
		{Alias: t.Source, Amount: -int64(t.Amount), Denom: alias.NativeDenom},
		{Alias: t.Target, Amount: int64(t.Amount), Denom: alias.NativeDenom},
	}
}
func (t *TransparentTransfer) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *TransparentTransfer) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *Bond) RevealPks() []alias.Alias { return nil }
func (t *Bond) BalanceDeltas() []aggregate.BalanceDelta {
	return []aggregate.BalanceDelta{{Alias: t.Source, Amount: -int64(t.Amount), Denom: alias.NativeDenom}}
}
func (t *Bond) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *Bond) BondDeltas() []aggregate.BondDelta {
	return []aggregate.BondDelta{{Alias: t.Source, Validator: t.Validator, Epoch: t.Epoch, Amount: int64(t.Amount)}}
}

func (t *Unbond) RevealPks() []alias.Alias                     { return nil }
func (t *Unbond) BalanceDeltas() []aggregate.BalanceDelta       { return nil }
func (t *Unbond) ShieldedDeltas() []aggregate.ShieldedDelta     { return nil }
func (t *Unbond) BondDeltas() []aggregate.BondDelta {
	return []aggregate.BondDelta{{Alias: t.Source, Validator: t.Validator, Epoch: t.Epoch, Amount: -int64(t.Amount)}}
}

func (t *Redelegate) RevealPks() []alias.Alias                 { return nil }
func (t *Redelegate) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *Redelegate) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *Redelegate) BondDeltas() []aggregate.BondDelta {
	return []aggregate.BondDelta{
		{Alias: t.Source, Validator: t.FromValidator, Epoch: t.Epoch, Amount: -int64(t.Amount)},
		{Alias: t.Source, Validator: t.ToValidator, Epoch: t.Epoch, Amount: int64(t.Amount)},
	}
}

func (t *ClaimRewards) RevealPks() []alias.Alias                     { return nil }
func (t *ClaimRewards) BalanceDeltas() []aggregate.BalanceDelta       { return nil }
func (t *ClaimRewards) ShieldedDeltas() []aggregate.ShieldedDelta     { return nil }
func (t *ClaimRewards) BondDeltas() []aggregate.BondDelta             { return nil }

func (t *Shielding) RevealPks() []alias.Alias { return nil }
func (t *Shielding) BalanceDeltas() []aggregate.BalanceDelta {
	return []aggregate.BalanceDelta{{Alias: t.Source, Amount: -int64(t.Amount), Denom: alias.NativeDenom}}
}
func (t *Shielding) ShieldedDeltas() []aggregate.ShieldedDelta {
	return []aggregate.ShieldedDelta{{Alias: t.PaymentAddress.Base(), Amount: int64(t.Amount)}}
}
func (t *Shielding) BondDeltas() []aggregate.BondDelta { return nil }

func (t *ShieldedTransfer) RevealPks() []alias.Alias                   { return nil }
func (t *ShieldedTransfer) BalanceDeltas() []aggregate.BalanceDelta     { return nil }
func (t *ShieldedTransfer) ShieldedDeltas() []aggregate.ShieldedDelta {
	return []aggregate.ShieldedDelta{
		{Alias: t.Source, Amount: -int64(t.Amount)},
		{Alias: t.PaymentAddress.Base(), Amount: int64(t.Amount)},
	}
}
func (t *ShieldedTransfer) BondDeltas() []aggregate.BondDelta { return nil }

func (t *Unshielding) RevealPks() []alias.Alias { return nil }
func (t *Unshielding) BalanceDeltas() []aggregate.BalanceDelta {
	return []aggregate.BalanceDelta{{Alias: t.Target, Amount: int64(t.Amount), Denom: alias.NativeDenom}}
}
func (t *Unshielding) ShieldedDeltas() []aggregate.ShieldedDelta {
	return []aggregate.ShieldedDelta{{Alias: t.Source, Amount: -int64(t.Amount)}}
}
func (t *Unshielding) BondDeltas() []aggregate.BondDelta { return nil }

func (t *InitAccount) RevealPks() []alias.Alias                   { return nil }
func (t *InitAccount) BalanceDeltas() []aggregate.BalanceDelta     { return nil }
func (t *InitAccount) ShieldedDeltas() []aggregate.ShieldedDelta   { return nil }
func (t *InitAccount) BondDeltas() []aggregate.BondDelta           { return nil }

func (t *UpdateAccount) RevealPks() []alias.Alias                 { return nil }
func (t *UpdateAccount) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *UpdateAccount) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *UpdateAccount) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *BecomeValidator) RevealPks() []alias.Alias                 { return nil }
func (t *BecomeValidator) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *BecomeValidator) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *BecomeValidator) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *ChangeMetadata) RevealPks() []alias.Alias                 { return nil }
func (t *ChangeMetadata) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *ChangeMetadata) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *ChangeMetadata) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *ChangeConsensusKey) RevealPks() []alias.Alias                 { return nil }
func (t *ChangeConsensusKey) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *ChangeConsensusKey) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *ChangeConsensusKey) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *DeactivateValidator) RevealPks() []alias.Alias                 { return nil }
func (t *DeactivateValidator) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *DeactivateValidator) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *DeactivateValidator) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *ReactivateValidator) RevealPks() []alias.Alias                 { return nil }
func (t *ReactivateValidator) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *ReactivateValidator) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *ReactivateValidator) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *DefaultProposal) RevealPks() []alias.Alias { return nil }
func (t *DefaultProposal) BalanceDeltas() []aggregate.BalanceDelta {
	return []aggregate.BalanceDelta{{Alias: t.Author, Amount: -int64(t.Deposit), Denom: alias.NativeDenom}}
}
func (t *DefaultProposal) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *DefaultProposal) BondDeltas() []aggregate.BondDelta         { return nil }

func (t *Vote) RevealPks() []alias.Alias                 { return nil }
func (t *Vote) BalanceDeltas() []aggregate.BalanceDelta   { return nil }
func (t *Vote) ShieldedDeltas() []aggregate.ShieldedDelta { return nil }
func (t *Vote) BondDeltas() []aggregate.BondDelta         { return nil }
