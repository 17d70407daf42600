// Package task implements the task model (C4): one Task per on-chain
// transaction kind, each knowing how to delegate its construction to the
// external SDK, snapshot the checks that prove it landed, fold its effect
// into local state, and attribute the fee it incurred.
package task

import "namadrift/internal/alias"

// DefaultGasLimit is the reference chain's baseline per-transaction gas
// unit budget.
const DefaultGasLimit uint64 = 500_000

// Settings is the signer set, gas payer, and gas limit every Task carries.
type Settings struct {
	Signers  []alias.Alias
	Payer    alias.Alias
	GasLimit uint64
}

// NewSettings builds the ordinary signer/payer settings at the default gas
// limit.
func NewSettings(signers []alias.Alias, payer alias.Alias) Settings {
	return Settings{Signers: signers, Payer: payer, GasLimit: DefaultGasLimit}
}

// FaucetSettings builds settings for a faucet-signed, faucet-paid task.
func FaucetSettings() Settings {
	return Settings{Signers: []alias.Alias{alias.Faucet}, Payer: alias.Faucet, GasLimit: DefaultGasLimit}
}

// FaucetBatchSettings scales the gas limit by n for a batch of n faucet
// transfers merged into one transaction.
func FaucetBatchSettings(n int) Settings {
	return Settings{Signers: []alias.Alias{alias.Faucet}, Payer: alias.Faucet, GasLimit: DefaultGasLimit * uint64(n)}
}

// WithGasMultiplier scales a Settings' gas limit, used by task constructors
// for kinds the reference chain charges more gas (Redelegate, Vote,
// ClaimRewards at x5) and by the batch steps to scale with batch size.
func (s Settings) WithGasMultiplier(m uint64) Settings {
	s.GasLimit *= m
	return s
}
