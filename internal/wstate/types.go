package wstate

import "namadrift/internal/alias"

// AddressKind is the on-chain kind of an account's address (spec §3).
type AddressKind uint8

const (
	AddressImplicit AddressKind = iota
	AddressEstablished
	AddressValidator
	AddressDeactivatedValidator
)

// Account is an alias with its signer set, authorization threshold, address
// kind, and whether it also holds a MASP spending key.
type Account struct {
	Alias        alias.Alias   `json:"alias"`
	Kind         AddressKind   `json:"kind"`
	Signers      []alias.Alias `json:"signers"`
	Threshold    uint64        `json:"threshold"`
	IsMASPSource bool          `json:"is_masp_source"`
}

// IsValidator reports whether the account is an active validator.
func (a Account) IsValidator() bool { return a.Kind == AddressValidator }

// IsDeactivatedValidator reports whether the account is a deactivated
// validator.
func (a Account) IsDeactivatedValidator() bool { return a.Kind == AddressDeactivatedValidator }

// Bond is a (source, validator, epoch-of-bond) triple carrying an amount.
type Bond struct {
	Source    alias.Alias `json:"source"`
	Validator string      `json:"validator"`
	Epoch     uint64      `json:"epoch"`
	Amount    uint64      `json:"amount"`
}

// VoteChoice is a governance ballot selection.
type VoteChoice string

const (
	VoteYay     VoteChoice = "yay"
	VoteNay     VoteChoice = "nay"
	VoteAbstain VoteChoice = "abstain"
)

// Proposal is a governance proposal's local bookkeeping.
type Proposal struct {
	ID                uint64                        `json:"id"`
	ActivationEpoch   uint64                         `json:"activation_epoch"`
	VotingStartEpoch  uint64                         `json:"voting_start_epoch"`
	VotingEndEpoch    uint64                         `json:"voting_end_epoch"`
	Votes             map[alias.Alias]VoteChoice     `json:"votes"`
}

// Votable reports whether epoch falls within the proposal's voting window.
func (p Proposal) Votable(epoch uint64) bool {
	return epoch >= p.VotingStartEpoch && epoch < p.VotingEndEpoch
}

// StepStats tallies per-step-kind outcomes.
type StepStats struct {
	Successes uint64 `json:"successes"`
	Failures  uint64 `json:"failures"`
	Skips     uint64 `json:"skips"`
}
