package wstate

import (
	"fmt"

	"github.com/holiman/uint256"

	"namadrift/internal/alias"
)

// checkedAdd adds a and b with overflow detected the way the reference
// chain detects balance overflow when narrowing into a fixed-width integer
// (core/state's uint256.FromBig on PutAccount): widen into a uint256, add,
// and reject if the sum no longer fits back into a uint64.
func checkedAdd(a, b uint64) (uint64, bool) {
	sum := new(uint256.Int).Add(uint256.NewInt(a), uint256.NewInt(b))
	if !sum.IsUint64() {
		return 0, false
	}
	return sum.Uint64(), true
}

// StateMutation is implemented by anything the executor's Update step
// folds into state: tasks apply their own effect by calling back into the
// mutators below (spec §4.1 "update(tasks) is the only entry point the
// executor uses post-execution").
type StateMutation interface {
	Apply(*State)
}

func (s *State) ensureBalanceRow(a alias.Alias) map[string]uint64 {
	row, ok := s.Balances[a]
	if !ok {
		row = map[string]uint64{}
		s.Balances[a] = row
	}
	return row
}

// IncreaseBalance adds amount to alias's denom balance with overflow
// checked rather than wrapped (spec I1, boundary test "Overflow").
func (s *State) IncreaseBalance(a alias.Alias, denom string, amount uint64) error {
	row := s.ensureBalanceRow(a)
	sum, ok := checkedAdd(row[denom], amount)
	if !ok {
		return fmt.Errorf("balance overflow for %s/%s", a, denom)
	}
	row[denom] = sum
	return nil
}

// DecreaseBalance subtracts amount from alias's denom balance. Faucet is
// exempt (unlimited funds, spec Glossary "Faucet").
func (s *State) DecreaseBalance(a alias.Alias, denom string, amount uint64) error {
	if a.IsFaucet() {
		return nil
	}
	row := s.ensureBalanceRow(a)
	if row[denom] < amount {
		return fmt.Errorf("insufficient %s balance for %s: have %d, need %d", denom, a, row[denom], amount)
	}
	row[denom] -= amount
	return nil
}

// OverwriteBalance forcibly sets alias's denom balance, used to correct
// local belief against an observed chain value.
func (s *State) OverwriteBalance(a alias.Alias, denom string, amount uint64) {
	s.ensureBalanceRow(a)[denom] = amount
}

// ModifyBalanceFee debits the default fee from the payer, exempting the
// faucet.
func (s *State) ModifyBalanceFee(payer alias.Alias, fee uint64) error {
	return s.DecreaseBalance(payer, nativeDenom, fee)
}

// ModifyBond creates or increases a bond record at the given epoch (spec
// §3 "Bond lifecycle").
func (s *State) ModifyBond(source alias.Alias, validator string, epoch, amount uint64) {
	bonds := s.Bonds[source]
	for i := range bonds {
		if bonds[i].Validator == validator && bonds[i].Epoch == epoch {
			bonds[i].Amount += amount
			s.Bonds[source] = bonds
			return
		}
	}
	s.Bonds[source] = append(bonds, Bond{Source: source, Validator: validator, Epoch: epoch, Amount: amount})
}

// ModifyUnbond decrements the bond records matching (source, validator),
// newest record first, spilling into older records when the newest one
// holds less than amount. Negative bonds are
// invalid (spec I2); callers must ensure amount never exceeds the sum of
// matching bonds before calling this (Unbond's build_tasks already
// guarantees this by construction, spec §8 S5).
func (s *State) ModifyUnbond(source alias.Alias, validator string, epoch, amount uint64) error {
	bonds := s.Bonds[source]
	remaining := amount
	for i := len(bonds) - 1; i >= 0 && remaining > 0; i-- {
		if bonds[i].Validator != validator {
			continue
		}
		if bonds[i].Amount >= remaining {
			bonds[i].Amount -= remaining
			remaining = 0
		} else {
			remaining -= bonds[i].Amount
			bonds[i].Amount = 0
		}
	}
	if remaining > 0 {
		return fmt.Errorf("unbond of %d exceeds total bonded amount for %s/%s", amount, source, validator)
	}
	s.Bonds[source] = bonds
	return nil
}

// AddImplicitAccount registers a freshly generated implicit account with a
// single signer (itself) and threshold 1.
func (s *State) AddImplicitAccount(a alias.Alias) {
	s.Accounts[a] = Account{Alias: a, Kind: AddressImplicit, Signers: []alias.Alias{a}, Threshold: 1}
	s.ensureBalanceRow(a)
}

// AddEstablishedAccount registers a new established account with the given
// signer set and threshold (spec I5: threshold <= len(signers)).
func (s *State) AddEstablishedAccount(a alias.Alias, signers []alias.Alias, threshold uint64) {
	s.Accounts[a] = Account{Alias: a, Kind: AddressEstablished, Signers: signers, Threshold: threshold}
	s.ensureBalanceRow(a)
}

// ModifyEstablishedAccount updates an existing established account's signer
// set and threshold in place (UpdateAccount task).
func (s *State) ModifyEstablishedAccount(a alias.Alias, signers []alias.Alias, threshold uint64) {
	acc, ok := s.Accounts[a]
	if !ok {
		return
	}
	acc.Signers = signers
	acc.Threshold = threshold
	s.Accounts[a] = acc
}

// SetEstablishedAsValidator promotes an established account to validator
// status (BecomeValidator).
func (s *State) SetEstablishedAsValidator(a alias.Alias) {
	acc := s.Accounts[a]
	acc.Kind = AddressValidator
	s.Accounts[a] = acc
	delete(s.DeactivatedValidators, a)
	s.Validators[a] = struct{}{}
}

// DeactivateValidator moves alias from the active to the deactivated set.
func (s *State) DeactivateValidator(a alias.Alias) {
	acc := s.Accounts[a]
	acc.Kind = AddressDeactivatedValidator
	s.Accounts[a] = acc
	delete(s.Validators, a)
	s.DeactivatedValidators[a] = struct{}{}
}

// ReactivateValidator moves alias from the deactivated to the active set.
func (s *State) ReactivateValidator(a alias.Alias) {
	acc := s.Accounts[a]
	acc.Kind = AddressValidator
	s.Accounts[a] = acc
	delete(s.DeactivatedValidators, a)
	s.Validators[a] = struct{}{}
}

// SetClaimedEpoch records the last epoch at which alias claimed bonding
// rewards.
func (s *State) SetClaimedEpoch(a alias.Alias, epoch uint64) {
	s.ClaimedEpochs[a] = epoch
}

// InsertProposal records a newly submitted governance proposal.
func (s *State) InsertProposal(p Proposal) {
	if p.Votes == nil {
		p.Votes = map[alias.Alias]VoteChoice{}
	}
	s.Proposals[p.ID] = p
}

// RecordVote records voter's ballot on proposal id.
func (s *State) RecordVote(id uint64, voter alias.Alias, choice VoteChoice) {
	p, ok := s.Proposals[id]
	if !ok {
		return
	}
	if p.Votes == nil {
		p.Votes = map[alias.Alias]VoteChoice{}
	}
	p.Votes[voter] = choice
	s.Proposals[id] = p
}

// IncreaseShieldedBalance adds amount to alias's shielded native balance.
func (s *State) IncreaseShieldedBalance(a alias.Alias, amount uint64) error {
	sum, ok := checkedAdd(s.ShieldedBalances[a], amount)
	if !ok {
		return fmt.Errorf("shielded balance overflow for %s", a)
	}
	s.ShieldedBalances[a] = sum
	return nil
}

// DecreaseShieldedBalance subtracts amount from alias's shielded native
// balance.
func (s *State) DecreaseShieldedBalance(a alias.Alias, amount uint64) error {
	if s.ShieldedBalances[a] < amount {
		return fmt.Errorf("insufficient shielded balance for %s: have %d, need %d", a, s.ShieldedBalances[a], amount)
	}
	s.ShieldedBalances[a] -= amount
	return nil
}

// RecordStat tallies one outcome for the given step kind.
func (s *State) RecordStat(stepKind string, success, failure, skip bool) {
	st := s.Stats[stepKind]
	if success {
		st.Successes++
	}
	if failure {
		st.Failures++
	}
	if skip {
		st.Skips++
	}
	s.Stats[stepKind] = st
}

// Update folds every mutation's effect into state, in order. This is the
// only entry point the executor uses post-execution (spec §4.1).
func (s *State) Update(mutations []StateMutation) {
	for _, m := range mutations {
		if m != nil {
			m.Apply(s)
		}
	}
}

// ApplyFeePayments debits the accumulated per-payer fee map from their
// native balances. A task whose tx was applied-but-errored still triggers
// this debit (spec §7 "Propagation policy").
func (s *State) ApplyFeePayments(fees map[alias.Alias]uint64) error {
	for payer, fee := range fees {
		if fee == 0 {
			continue
		}
		if err := s.DecreaseBalance(payer, nativeDenom, fee); err != nil {
			return err
		}
	}
	return nil
}
