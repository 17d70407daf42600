package wstate

import (
	"sort"

	"namadrift/internal/alias"
)

func (s *State) nativeBalance(a alias.Alias) uint64 {
	return s.Balances[a][nativeDenom]
}

// AnyAccount reports whether at least one account exists.
func (s *State) AnyAccount() bool { return s.AtLeastAccounts(1) }

// AtLeastAccounts reports whether at least n accounts exist.
func (s *State) AtLeastAccounts(n int) bool { return len(s.Accounts) >= n }

// AnyAccountWithMinBalance reports whether any account holds at least m
// native tokens.
func (s *State) AnyAccountWithMinBalance(m uint64) bool {
	for a := range s.Accounts {
		if s.nativeBalance(a) >= m {
			return true
		}
	}
	return false
}

// AnyBond reports whether at least one bond record with positive amount
// exists.
func (s *State) AnyBond() bool { return s.MinBonds(1) }

// MinBonds reports whether at least n bond records with positive amount
// exist.
func (s *State) MinBonds(n int) bool {
	count := 0
	for _, bonds := range s.Bonds {
		for _, b := range bonds {
			if b.Amount > 0 {
				count++
			}
		}
	}
	return count >= n
}

func (s *State) countByKind(kind AddressKind) int {
	count := 0
	for _, acc := range s.Accounts {
		if acc.Kind == kind {
			count++
		}
	}
	return count
}

// MinNImplicitAccounts reports whether at least n implicit accounts exist.
func (s *State) MinNImplicitAccounts(n int) bool { return s.countByKind(AddressImplicit) >= n }

// MinNEstablishedAccounts reports whether at least n established accounts
// exist.
func (s *State) MinNEstablishedAccounts(n int) bool { return s.countByKind(AddressEstablished) >= n }

// MinNValidators reports whether at least n active validators exist.
func (s *State) MinNValidators(n int) bool { return len(s.Validators) >= n }

// MinNDeactivatedValidators reports whether at least n deactivated
// validators exist.
func (s *State) MinNDeactivatedValidators(n int) bool { return len(s.DeactivatedValidators) >= n }

// AtLeastMASPAccounts reports whether at least n accounts are MASP-capable
// spending-key holders.
func (s *State) AtLeastMASPAccounts(n int) bool {
	count := 0
	for _, acc := range s.Accounts {
		if acc.IsMASPSource {
			count++
		}
	}
	return count >= n
}

// AtLeastMASPAccountWithMinimalBalance reports whether at least n MASP
// accounts hold at least m shielded native tokens.
func (s *State) AtLeastMASPAccountWithMinimalBalance(n int, m uint64) bool {
	count := 0
	for a, acc := range s.Accounts {
		if acc.IsMASPSource && s.ShieldedBalances[a] >= m {
			count++
		}
	}
	return count >= n
}

// AnyVotableProposal reports whether a proposal is currently in its voting
// window at epoch.
func (s *State) AnyVotableProposal(epoch uint64) bool {
	for _, p := range s.Proposals {
		if p.Votable(epoch) {
			return true
		}
	}
	return false
}

func inBlacklist(blacklist []alias.Alias, a alias.Alias) bool {
	for _, b := range blacklist {
		if b == a {
			return true
		}
	}
	return false
}

// sortedAliases returns m's keys in a stable order so random sampling is
// reproducible for a given RNG state (map iteration order is not stable).
func sortedAliases[T any](m map[alias.Alias]T) []alias.Alias {
	out := make([]alias.Alias, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// RandomAccount samples a uniformly random account not in blacklist. The
// second return value is false if no candidate exists.
func (s *State) RandomAccount(blacklist []alias.Alias) (Account, bool) {
	var candidates []alias.Alias
	for _, a := range sortedAliases(s.Accounts) {
		if !inBlacklist(blacklist, a) {
			candidates = append(candidates, a)
		}
	}
	idx := s.rng.chooseIndex(len(candidates))
	if idx < 0 {
		return Account{}, false
	}
	return s.Accounts[candidates[idx]], true
}

// RandomAccountWithMinBalance samples a uniformly random account holding at
// least m native tokens, excluding blacklist.
func (s *State) RandomAccountWithMinBalance(blacklist []alias.Alias, m uint64) (Account, bool) {
	var candidates []alias.Alias
	for _, a := range sortedAliases(s.Accounts) {
		if inBlacklist(blacklist, a) {
			continue
		}
		if s.nativeBalance(a) >= m {
			candidates = append(candidates, a)
		}
	}
	idx := s.rng.chooseIndex(len(candidates))
	if idx < 0 {
		return Account{}, false
	}
	return s.Accounts[candidates[idx]], true
}

// RandomBond samples a uniformly random bond record with positive amount.
func (s *State) RandomBond() (Bond, bool) {
	var candidates []Bond
	for _, source := range sortedAliases(s.Bonds) {
		for _, b := range s.Bonds[source] {
			if b.Amount > 0 {
				candidates = append(candidates, b)
			}
		}
	}
	idx := s.rng.chooseIndex(len(candidates))
	if idx < 0 {
		return Bond{}, false
	}
	return candidates[idx], true
}

// RandomVotableProposal samples a uniformly random proposal currently in
// its voting window at epoch.
func (s *State) RandomVotableProposal(epoch uint64) (Proposal, bool) {
	var ids []uint64
	for id, p := range s.Proposals {
		if p.Votable(epoch) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	idx := s.rng.chooseIndex(len(ids))
	if idx < 0 {
		return Proposal{}, false
	}
	return s.Proposals[ids[idx]], true
}

// RandomPaymentAddress samples a uniformly random MASP-capable account's
// alias, excluding blacklist. The caller derives the payment-address alias
// itself via alias.Derive.
func (s *State) RandomPaymentAddress(blacklist []alias.Alias) (alias.Alias, bool) {
	var candidates []alias.Alias
	for _, a := range sortedAliases(s.Accounts) {
		if inBlacklist(blacklist, a) {
			continue
		}
		if s.Accounts[a].IsMASPSource {
			candidates = append(candidates, a)
		}
	}
	idx := s.rng.chooseIndex(len(candidates))
	if idx < 0 {
		return alias.Alias{}, false
	}
	return candidates[idx], true
}

// RandomEstablishedAccount samples a uniformly random established account
// from at least n candidates (caller has already validated is_valid).
func (s *State) RandomEstablishedAccount(blacklist []alias.Alias, n int) (Account, bool) {
	var candidates []alias.Alias
	for _, a := range sortedAliases(s.Accounts) {
		if inBlacklist(blacklist, a) {
			continue
		}
		if s.Accounts[a].Kind == AddressEstablished {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) < n {
		return Account{}, false
	}
	idx := s.rng.chooseIndex(len(candidates))
	if idx < 0 {
		return Account{}, false
	}
	return s.Accounts[candidates[idx]], true
}

// RandomImplicitAccounts samples n distinct implicit accounts, excluding
// blacklist, without replacement.
func (s *State) RandomImplicitAccounts(blacklist []alias.Alias, n int) ([]Account, bool) {
	var candidates []alias.Alias
	for _, a := range sortedAliases(s.Accounts) {
		if inBlacklist(blacklist, a) {
			continue
		}
		if s.Accounts[a].Kind == AddressImplicit {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) < n {
		return nil, false
	}
	out := make([]Account, 0, n)
	remaining := append([]alias.Alias(nil), candidates...)
	for i := 0; i < n; i++ {
		idx := s.rng.chooseIndex(len(remaining))
		out = append(out, s.Accounts[remaining[idx]])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out, true
}

// RandomDeactivatedValidator samples a uniformly random deactivated
// validator from at least n candidates.
func (s *State) RandomDeactivatedValidator(blacklist []alias.Alias, n int) (Account, bool) {
	var candidates []alias.Alias
	for _, a := range sortedAliases(s.DeactivatedValidators) {
		if !inBlacklist(blacklist, a) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) < n {
		return Account{}, false
	}
	idx := s.rng.chooseIndex(len(candidates))
	if idx < 0 {
		return Account{}, false
	}
	return s.Accounts[candidates[idx]], true
}

// GetBalanceFor returns alias's native balance.
func (s *State) GetBalanceFor(a alias.Alias) uint64 { return s.nativeBalance(a) }

// GetShieldedBalanceFor returns alias's shielded native balance.
func (s *State) GetShieldedBalanceFor(a alias.Alias) uint64 { return s.ShieldedBalances[a] }

// GetRedelegationsTargetsFor returns the set of validators alias has an
// existing bond with, used by Redelegate's build_tasks to avoid redelegating
// to a validator it is already bonded to (spec §4.5).
func (s *State) GetRedelegationsTargetsFor(a alias.Alias) map[string]struct{} {
	targets := map[string]struct{}{}
	for _, b := range s.Bonds[a] {
		if b.Amount > 0 {
			targets[b.Validator] = struct{}{}
		}
	}
	return targets
}

// RandomUint64Between samples amount in [lo, hi] via the state's
// deterministic RNG (used by build_tasks for e.g. Unbond's amount, spec §8
// S5: "guaranteed <= existing by construction").
func (s *State) RandomUint64Between(lo, hi uint64) uint64 { return s.rng.Uint64Between(lo, hi) }
