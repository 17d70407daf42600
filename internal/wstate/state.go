// Package wstate is the State store (C1): typed, serializable workload
// memory with file-locked JSON persistence keyed by invocation id. It is the
// sole owner of the workload State; every mutation and every sample drawn
// from the deterministic RNG goes through a State method (spec §3
// Ownership).
package wstate

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"namadrift/internal/alias"
	"namadrift/internal/werr"
)

const nativeDenom = alias.NativeDenom

// MinTransferBalance is the minimum native balance a step requires an
// account to hold to be eligible as a transfer/bond/shielding source (spec
// §4.5).
const MinTransferBalance uint64 = 2

// DefaultFeeInNativeToken is the fee debited from a non-faucet gas payer on
// a successful or applied-but-errored transaction.
const DefaultFeeInNativeToken uint64 = 250

// MinProposalDeposit mirrors the reference chain's default governance
// minimum deposit. is_valid for DefaultProposal is a pure function of local
// state (no chain query), so this is a fixed approximation rather than the
// live governance parameter; the built task still queries the real
// parameters via chainquery before submission.
const MinProposalDeposit = 1000


// State is the complete workload memory (spec §3).
type State struct {
	Accounts              map[alias.Alias]Account
	Balances              map[alias.Alias]map[string]uint64
	Bonds                 map[alias.Alias][]Bond
	ShieldedBalances      map[alias.Alias]uint64
	Validators            map[alias.Alias]struct{}
	DeactivatedValidators map[alias.Alias]struct{}
	Proposals             map[uint64]Proposal
	ClaimedEpochs         map[alias.Alias]uint64
	Stats                 map[string]StepStats
	Seed                  uint64
	BaseDir               string

	rng *seededRNG
}

// persisted is the on-disk shape of State: everything except the live RNG,
// which is recreated from Seed on load (spec §4.1: "determinism is
// per-invocation, not cross-invocation").
type persisted struct {
	Accounts              map[alias.Alias]Account            `json:"accounts"`
	Balances              map[alias.Alias]map[string]uint64   `json:"balances"`
	Bonds                 map[alias.Alias][]Bond              `json:"bonds"`
	ShieldedBalances      map[alias.Alias]uint64              `json:"shielded_balances"`
	Validators            map[alias.Alias]struct{}            `json:"validators"`
	DeactivatedValidators map[alias.Alias]struct{}            `json:"deactivated_validators"`
	Proposals             map[uint64]Proposal                 `json:"proposals"`
	ClaimedEpochs         map[alias.Alias]uint64              `json:"claimed_epochs"`
	Stats                 map[string]StepStats                `json:"stats"`
	Seed                  uint64                              `json:"seed"`
	BaseDir               string                              `json:"base_dir"`
}

// New constructs a fresh in-memory State seeded with seed, with no backing
// file. Used by other packages' tests that need a State without exercising
// Load/Save's locking and file I/O.
func New(seed uint64) *State { return fresh(seed, "") }

func fresh(seed uint64, baseDir string) *State {
	return &State{
		Accounts:              map[alias.Alias]Account{alias.Faucet: {Alias: alias.Faucet, Kind: AddressImplicit, Signers: []alias.Alias{alias.Faucet}, Threshold: 1}},
		Balances:              map[alias.Alias]map[string]uint64{alias.Faucet: {nativeDenom: 0}},
		Bonds:                 map[alias.Alias][]Bond{},
		ShieldedBalances:      map[alias.Alias]uint64{},
		Validators:            map[alias.Alias]struct{}{},
		DeactivatedValidators: map[alias.Alias]struct{}{},
		Proposals:             map[uint64]Proposal{},
		ClaimedEpochs:         map[alias.Alias]uint64{},
		Stats:                 map[string]StepStats{},
		Seed:                  seed,
		BaseDir:               baseDir,
		rng:                   newSeededRNG(seed),
	}
}

func randomSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Load opens state-{id}.json, acquires an exclusive advisory file lock, and
// parses it. On an empty or missing file it constructs a fresh State seeded
// from configuredSeed if provided, otherwise from a freshly sampled seed.
// Any I/O or parse error other than missing-file is StateFatal.
func Load(dir string, id uint64, configuredSeed *uint64) (*State, *LockHandle, error) {
	path := filepath.Join(dir, fmt.Sprintf("state-%d.json", id))
	lock, err := acquireLock(path)
	if err != nil {
		return nil, nil, werr.New(werr.KindStateFatal, "acquire lock", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || len(data) == 0:
		seed := uint64(0)
		if configuredSeed != nil {
			seed = *configuredSeed
		} else if seed, err = randomSeed(); err != nil {
			_ = lock.Release()
			return nil, nil, werr.New(werr.KindStateFatal, "sample seed", err)
		}
		baseDir := filepath.Join(dir, fmt.Sprintf("wallet-%d", id))
		return fresh(seed, baseDir), lock, nil
	case err != nil:
		_ = lock.Release()
		return nil, nil, werr.New(werr.KindStateFatal, "read state file", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		_ = lock.Release()
		return nil, nil, werr.New(werr.KindStateFatal, "parse state file", err)
	}

	st := &State{
		Accounts:              p.Accounts,
		Balances:              p.Balances,
		Bonds:                 p.Bonds,
		ShieldedBalances:      p.ShieldedBalances,
		Validators:            p.Validators,
		DeactivatedValidators: p.DeactivatedValidators,
		Proposals:             p.Proposals,
		ClaimedEpochs:         p.ClaimedEpochs,
		Stats:                 p.Stats,
		Seed:                  p.Seed,
		BaseDir:               p.BaseDir,
		rng:                   newSeededRNG(p.Seed),
	}
	return st, lock, nil
}

// Save serializes state to its path and releases the lock unconditionally,
// per the guaranteed-release contract (spec §4.1, §9). Writes go through a
// temp file + rename so a crash mid-write cannot corrupt the prior state.
func Save(dir string, id uint64, state *State, lock *LockHandle) error {
	defer lock.Release()

	path := filepath.Join(dir, fmt.Sprintf("state-%d.json", id))
	p := persisted{
		Accounts:              state.Accounts,
		Balances:              state.Balances,
		Bonds:                 state.Bonds,
		ShieldedBalances:      state.ShieldedBalances,
		Validators:            state.Validators,
		DeactivatedValidators: state.DeactivatedValidators,
		Proposals:             state.Proposals,
		ClaimedEpochs:         state.ClaimedEpochs,
		Stats:                 state.Stats,
		Seed:                  state.Seed,
		BaseDir:               state.BaseDir,
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return werr.New(werr.KindStateFatal, "marshal state", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return werr.New(werr.KindStateFatal, "write state file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return werr.New(werr.KindStateFatal, "rename state file", err)
	}
	return nil
}
