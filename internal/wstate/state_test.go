package wstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"namadrift/internal/alias"
)

func TestLoadCreatesFreshStateWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	seed := uint64(42)
	st, lock, err := Load(dir, 1, &seed)
	require.NoError(t, err)
	require.NotNil(t, lock)
	require.Equal(t, seed, st.Seed)
	require.Contains(t, st.Accounts, alias.Faucet)
	require.NoError(t, lock.Release())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	seed := uint64(7)
	st, lock, err := Load(dir, 2, &seed)
	require.NoError(t, err)

	acc := alias.New("bob")
	st.AddImplicitAccount(acc)
	require.NoError(t, st.IncreaseBalance(acc, "nam", 500))
	st.ModifyBond(acc, "validator-1", 3, 100)
	st.RecordStat("TransparentTransfer", true, false, false)

	require.NoError(t, Save(dir, 2, st, lock))

	reloaded, lock2, err := Load(dir, 2, nil)
	require.NoError(t, err)
	defer lock2.Release()

	require.Equal(t, seed, reloaded.Seed)
	require.Equal(t, uint64(500), reloaded.GetBalanceFor(acc))
	require.True(t, reloaded.AnyBond())
	require.Equal(t, uint64(1), reloaded.Stats["TransparentTransfer"].Successes)
}

func TestLoadParseErrorIsStateFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state-3.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, _, err := Load(dir, 3, nil)
	require.Error(t, err)
}

func TestLockCreatesLockFileAndReleasesIdempotently(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state-4.json.lock")
	h1, err := acquireLock(filepath.Join(dir, "state-4.json"))
	require.NoError(t, err)
	require.FileExists(t, path)
	require.NoError(t, h1.Release())
	// Idempotent release.
	require.NoError(t, h1.Release())
}

func TestIncreaseBalanceOverflowRejected(t *testing.T) {
	st := fresh(1, "/tmp")
	acc := alias.New("carol")
	st.AddImplicitAccount(acc)
	require.NoError(t, st.IncreaseBalance(acc, "nam", ^uint64(0)))
	require.Error(t, st.IncreaseBalance(acc, "nam", 1))
}

func TestDecreaseBalanceFaucetExempt(t *testing.T) {
	st := fresh(1, "/tmp")
	require.NoError(t, st.DecreaseBalance(alias.Faucet, "nam", 1_000_000))
}

func TestDecreaseBalanceInsufficientRejected(t *testing.T) {
	st := fresh(1, "/tmp")
	acc := alias.New("dave")
	st.AddImplicitAccount(acc)
	require.Error(t, st.DecreaseBalance(acc, "nam", 1))
}

func TestModifyUnbondDecrementsNewestFirst(t *testing.T) {
	st := fresh(1, "/tmp")
	acc := alias.New("erin")
	st.ModifyBond(acc, "v1", 1, 100)
	st.ModifyBond(acc, "v1", 2, 50)

	require.NoError(t, st.ModifyUnbond(acc, "v1", 2, 60))

	bonds := st.Bonds[acc]
	require.Len(t, bonds, 2)
	require.Equal(t, uint64(0), bonds[1].Amount)
	require.Equal(t, uint64(90), bonds[0].Amount)
}

func TestModifyUnbondExceedingTotalErrors(t *testing.T) {
	st := fresh(1, "/tmp")
	acc := alias.New("frank")
	st.ModifyBond(acc, "v1", 1, 10)
	require.Error(t, st.ModifyUnbond(acc, "v1", 1, 100))
}

func TestRandomAccountDeterministicForSameSeed(t *testing.T) {
	st1 := fresh(99, "/tmp")
	st2 := fresh(99, "/tmp")
	names := []string{"acc-a", "acc-b", "acc-c", "acc-d", "acc-e"}
	for _, n := range names {
		a := alias.New(n)
		st1.AddImplicitAccount(a)
		st2.AddImplicitAccount(a)
	}

	a1, ok1 := st1.RandomAccount(nil)
	a2, ok2 := st2.RandomAccount(nil)
	require.Equal(t, ok1, ok2)
	require.Equal(t, a1, a2)
}

func TestRandomAccountExcludesBlacklist(t *testing.T) {
	st := fresh(1, "/tmp")
	only := alias.New("only")
	st.AddImplicitAccount(only)
	_, ok := st.RandomAccount([]alias.Alias{only, alias.Faucet})
	require.False(t, ok)
}

func TestAtLeastMASPAccountWithMinimalBalance(t *testing.T) {
	st := fresh(1, "/tmp")
	a := alias.New("shielded-holder")
	st.Accounts[a] = Account{Alias: a, Kind: AddressImplicit, IsMASPSource: true}
	st.ShieldedBalances[a] = 1000

	require.True(t, st.AtLeastMASPAccountWithMinimalBalance(1, 500))
	require.False(t, st.AtLeastMASPAccountWithMinimalBalance(1, 2000))
}

func TestProposalVotableWindow(t *testing.T) {
	p := Proposal{ID: 1, VotingStartEpoch: 10, VotingEndEpoch: 20}
	require.False(t, p.Votable(9))
	require.True(t, p.Votable(10))
	require.True(t, p.Votable(19))
	require.False(t, p.Votable(20))
}

func TestGetRedelegationsTargetsForIgnoresZeroedBonds(t *testing.T) {
	st := fresh(1, "/tmp")
	acc := alias.New("greta")
	st.ModifyBond(acc, "v1", 1, 100)
	st.ModifyBond(acc, "v2", 1, 0)

	targets := st.GetRedelegationsTargetsFor(acc)
	require.Contains(t, targets, "v1")
	require.NotContains(t, targets, "v2")
}
