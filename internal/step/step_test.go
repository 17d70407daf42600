package step

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"namadrift/internal/alias"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

func fundedState(t *testing.T) *wstate.State {
	t.Helper()
	s := wstate.New(7)
	for _, name := range []string{"alice", "bob", "carol"} {
		a := alias.New(name)
		s.AddImplicitAccount(a)
		require.NoError(t, s.IncreaseBalance(a, alias.NativeDenom, 10_000))
	}
	return s
}

func TestNewWalletKeyPairAlwaysValid(t *testing.T) {
	s := wstate.New(1)
	require.True(t, NewWalletKeyPair.IsValid(s, 0))
	tasks, err := NewWalletKeyPair.BuildTasks(context.Background(), nil, s, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestFaucetTransferRequiresAnAccount(t *testing.T) {
	s := wstate.New(1)
	require.False(t, FaucetTransfer.IsValid(s, 0))

	s.AddImplicitAccount(alias.New("alice"))
	require.True(t, FaucetTransfer.IsValid(s, 0))
	tasks, err := FaucetTransfer.BuildTasks(context.Background(), nil, s, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestTransparentTransferPicksDistinctSourceAndTarget(t *testing.T) {
	s := fundedState(t)
	require.True(t, TransparentTransfer.IsValid(s, 0))
	tasks, err := TransparentTransfer.BuildTasks(context.Background(), nil, s, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	tr := tasks[0].(*task.TransparentTransfer)
	require.NotEqual(t, tr.Source, tr.Target)
	require.GreaterOrEqual(t, tr.Amount, wstate.MinTransferBalance)
}

func TestBondFallsBackToGenesisValidatorWithoutLocalValidators(t *testing.T) {
	s := fundedState(t)
	require.True(t, Bond.IsValid(s, 3))
	tasks, err := Bond.BuildTasks(context.Background(), nil, s, 3)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	b := tasks[0].(*task.Bond)
	require.Equal(t, genesisValidator, b.Validator)
}

func TestUnbondRequiresExistingBond(t *testing.T) {
	s := fundedState(t)
	require.False(t, Unbond.IsValid(s, 0))

	source := alias.New("alice")
	s.ModifyBond(source, genesisValidator, 1, 500)
	require.True(t, Unbond.IsValid(s, 2))
	tasks, err := Unbond.BuildTasks(context.Background(), nil, s, 2)
	require.NoError(t, err)
	u := tasks[0].(*task.Unbond)
	require.LessOrEqual(t, u.Amount, uint64(500))
	require.GreaterOrEqual(t, u.Amount, uint64(1))
}

func TestBatchBondRequiresThreeFundedAccounts(t *testing.T) {
	s := wstate.New(1)
	a, b := alias.New("a"), alias.New("b")
	s.AddImplicitAccount(a)
	s.AddImplicitAccount(b)
	require.NoError(t, s.IncreaseBalance(a, alias.NativeDenom, 10_000))
	require.NoError(t, s.IncreaseBalance(b, alias.NativeDenom, 10_000))
	require.False(t, BatchBond.IsValid(s, 0))

	s2 := fundedState(t)
	require.True(t, BatchBond.IsValid(s2, 0))
	tasks, err := BatchBond.BuildTasks(context.Background(), nil, s2, 4)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	batch := tasks[0].(*task.Batch)
	require.Len(t, batch.Tasks, 3)
}

func TestBatchRandomRequiresBonds(t *testing.T) {
	s := fundedState(t)
	require.False(t, BatchRandom.IsValid(s, 0))

	s.ModifyBond(alias.New("alice"), genesisValidator, 1, 1000)
	s.ModifyBond(alias.New("bob"), genesisValidator, 1, 1000)
	s.ModifyBond(alias.New("carol"), genesisValidator, 1, 1000)
	require.True(t, BatchRandom.IsValid(s, 2))
	tasks, err := BatchRandom.BuildTasks(context.Background(), nil, s, 2)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	batch := tasks[0].(*task.Batch)
	require.Len(t, batch.Tasks, 3)
}

func TestInitAccountRequiresThreeImplicitAccounts(t *testing.T) {
	s := fundedState(t)
	require.True(t, InitAccount.IsValid(s, 0))
	tasks, err := InitAccount.BuildTasks(context.Background(), nil, s, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	init := tasks[0].(*task.InitAccount)
	require.Len(t, init.Signers, 3)
}

func TestReactivateValidatorRequiresDeactivatedEntry(t *testing.T) {
	s := wstate.New(1)
	require.False(t, ReactivateValidator.IsValid(s, 0))

	validator := alias.New("v1")
	s.AddEstablishedAccount(validator, []alias.Alias{validator}, 1)
	s.SetEstablishedAsValidator(validator)
	s.DeactivateValidator(validator)
	require.True(t, ReactivateValidator.IsValid(s, 0))
	tasks, err := ReactivateValidator.BuildTasks(context.Background(), nil, s, 5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestByNameRegistersEveryStep(t *testing.T) {
	for _, name := range []string{
		"NewWalletKeyPair", "FaucetTransfer", "TransparentTransfer",
		"Bond", "Unbond", "Redelegate", "ClaimRewards",
		"Shielding", "ShieldedTransfer", "Unshielding",
		"InitAccount", "UpdateAccount", "BecomeValidator",
		"ChangeMetadata", "ChangeConsensusKeys", "DeactivateValidator", "ReactivateValidator",
		"DefaultProposal", "VoteProposal", "BatchBond", "BatchRandom",
	} {
		_, ok := ByName[name]
		require.True(t, ok, "missing step registration for %s", name)
	}
}
