package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"namadrift/internal/alias"
	"namadrift/internal/wstate"
)

func freshTestState() *wstate.State {
	return wstate.New(1)
}

func TestTransparentTransferApplyMovesBalance(t *testing.T) {
	st := freshTestState()
	source := alias.New("alice")
	target := alias.New("bob")
	st.AddImplicitAccount(source)
	st.AddImplicitAccount(target)
	require.NoError(t, st.IncreaseBalance(source, alias.NativeDenom, 1000))

	tr := NewTransparentTransfer(source, target, 300)
	tr.Apply(st)

	require.Equal(t, uint64(700), st.GetBalanceFor(source))
	require.Equal(t, uint64(300), st.GetBalanceFor(target))
}

func TestTransparentTransferAggregateFeesSkipsFaucet(t *testing.T) {
	tr := NewTransparentTransfer(alias.Faucet, alias.New("bob"), 100)
	fees := map[alias.Alias]uint64{}
	tr.AggregateFees(fees, true)
	require.Empty(t, fees)
}

func TestTransparentTransferAggregateFeesChargesNonFaucetPayer(t *testing.T) {
	source := alias.New("alice")
	tr := NewTransparentTransfer(source, alias.New("bob"), 100)
	fees := map[alias.Alias]uint64{}
	tr.AggregateFees(fees, true)
	require.Equal(t, wstate.DefaultFeeInNativeToken, fees[source])
}

func TestTransparentTransferAggregateFeesSkipsWhenNotApplied(t *testing.T) {
	source := alias.New("alice")
	tr := NewTransparentTransfer(source, alias.New("bob"), 100)
	fees := map[alias.Alias]uint64{}
	tr.AggregateFees(fees, false)
	require.Empty(t, fees)
}

func TestBondApplyDecrementsBalanceAndAddsBond(t *testing.T) {
	st := freshTestState()
	source := alias.New("carol")
	st.AddImplicitAccount(source)
	require.NoError(t, st.IncreaseBalance(source, alias.NativeDenom, 500))

	b := NewBond(source, "validator-1", 200, 5)
	b.Apply(st)

	require.Equal(t, uint64(300), st.GetBalanceFor(source))
	require.True(t, st.AnyBond())
}

func TestRedelegateGasMultiplier(t *testing.T) {
	r := NewRedelegate(alias.New("d"), "v1", "v2", 100, 1)
	require.Equal(t, DefaultGasLimit*5, r.Settings().GasLimit)
}

func TestBatchSummaryJoinsInnerTasks(t *testing.T) {
	tr1 := NewFaucetTransfer(alias.New("x"), 10)
	tr2 := NewFaucetTransfer(alias.New("y"), 20)
	batch := NewBatch([]BatchTask{tr1, tr2}, FaucetBatchSettings(2))
	require.Contains(t, batch.Summary(), "batch-2")
	require.Contains(t, batch.Summary(), tr1.Summary())
}

func TestBatchApplyFoldsAllInnerTasks(t *testing.T) {
	st := freshTestState()
	a := alias.New("z")
	st.AddImplicitAccount(a)
	tr1 := NewFaucetTransfer(a, 10)
	tr2 := NewFaucetTransfer(a, 20)
	batch := NewBatch([]BatchTask{tr1, tr2}, FaucetBatchSettings(2))
	batch.Apply(st)
	require.Equal(t, uint64(30), st.GetBalanceFor(a))
}
