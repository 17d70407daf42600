package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/sdk"
	"namadrift/internal/wstate"
)

type fakeChain struct {
	height          uint64
	balances        map[string]uint64
	pkRevealed      map[string]bool
	broadcastCode   uint32
	broadcastInfo   string
	broadcastAccept bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		height:          10,
		balances:        map[string]uint64{"faucet": 1_000_000},
		pkRevealed:      map[string]bool{"faucet": true},
		broadcastAccept: true,
	}
}

func (f *fakeChain) serve(t *testing.T) (*httptest.Server, *sdk.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		result := f.handle(env.Method, env.Params)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": result}))
	}))
	t.Cleanup(srv.Close)
	client, err := sdk.New(srv.URL, "test-chain")
	require.NoError(t, err)
	return srv, client
}

func (f *fakeChain) handle(method string, params []interface{}) interface{} {
	switch method {
	case "workload_blockHeight":
		f.height++
		return f.height
	case "workload_epoch":
		return uint64(5)
	case "workload_balance":
		name, _ := params[0].(string)
		return map[string]interface{}{"address": "addr", "amount": f.balances[name]}
	case "workload_pkRevealed":
		name, _ := params[0].(string)
		return f.pkRevealed[name]
	case "workload_buildTx":
		return map[string]interface{}{"tx_hex": "ab", "fee": 250}
	case "workload_broadcastTx":
		return map[string]interface{}{
			"height": f.height, "applied": true, "accepted": f.broadcastAccept,
			"code": f.broadcastCode, "info": f.broadcastInfo,
		}
	default:
		return nil
	}
}

func fundedState(t *testing.T) *wstate.State {
	t.Helper()
	s := wstate.New(1)
	s.AddImplicitAccount(alias.New("alice"))
	require.NoError(t, s.IncreaseBalance(alias.New("alice"), alias.NativeDenom, 10_000))
	return s
}

func TestInitSucceedsWhenFaucetFundedAndRevealed(t *testing.T) {
	f := newFakeChain()
	_, client := f.serve(t)
	q := chainquery.New(client)
	cfg := Config{Client: client, Querier: q, PollInterval: 10}
	require.NoError(t, Init(context.Background(), cfg))
}

func TestRunExitsCleanlyOnInvalidStep(t *testing.T) {
	f := newFakeChain()
	_, client := f.serve(t)
	q := chainquery.New(client)
	cfg := Config{Client: client, Querier: q, NoCheck: true}
	s := wstate.New(1)

	outcome := Run(context.Background(), cfg, s, "TransparentTransfer")
	require.Equal(t, 0, outcome.Kind.ExitCode())
}

func TestRunSucceedsForTransparentTransfer(t *testing.T) {
	f := newFakeChain()
	f.balances["alice"] = 10_000
	_, client := f.serve(t)
	q := chainquery.New(client)
	cfg := Config{Client: client, Querier: q, NoCheck: true, PollInterval: 1}
	s := fundedState(t)
	s.AddImplicitAccount(alias.New("bob"))
	require.NoError(t, s.IncreaseBalance(alias.New("bob"), alias.NativeDenom, 10_000))

	outcome := Run(context.Background(), cfg, s, "TransparentTransfer")
	require.NoError(t, outcome.Err)
	require.Equal(t, 0, outcome.Kind.ExitCode())
}

func TestRunClassifiesBroadcastRejection(t *testing.T) {
	f := newFakeChain()
	f.broadcastAccept = false
	_, client := f.serve(t)
	q := chainquery.New(client)
	cfg := Config{Client: client, Querier: q, NoCheck: true, PollInterval: 1}
	s := fundedState(t)
	s.AddImplicitAccount(alias.New("bob"))
	require.NoError(t, s.IncreaseBalance(alias.New("bob"), alias.NativeDenom, 10_000))

	outcome := Run(context.Background(), cfg, s, "TransparentTransfer")
	require.Equal(t, 4, outcome.Kind.ExitCode())
}

func TestRunClassifiesExecutionFailure(t *testing.T) {
	f := newFakeChain()
	f.broadcastCode = 1
	f.broadcastInfo = "insufficient gas"
	_, client := f.serve(t)
	q := chainquery.New(client)
	cfg := Config{Client: client, Querier: q, NoCheck: true, PollInterval: 1}
	s := fundedState(t)
	s.AddImplicitAccount(alias.New("bob"))
	require.NoError(t, s.IncreaseBalance(alias.New("bob"), alias.NativeDenom, 10_000))
	before := s.GetBalanceFor(alias.New("alice")) + s.GetBalanceFor(alias.New("bob"))

	outcome := Run(context.Background(), cfg, s, "TransparentTransfer")
	require.Equal(t, 3, outcome.Kind.ExitCode())

	after := s.GetBalanceFor(alias.New("alice")) + s.GetBalanceFor(alias.New("bob"))
	require.Equal(t, wstate.DefaultFeeInNativeToken, before-after,
		"an applied-but-errored tx must still debit its fee from local state")
}

func TestRunClassifiesBroadcastRejectionChargesNoFee(t *testing.T) {
	f := newFakeChain()
	f.broadcastAccept = false
	_, client := f.serve(t)
	q := chainquery.New(client)
	cfg := Config{Client: client, Querier: q, NoCheck: true, PollInterval: 1}
	s := fundedState(t)
	s.AddImplicitAccount(alias.New("bob"))
	require.NoError(t, s.IncreaseBalance(alias.New("bob"), alias.NativeDenom, 10_000))
	before := s.GetBalanceFor(alias.New("alice")) + s.GetBalanceFor(alias.New("bob"))

	outcome := Run(context.Background(), cfg, s, "TransparentTransfer")
	require.Equal(t, 4, outcome.Kind.ExitCode())
	// A rejected-before-application broadcast charges no fee (AggregateFees
	// is called with applied=false), so the zero-fee map routed through
	// finalize on this failure path leaves local balances untouched.
	after := s.GetBalanceFor(alias.New("alice")) + s.GetBalanceFor(alias.New("bob"))
	require.Equal(t, before, after)
}

func TestRunGeneratesWalletKeyPairWithoutBroadcast(t *testing.T) {
	f := newFakeChain()
	_, client := f.serve(t)
	q := chainquery.New(client)
	dir := t.TempDir()
	wallet, err := sdk.LoadWallet(filepath.Join(dir, "wallet.toml"))
	require.NoError(t, err)
	cfg := Config{Client: client, Querier: q, Wallet: wallet, NoCheck: true, PollInterval: 1}
	s := wstate.New(1)

	outcome := Run(context.Background(), cfg, s, "NewWalletKeyPair")
	require.NoError(t, outcome.Err)
	require.Equal(t, 0, outcome.Kind.ExitCode())
	require.Equal(t, 2, len(s.Accounts))
}
