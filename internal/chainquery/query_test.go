package chainquery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cenkalti/backoff/v4"

	"namadrift/internal/alias"
	"namadrift/internal/retry"
	"namadrift/internal/sdk"
)

// fastPolicyForTests swaps in a one-millisecond backoff so retry tests do
// not wait out the real 1s/10s production schedule.
func fastPolicyForTests() *retry.Policy {
	return retry.NewForTests(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ConstantBackOff{Interval: time.Millisecond}, 5)
	})
}

type rpcEnvelope struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

func newTestServer(t *testing.T, handler func(method string, params []interface{}) interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env rpcEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		result := handler(env.Method, env.Params)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": result}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestBalanceSucceedsOnFirstAttempt(t *testing.T) {
	srv := newTestServer(t, func(method string, params []interface{}) interface{} {
		require.Equal(t, "workload_balance", method)
		return map[string]interface{}{"address": "tnam1abc", "amount": 1234}
	})
	defer srv.Close()

	client, err := sdk.New(srv.URL, "test-chain")
	require.NoError(t, err)
	q := New(client)

	addr, amount, err := q.Balance(context.Background(), alias.New("bob"), "nam")
	require.NoError(t, err)
	require.Equal(t, "tnam1abc", addr)
	require.Equal(t, uint64(1234), amount)
}

func TestBalanceRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var env rpcEnvelope
		json.NewDecoder(r.Body).Decode(&env)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": map[string]interface{}{"address": "x", "amount": 1}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := sdk.New(srv.URL, "test-chain")
	require.NoError(t, err)
	q := &Querier{client: client, policy: fastPolicyForTests()}

	_, amount, err := q.Balance(context.Background(), alias.New("bob"), "nam")
	require.NoError(t, err)
	require.Equal(t, uint64(1), amount)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestWaitBlockSettlementBlocksUntilHeightAdvances(t *testing.T) {
	var height int32 = 10
	srv := newTestServer(t, func(method string, params []interface{}) interface{} {
		return atomic.LoadInt32(&height)
	})
	defer srv.Close()

	client, err := sdk.New(srv.URL, "test-chain")
	require.NoError(t, err)
	q := New(client)

	go func() {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&height, 11)
	}()

	err = q.WaitBlockSettlement(context.Background(), 10, 5*time.Millisecond)
	require.NoError(t, err)
}
