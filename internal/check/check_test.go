package check

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/sdk"
)

func newQuerier(t *testing.T, handler func(method string, params []interface{}) interface{}) *chainquery.Querier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		result := handler(env.Method, env.Params)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1, "result": result,
		}))
	}))
	t.Cleanup(srv.Close)
	client, err := sdk.New(srv.URL, "test-chain")
	require.NoError(t, err)
	return chainquery.New(client)
}

func TestBalanceSourceSubtractsFee(t *testing.T) {
	a := alias.New("payer")
	q := newQuerier(t, func(method string, params []interface{}) interface{} {
		return map[string]interface{}{"address": "addr", "amount": 750}
	})

	c := BalanceSource{Alias: a, Pre: 1000, Amount: 100, Denom: "nam"}
	err := c.DoCheck(context.Background(), q, map[alias.Alias]uint64{a: 150})
	require.NoError(t, err)
}

func TestBalanceSourceMismatchFails(t *testing.T) {
	a := alias.New("payer")
	q := newQuerier(t, func(method string, params []interface{}) interface{} {
		return map[string]interface{}{"address": "addr", "amount": 999}
	})

	c := BalanceSource{Alias: a, Pre: 1000, Amount: 100, Denom: "nam"}
	err := c.DoCheck(context.Background(), q, map[alias.Alias]uint64{a: 150})
	require.Error(t, err)
}

func TestBalanceTargetAllowGreater(t *testing.T) {
	a := alias.New("receiver")
	q := newQuerier(t, func(method string, params []interface{}) interface{} {
		return map[string]interface{}{"address": "addr", "amount": 500}
	})

	c := BalanceTarget{Alias: a, Pre: 100, Amount: 50, Denom: "nam", AllowGreater: true}
	require.NoError(t, c.DoCheck(context.Background(), q, nil))

	strict := BalanceTarget{Alias: a, Pre: 100, Amount: 50, Denom: "nam"}
	require.Error(t, strict.DoCheck(context.Background(), q, nil))
}

func TestValidatorStatusActiveAcceptsBelowCapacity(t *testing.T) {
	a := alias.New("val")
	q := newQuerier(t, func(method string, params []interface{}) interface{} {
		return map[string]interface{}{"found": true, "state": "below-capacity"}
	})

	c := ValidatorStatus{Alias: a, Epoch: 10, Expected: ExpectActive}
	require.NoError(t, c.DoCheck(context.Background(), q, nil))
}

func TestDoAllShortCircuitsOnEmptyList(t *testing.T) {
	err := DoAll(context.Background(), nil, nil, nil)
	require.NoError(t, err)
}

func TestDoAllStopsAtFirstFailure(t *testing.T) {
	a := alias.New("x")
	q := newQuerier(t, func(method string, params []interface{}) interface{} {
		return false
	})
	err := DoAll(context.Background(), []Check{RevealPk{Alias: a}}, q, nil)
	require.Error(t, err)
}
