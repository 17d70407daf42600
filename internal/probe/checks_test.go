package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"namadrift/internal/chainquery"
	"namadrift/internal/sdk"
)

func newQuerier(t *testing.T, handler func(method string) interface{}) *chainquery.Querier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1, "result": handler(env.Method),
		}))
	}))
	t.Cleanup(srv.Close)
	client, err := sdk.New(srv.URL, "test-chain")
	require.NoError(t, err)
	return chainquery.New(client)
}

func TestHeightCheckAcceptsNonDecreasingHeight(t *testing.T) {
	q := newQuerier(t, func(method string) interface{} { return uint64(20) })
	state := &State{LastBlockHeight: 10}
	err := HeightCheck{}.Do(context.Background(), Collaborators{Querier: q}, state)
	require.NoError(t, err)
	require.Equal(t, uint64(20), state.LastBlockHeight)
}

func TestHeightCheckFailsOnDecrease(t *testing.T) {
	q := newQuerier(t, func(method string) interface{} { return uint64(5) })
	state := &State{LastBlockHeight: 10}
	err := HeightCheck{}.Do(context.Background(), Collaborators{Querier: q}, state)
	require.Error(t, err)
}

func TestHeightCheckCountsEqualObservations(t *testing.T) {
	q := newQuerier(t, func(method string) interface{} { return uint64(10) })
	state := &State{LastBlockHeight: 10}
	require.NoError(t, HeightCheck{}.Do(context.Background(), Collaborators{Querier: q}, state))
	require.Equal(t, uint64(1), state.TotalTimesHeightWasEqual)
}

func TestEpochCheckFailsOnDecrease(t *testing.T) {
	q := newQuerier(t, func(method string) interface{} { return uint64(2) })
	state := &State{LastEpoch: 5}
	err := EpochCheck{}.Do(context.Background(), Collaborators{Querier: q}, state)
	require.Error(t, err)
}

func TestMaspIndexerHealthAcceptsSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	err := MaspIndexerHealth{}.Do(context.Background(), Collaborators{MaspIndexerURL: srv.URL}, &State{})
	require.NoError(t, err)
}

func TestMaspIndexerHealthFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	err := MaspIndexerHealth{}.Do(context.Background(), Collaborators{MaspIndexerURL: srv.URL}, &State{})
	require.Error(t, err)
}

func TestMaspIndexerHeightFailsOnDecrease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"block_height": 3})
	}))
	t.Cleanup(srv.Close)
	state := &State{LastMaspIndexerHeight: 10}
	err := MaspIndexerHeight{}.Do(context.Background(), Collaborators{MaspIndexerURL: srv.URL}, state)
	require.Error(t, err)
}

func TestAllReturnsFourChecksWithSpecCadences(t *testing.T) {
	checks := All()
	require.Len(t, checks, 4)
	cadences := map[string]int{}
	for _, c := range checks {
		cadences[c.Name()] = c.CadenceSeconds()
	}
	require.Equal(t, 6, cadences["HeightCheck"])
	require.Equal(t, 15, cadences["EpochCheck"])
	require.Equal(t, 30, cadences["MaspIndexerHealth"])
	require.Equal(t, 15, cadences["MaspIndexerHeight"])
}
