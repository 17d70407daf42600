package alias

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKeepsBaseRelationship(t *testing.T) {
	base := New("alice")
	sk := Derive(base, SpendingKey)

	require.Equal(t, SpendingKey, sk.Kind())
	require.Equal(t, base, sk.Base())
	require.NotEqual(t, base.Name(), sk.Name())
}

func TestFaucetSingleton(t *testing.T) {
	require.True(t, Faucet.IsFaucet())
	require.False(t, New("faucet-imposter").IsFaucet())
}

func TestAliasJSONMapKeyRoundTrip(t *testing.T) {
	m := map[Alias]uint64{
		New("alice"): 10,
		Faucet:       0,
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[Alias]uint64
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, uint64(10), decoded[New("alice")])
}
