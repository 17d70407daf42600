package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Query().Do(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestDoReturnsInnerErrorUnchangedOnExhaustion(t *testing.T) {
	sentinel := errors.New("still failing")
	attempts := 0
	err := Probe().Do(context.Background(), func() error {
		attempts++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 4, attempts)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := Query().Do(ctx, func() error {
		attempts++
		return errors.New("transient")
	})
	require.Error(t, err)
	require.LessOrEqual(t, attempts, 1)
}
