package werr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodes(t *testing.T) {
	cases := map[Kind]int{
		KindSuccess:         0,
		KindStateCheck:      1,
		KindBuildFailure:    2,
		KindExecutionFailure: 3,
		KindBroadcastFailure: 4,
		KindOtherFailure:    5,
		KindNoTask:          6,
		KindEmptyBatch:      7,
		KindStateFatal:      8,
	}
	for kind, code := range cases {
		require.Equal(t, code, kind.ExitCode())
	}
}

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	base := New(KindBroadcastFailure, "submit", errors.New("connection refused"))
	wrapped := errors.Join(base)

	require.Equal(t, KindBroadcastFailure, KindOf(wrapped))
	require.Equal(t, KindOtherFailure, KindOf(errors.New("untagged")))
	require.Equal(t, KindSuccess, KindOf(nil))
}
