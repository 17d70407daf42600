package wlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssertionEmitsTagHitAndDetails(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)
	Assertion(logger, Always, "balance settled", true, slog.String("alias", "alice"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "always", decoded["assertion"])
	require.Equal(t, true, decoded["hit"])
	require.Equal(t, "alice", decoded["alias"])
}
