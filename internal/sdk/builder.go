package sdk

import (
	"context"
	"encoding/hex"
	"fmt"
)

// BuildRequest describes one task's transaction in the shape the external
// chain SDK needs to construct and sign it. Args carries the task-specific
// fields (amounts, validator addresses, proposal content, ...) as a plain
// map so internal/task stays free of any chain wire-format knowledge.
type BuildRequest struct {
	Kind     string                 `json:"kind"`
	Signers  []string               `json:"signers"`
	Payer    string                 `json:"payer"`
	GasLimit uint64                 `json:"gas_limit"`
	Args     map[string]interface{} `json:"args"`
}

// BuiltTx is an opaque, already-signed transaction envelope ready to
// broadcast.
type BuiltTx struct {
	Bytes []byte
	Fee   uint64
}

// BuildTx delegates construction and signing of req to the chain SDK.
// Cryptographic transaction construction and wire encoding are out of
// scope here (spec §6.4); this call is the single seam where that
// collaborator is invoked.
func (c *Client) BuildTx(ctx context.Context, req BuildRequest) (*BuiltTx, error) {
	var raw struct {
		TxHex string `json:"tx_hex"`
		Fee   uint64 `json:"fee"`
	}
	if err := c.Call(ctx, "workload_buildTx", []interface{}{req}, &raw); err != nil {
		return nil, fmt.Errorf("sdk: build tx for %s: %w", req.Kind, err)
	}
	txBytes, err := hex.DecodeString(raw.TxHex)
	if err != nil {
		return nil, fmt.Errorf("sdk: decode built tx: %w", err)
	}
	return &BuiltTx{Bytes: txBytes, Fee: raw.Fee}, nil
}
