// Package sdk is the external-collaborator boundary: a thin JSON-RPC client
// over a running chain node plus the wallet and shielded-context handles the
// workload driver treats as already-solved problems (cryptographic
// transaction construction, wire encoding, and MASP sync are out of scope;
// this package only calls out to them).
package sdk

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	jsonRPCVersion = "2.0"
	defaultRPCID   = 1
)

// Client wraps a JSON-RPC endpoint exposing the chain's read and
// transaction-submission methods.
type Client struct {
	endpoint   string
	httpClient *http.Client
	chainID    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for RPC calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New initializes a client bound to endpoint for the given chain id.
func New(endpoint, chainID string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("sdk: endpoint required")
	}
	c := &Client{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		chainID:    chainID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Call invokes method with params and decodes the result into out. It
// performs exactly one HTTP round trip; callers needing resilience against
// transient failures wrap Call with a retry policy (see internal/retry and
// internal/chainquery).
func (c *Client) Call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	payload := rpcRequest{JSONRPC: jsonRPCVersion, ID: defaultRPCID, Method: method, Params: params}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sdk: encode rpc payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: rpc call failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sdk: rpc error status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("sdk: decode rpc response: %w", err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("sdk: rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if out == nil || len(decoded.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("sdk: decode rpc result: %w", err)
	}
	return nil
}

// ChainID returns the chain identifier the client was configured with, used
// to stamp outgoing transactions.
func (c *Client) ChainID() string { return c.chainID }

// Broadcast submits a pre-built, signed transaction envelope and returns the
// chain's outcome (applied, rejected, or a broadcast-layer failure). The
// envelope is sent hex-encoded, the same form BuildTx receives it in.
// Broadcast makes a single attempt and never retries on its own (spec: a
// submission is either a definitive applied/rejected outcome or a broadcast
// failure).
func (c *Client) Broadcast(ctx context.Context, txBytes []byte) (TxOutcome, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, "workload_broadcastTx", []interface{}{hex.EncodeToString(txBytes)}, &raw); err != nil {
		return TxOutcome{}, err
	}
	var outcome TxOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return TxOutcome{}, fmt.Errorf("sdk: decode broadcast outcome: %w", err)
	}
	return outcome, nil
}

// TxOutcome is the chain's verdict on a submitted transaction.
type TxOutcome struct {
	Height   uint64 `json:"height"`
	Applied  bool   `json:"applied"`
	Accepted bool   `json:"accepted"`
	Code     uint32 `json:"code"`
	Info     string `json:"info"`
}
