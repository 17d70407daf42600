package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"namadrift/internal/chainquery"
)

// Collaborators bundles the external reads a Check needs: the chain query
// handle and an HTTP client bound to the MASP indexer's base URL.
type Collaborators struct {
	Querier        *chainquery.Querier
	MaspIndexerURL string
	HTTPClient     *http.Client
}

func (c Collaborators) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 5 * time.Second}
}

// Check is one liveness invariant on its own wall-clock cadence.
type Check interface {
	Name() string
	CadenceSeconds() int
	Do(ctx context.Context, c Collaborators, state *State) error
}

// HeightCheck asserts the chain's latest height never decreases.
type HeightCheck struct{}

func (HeightCheck) Name() string          { return "HeightCheck" }
func (HeightCheck) CadenceSeconds() int   { return 6 }
func (HeightCheck) Do(ctx context.Context, c Collaborators, state *State) error {
	height, err := c.Querier.BlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("query latest block: %w", err)
	}
	if height < state.LastBlockHeight {
		return fmt.Errorf("block height decreased: %d -> %d", state.LastBlockHeight, height)
	}
	if height == state.LastBlockHeight {
		state.TotalTimesHeightWasEqual++
	}
	state.LastBlockHeight = height
	return nil
}

// EpochCheck asserts the chain's epoch never decreases.
type EpochCheck struct{}

func (EpochCheck) Name() string        { return "EpochCheck" }
func (EpochCheck) CadenceSeconds() int { return 15 }
func (EpochCheck) Do(ctx context.Context, c Collaborators, state *State) error {
	epoch, err := c.Querier.Epoch(ctx)
	if err != nil {
		return fmt.Errorf("query epoch: %w", err)
	}
	if epoch < state.LastEpoch {
		return fmt.Errorf("epoch decreased: %d -> %d", state.LastEpoch, epoch)
	}
	state.LastEpoch = epoch
	return nil
}

// MaspIndexerHealth asserts the MASP indexer's health endpoint returns 2xx.
type MaspIndexerHealth struct{}

func (MaspIndexerHealth) Name() string        { return "MaspIndexerHealth" }
func (MaspIndexerHealth) CadenceSeconds() int { return 30 }
func (MaspIndexerHealth) Do(ctx context.Context, c Collaborators, state *State) error {
	url := strings.TrimRight(c.MaspIndexerURL, "/") + "/api/v1/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build masp indexer health request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("connect to masp indexer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("masp indexer health returned status %d", resp.StatusCode)
	}
	return nil
}

// MaspIndexerHeight asserts the indexer's last-synced block height never
// decreases.
type MaspIndexerHeight struct{}

func (MaspIndexerHeight) Name() string        { return "MaspIndexerHeight" }
func (MaspIndexerHeight) CadenceSeconds() int { return 15 }
func (MaspIndexerHeight) Do(ctx context.Context, c Collaborators, state *State) error {
	url := strings.TrimRight(c.MaspIndexerURL, "/") + "/api/v1/height"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build masp indexer height request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("query masp indexer height: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("masp indexer height returned status %d", resp.StatusCode)
	}
	var parsed struct {
		BlockHeight uint64 `json:"block_height"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode masp indexer height response: %w", err)
	}
	if parsed.BlockHeight < state.LastMaspIndexerHeight {
		return fmt.Errorf("masp indexer height decreased: %d -> %d", state.LastMaspIndexerHeight, parsed.BlockHeight)
	}
	state.LastMaspIndexerHeight = parsed.BlockHeight
	return nil
}

// All is the fixed set of checks the prober runs, in the order the spec
// table lists them.
func All() []Check {
	return []Check{HeightCheck{}, EpochCheck{}, MaspIndexerHealth{}, MaspIndexerHeight{}}
}
