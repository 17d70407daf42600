package sdk

import (
	"context"
	"fmt"
	"os"
)

// ShieldedContext tracks the on-disk MASP viewing-key context file a
// shielded operation needs to be loaded before it can build a transaction
// and saved after a successful sync. Decrypting and scanning the shielded
// pool itself is the chain SDK's responsibility; this type only tracks
// whether the local copy is fresh enough to use (spec §6.4: "MASP
// shielded-context sync" is an external collaborator).
type ShieldedContext struct {
	path       string
	loaded     bool
	lastSync   uint64
	indexerURL string
}

// SetIndexerURL records the MASP indexer base URL a later Sync should
// consult for witness data. Grounded on the original driver's Ctx carrying
// masp_indexer_url alongside its shielded state.
func (s *ShieldedContext) SetIndexerURL(url string) { s.indexerURL = url }

// IndexerURL returns the MASP indexer base URL set via SetIndexerURL.
func (s *ShieldedContext) IndexerURL() string { return s.indexerURL }

// LoadShieldedContext opens the context file at path without validating its
// contents; a zero-length or missing file is treated as "never synced".
func LoadShieldedContext(path string) (*ShieldedContext, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &ShieldedContext{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sdk: stat shielded context: %w", err)
	}
	return &ShieldedContext{path: path, loaded: info.Size() > 0}, nil
}

// Loaded reports whether a prior sync produced usable context data.
func (s *ShieldedContext) Loaded() bool { return s.loaded }

// LastSyncHeight returns the block height the context was last synced to.
func (s *ShieldedContext) LastSyncHeight() uint64 { return s.lastSync }

// Sync advances the local shielded context up to the chain's current
// height. The real scan is delegated to the chain SDK via RPC; here it is
// represented as a single idempotent call so callers (Shielding,
// ShieldedTransfer, Unshielding build_tx) can assume a synced context
// afterward.
func (s *ShieldedContext) Sync(ctx context.Context, client *Client, height uint64) error {
	var ok bool
	if err := client.Call(ctx, "workload_syncShieldedContext", []interface{}{height}, &ok); err != nil {
		return fmt.Errorf("sdk: sync shielded context: %w", err)
	}
	s.loaded = true
	s.lastSync = height
	return nil
}

// Save persists the synced context to disk so the next invocation does not
// need to rescan from genesis.
func (s *ShieldedContext) Save() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("sdk: open shielded context file: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "synced_height=%d\n", s.lastSync)
	return err
}
