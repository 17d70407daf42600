package sdk

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"namadrift/internal/alias"
)

// walletEntry is one alias's key material as stored on disk.
type walletEntry struct {
	Alias      string `toml:"alias"`
	PrivateKey string `toml:"private_key"`
	Address    string `toml:"address"`
}

type walletFile struct {
	ID      string        `toml:"id"`
	Entries []walletEntry `toml:"entry"`
}

// Wallet is the on-disk keystore for every alias the workload has ever
// generated, TOML-encoded the way the teacher persists its node config
// (load-then-rewrite-whole-file, rather than an append-only log).
type Wallet struct {
	mu      sync.Mutex
	path    string
	id      string
	entries map[alias.Alias]walletEntry
}

// LoadWallet opens (or creates) the wallet file at path. A freshly created
// wallet is stamped with a random ID so its log lines can be correlated
// across invocations sharing the same state directory.
func LoadWallet(path string) (*Wallet, error) {
	w := &Wallet{path: path, id: uuid.NewString(), entries: map[alias.Alias]walletEntry{}}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return w, nil
	}
	var wf walletFile
	if _, err := toml.DecodeFile(path, &wf); err != nil {
		return nil, fmt.Errorf("sdk: decode wallet file: %w", err)
	}
	if wf.ID != "" {
		w.id = wf.ID
	}
	for _, e := range wf.Entries {
		w.entries[alias.New(e.Alias)] = e
	}
	return w, nil
}

// ID returns the wallet's stable correlation identifier.
func (w *Wallet) ID() string { return w.id }

// Find returns the private key registered for a, if any.
func (w *Wallet) Find(a alias.Alias) (*PrivateKey, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[a]
	if !ok {
		return nil, false, nil
	}
	key, err := PrivateKeyFromHex(e.PrivateKey)
	if err != nil {
		return nil, false, fmt.Errorf("sdk: decode stored key for %s: %w", a, err)
	}
	return key, true, nil
}

// Insert registers a newly generated key pair under alias a, overwriting
// any existing entry.
func (w *Wallet) Insert(a alias.Alias, key *PrivateKey) error {
	addr, err := key.PubKey().Address()
	if err != nil {
		return fmt.Errorf("sdk: derive address for %s: %w", a, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[a] = walletEntry{Alias: a.Name(), PrivateKey: key.Hex(), Address: addr.String()}
	return nil
}

// Save writes the wallet atomically (temp file + rename), mirroring the
// state store's crash-safe write discipline.
func (w *Wallet) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf := walletFile{ID: w.id, Entries: make([]walletEntry, 0, len(w.entries))}
	for _, e := range w.entries {
		wf.Entries = append(wf.Entries, e)
	}
	tmp := w.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("sdk: open wallet temp file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(wf); err != nil {
		f.Close()
		return fmt.Errorf("sdk: encode wallet file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sdk: close wallet temp file: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("sdk: rename wallet file: %w", err)
	}
	return nil
}
