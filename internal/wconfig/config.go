// Package wconfig is the file-backed configuration layer for settings the
// workload driver and health prober need beyond their CLI flags, modeled on
// config.Load's "decode TOML, fill defaults, write back" idiom.
package wconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the on-disk settings for where a workload invocation keeps
// its state, wallet, and shielded-context directories.
type Config struct {
	StateDir    string `toml:"StateDir"`
	WalletDir   string `toml:"WalletDir"`
	ShieldedDir string `toml:"ShieldedDir"`
}

func defaultConfig() Config {
	return Config{StateDir: "./workload-data", WalletDir: "./workload-data/wallets", ShieldedDir: "./workload-data/masp"}
}

// Load reads path as TOML, filling in and persisting defaults for any field
// left unset. A missing file is initialized with defaults rather than
// treated as an error.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return writeConfig(path, defaultConfig())
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return writeConfig(path, cfg)
}

func writeConfig(path string, cfg Config) (Config, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
