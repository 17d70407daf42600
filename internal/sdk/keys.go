package sdk

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"
)

// PrivateKey is a chain signing key. Transaction construction and signing
// themselves remain the chain SDK's responsibility (§6.4); this type only
// carries key material between the wallet file and the builder calls.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// PublicKey is the public half of a PrivateKey.
type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a fresh secp256k1 key pair, used by the
// NewWalletKeyPair task.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(ethcrypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private key encoding, as stored in the wallet file.
func (k *PrivateKey) Bytes() []byte { return ethcrypto.FromECDSA(k.PrivateKey) }

// Hex returns the private key hex-encoded.
func (k *PrivateKey) Hex() string { return hex.EncodeToString(k.Bytes()) }

// PubKey derives the public key.
func (k *PrivateKey) PubKey() *PublicKey { return &PublicKey{&k.PrivateKey.PublicKey} }

// Address derives the implicit-account address for this public key.
func (k *PublicKey) Address() (Address, error) { return DeriveImplicitAddress(k.PublicKey) }

// PrivateKeyFromHex decodes a hex-encoded private key, as read back from the
// wallet file.
func PrivateKeyFromHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// PromptSecretKeyHex reads a hex-encoded secret key from the controlling
// terminal without echoing it, falling back to a plain stdin read when
// stdin isn't a terminal (e.g. piped input in CI).
func PromptSecretKeyHex(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Scanln(&line); err != nil {
			return "", fmt.Errorf("sdk: read secret key from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("sdk: read secret key: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
