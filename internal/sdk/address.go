package sdk

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable bech32 prefix for a chain address.
type AddressPrefix string

// ImplicitPrefix is the prefix used for implicit-account addresses derived
// directly from a key pair.
const ImplicitPrefix AddressPrefix = "tnam"

// Address is a 20-byte chain address carrying its bech32 prefix.
type Address struct {
	prefix AddressPrefix
	bytes  []byte
}

// NewAddress validates and wraps a 20-byte address payload.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("sdk: address must be 20 bytes, got %d", len(b))
	}
	return Address{prefix: prefix, bytes: append([]byte(nil), b...)}, nil
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns the raw 20-byte address payload.
func (a Address) Bytes() []byte { return append([]byte(nil), a.bytes...) }

// DecodeAddress parses a bech32-encoded chain address.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("sdk: invalid bech32 address: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("sdk: convert bech32 payload: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// DeriveImplicitAddress computes the implicit-account address for an ECDSA
// public key, the same secp256k1-keccak scheme the chain uses for its own
// implicit accounts.
func DeriveImplicitAddress(pub *ecdsa.PublicKey) (Address, error) {
	raw := crypto.PubkeyToAddress(*pub)
	return NewAddress(ImplicitPrefix, raw.Bytes())
}
