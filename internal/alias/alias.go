// Package alias implements the tagged Alias identifier described in the
// design notes: derived aliases (spending keys, payment addresses,
// established accounts, consensus keys) carry their relationship to a base
// alias as data instead of as a string suffix, so no component ever parses
// an alias name to recover its kind.
package alias

import "fmt"

// Kind enumerates the ways an Alias can relate to a base alias.
type Kind uint8

const (
	// Base is a plain, non-derived alias (an implicit account, the faucet,
	// a validator address, ...).
	Base Kind = iota
	// SpendingKey is the MASP spending key derived from a base alias.
	SpendingKey
	// PaymentAddress is the MASP payment address derived from a base alias.
	PaymentAddress
	// Established marks the established-account alias derived when an
	// implicit account is promoted via InitAccount.
	Established
	// ConsensusKey is the consensus key derived when a base alias becomes a
	// validator.
	ConsensusKey
)

func (k Kind) String() string {
	switch k {
	case Base:
		return "base"
	case SpendingKey:
		return "spending-key"
	case PaymentAddress:
		return "payment-address"
	case Established:
		return "established"
	case ConsensusKey:
		return "consensus-key"
	default:
		return "unknown"
	}
}

// Alias is an opaque, comparable identifier for a wallet entity. It is safe
// to use as a map key and is what State, Task, and Check operate over.
type Alias struct {
	name string
	kind Kind
	base string
}

// Faucet is the singleton alias holding unlimited funds used to seed other
// accounts.
var Faucet = Alias{name: "faucet", kind: Base, base: "faucet"}

// NativeDenom is the alias used to key native-token balances.
const NativeDenom = "nam"

// New constructs a plain, non-derived alias.
func New(name string) Alias {
	return Alias{name: name, kind: Base, base: name}
}

// Derive constructs an alias related to base by kind, named distinctly so it
// never collides with the base alias or with another derivation of it.
func Derive(base Alias, kind Kind) Alias {
	return Alias{name: fmt.Sprintf("%s::%s", base.name, kind), kind: kind, base: base.name}
}

// Name returns the opaque identifier string. Only persistence (JSON
// marshaling) and logging may call this; no component may parse it back
// into a Kind.
func (a Alias) Name() string { return a.name }

// Kind reports how this alias relates to its base.
func (a Alias) Kind() Kind { return a.kind }

// Base returns the root alias this one was derived from (itself, for a
// Base-kind alias).
func (a Alias) Base() Alias { return Alias{name: a.base, kind: Base, base: a.base} }

// IsFaucet reports whether this alias is the well-known faucet singleton.
func (a Alias) IsFaucet() bool { return a == Faucet }

// IsZero reports whether this is the zero value (no alias set).
func (a Alias) IsZero() bool { return a.name == "" }

func (a Alias) String() string { return a.name }

// MarshalText implements encoding.TextMarshaler so Alias can be a map key in
// JSON-serialized state (encoding/json requires TextMarshaler for non-string
// map-key types). Only the name is written, both for map keys and for
// Alias-typed fields of the containing records; Kind and Base are not.
func (a Alias) MarshalText() ([]byte, error) { return []byte(a.name), nil }

// UnmarshalText restores an alias from its persisted name. Every alias,
// derived ones included, is reconstructed with Kind=Base and Base equal to
// its own name, since the persisted form carries only the name; a derived
// alias's original Kind/Base relationship is not restored.
func (a *Alias) UnmarshalText(data []byte) error {
	*a = Alias{name: string(data), kind: Base, base: string(data)}
	return nil
}
