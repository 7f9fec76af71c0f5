package wallet

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// KeyKind describes what kind of key material backs an account.
type KeyKind string

const (
	// KeyKindPrivateKey is a single secp256k1 key, either generated or imported raw.
	KeyKindPrivateKey KeyKind = "private-key"
	// KeyKindHD is a key derived from a BIP-39 mnemonic along a derivation path.
	KeyKindHD KeyKind = "hd"
	// KeyKindWatchOnly is an address without any private key.
	KeyKindWatchOnly KeyKind = "watch-only"
)

// CanSign reports whether accounts of this kind hold a private key.
func (k KeyKind) CanSign() bool {
	return k == KeyKindPrivateKey || k == KeyKindHD
}

// Valid reports whether k is one of the known kinds.
func (k KeyKind) Valid() bool {
	switch k {
	case KeyKindPrivateKey, KeyKindHD, KeyKindWatchOnly:
		return true
	default:
		return false
	}
}

// Account is a chain address plus the kind of key material the vault holds for it.
// Other components reference accounts by address only.
type Account struct {
	Address        common.Address
	Kind           KeyKind
	DerivationPath string
	CreatedAt      time.Time
}

// CredentialKey returns the secure-storage key under which the account password lives.
func (a Account) CredentialKey() string {
	return CredentialKey(a.Address)
}

// CredentialKey returns the lower-cased 0x-prefixed hex form of addr.
func CredentialKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
