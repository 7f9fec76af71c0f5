package address

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultDerivationPath is the first account on the Ethereum BIP-44 branch.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// Service provides address derivation functionality
type Service interface {
	// DeriveAddress derives an EVM address from seed and BIP44 path
	DeriveAddress(seed []byte, path string) (common.Address, error)

	// DeriveKey derives the secp256k1 key at path
	// WARNING: Caller must zero the key after use (see crypto/ecdsa D)
	DeriveKey(seed []byte, path string) (*ecdsa.PrivateKey, error)

	// GetBIP44Path gets BIP44 path (fixed format for EVM chains)
	GetBIP44Path(addressIndex int) string
}
