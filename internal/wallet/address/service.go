package address

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

type service struct{}

// NewService creates a new AddressService
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService() Service {
	return &service{}
}

// DeriveAddress derives an EVM address from seed and BIP44 path
func (s *service) DeriveAddress(seed []byte, path string) (common.Address, error) {
	key, err := s.DeriveKey(seed, path)
	if err != nil {
		return common.Address{}, err
	}
	defer ZeroKey(key)

	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// DeriveKey derives the secp256k1 private key at path
func (s *service) DeriveKey(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	raw, err := DerivePrivateKey(seed, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range raw {
			raw[i] = 0
		}
	}()

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	return key, nil
}

// GetBIP44Path gets BIP44 path (fixed format for EVM chains)
// Format: m/44'/60'/0'/0/{index}
func (s *service) GetBIP44Path(addressIndex int) string {
	return fmt.Sprintf("m/44'/60'/0'/0/%d", addressIndex)
}

// FromPrivateKey returns the address owned by key.
func FromPrivateKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// ZeroKey clears the private scalar of key.
func ZeroKey(key *ecdsa.PrivateKey) {
	if key == nil || key.D == nil {
		return
	}
	b := key.D.Bits()
	for i := range b {
		b[i] = 0
	}
	key.D.SetInt64(0)
}
