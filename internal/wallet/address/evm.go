package address

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

const (
	hardenedOffset  = 0x80000000
	privateKeyBytes = 32
)

// ErrInvalidPath is returned for derivation paths that do not parse.
var ErrInvalidPath = errors.New("invalid derivation path")

// DerivePrivateKey derives a private key from seed and BIP44 path
// WARNING: Caller must clear the private key after use
func DerivePrivateKey(seed []byte, path string) ([]byte, error) {
	// Create master key from seed
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	// Derive key from path
	derivedKey, err := deriveKeyFromPath(masterKey, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key from path")
	}

	// bip32 may hand back fewer than 32 bytes when the scalar has leading zeros
	return common.LeftPadBytes(derivedKey.Key, privateKeyBytes), nil
}

// deriveKeyFromPath derives a key from BIP44 path
// Path format: m/44'/60'/0'/0/{index}
func deriveKeyFromPath(masterKey *bip32.Key, path string) (*bip32.Key, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key, nil
}

// ParsePath parses a BIP44 path string into indices
// Example: "m/44'/60'/0'/0/0" -> [2147483692, 2147483708, 2147483648, 0, 0]
// Hardened segments may be written with ' or h.
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path != "m" && !strings.HasPrefix(path, "m/") {
		return nil, errors.Wrapf(ErrInvalidPath, "%q must start with m/", path)
	}

	rest := strings.TrimPrefix(strings.TrimPrefix(path, "m"), "/")
	if rest == "" {
		return []uint32{}, nil
	}

	parts := strings.Split(rest, "/")
	indices := make([]uint32, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") {
			hardened = true
			part = part[:len(part)-1]
		}

		value, err := strconv.ParseUint(part, 10, 32)
		if err != nil || value >= hardenedOffset {
			return nil, errors.Wrapf(ErrInvalidPath, "invalid path segment %q", part)
		}

		index := uint32(value)
		if hardened {
			index += hardenedOffset
		}

		indices = append(indices, index)
	}

	return indices, nil
}
