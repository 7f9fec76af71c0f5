package keystore

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ErrInvalidKeystore is returned for input that is not a v3 keystore document.
var ErrInvalidKeystore = errors.New("invalid keystore JSON")

// Header is the part of a keystore document readable without the password.
type Header struct {
	Version int
	ID      string
	// Address is the plaintext address field; HasAddress is false when the document omits it.
	Address    common.Address
	HasAddress bool
	Cipher     string
	KDF        string
}

// ParseHeader validates the overall shape of a keystore document and returns its
// plaintext fields. It never needs the password.
func ParseHeader(data []byte) (*Header, error) {
	var keystoreJSON KeystoreJSON
	if err := json.Unmarshal(data, &keystoreJSON); err != nil {
		return nil, errors.Wrap(ErrInvalidKeystore, err.Error())
	}

	if keystoreJSON.Version != keystoreVersion {
		return nil, errors.Wrapf(ErrInvalidKeystore, "unsupported version %d", keystoreJSON.Version)
	}

	if keystoreJSON.Crypto.Ciphertext == "" || keystoreJSON.Crypto.MAC == "" || keystoreJSON.Crypto.KDF == "" {
		return nil, errors.Wrap(ErrInvalidKeystore, "missing crypto section")
	}

	header := &Header{
		Version: keystoreJSON.Version,
		ID:      keystoreJSON.ID,
		Cipher:  keystoreJSON.Crypto.Cipher,
		KDF:     keystoreJSON.Crypto.KDF,
	}

	if keystoreJSON.Address != "" {
		if !common.IsHexAddress(keystoreJSON.Address) {
			return nil, errors.Wrapf(ErrInvalidKeystore, "malformed address %q", keystoreJSON.Address)
		}
		header.Address = common.HexToAddress(keystoreJSON.Address)
		header.HasAddress = true
	}

	return header, nil
}

// Marshal serializes a sealed secret.
func Marshal(keystoreJSON *KeystoreJSON) ([]byte, error) {
	data, err := json.Marshal(keystoreJSON)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}
	return data, nil
}

// Unmarshal parses a sealed secret.
func Unmarshal(data []byte) (*KeystoreJSON, error) {
	var keystoreJSON KeystoreJSON
	if err := json.Unmarshal(data, &keystoreJSON); err != nil {
		return nil, errors.Wrap(ErrInvalidKeystore, err.Error())
	}
	return &keystoreJSON, nil
}
