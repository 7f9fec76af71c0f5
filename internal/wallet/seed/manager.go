package seed

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for phrases that fail the BIP-39 word list or checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic generates a fresh BIP-39 mnemonic with the given entropy size.
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	defer Wipe(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}

	return mnemonic, nil
}

// Normalize collapses whitespace and lower-cases the phrase the way users tend to paste it.
func Normalize(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// Validate reports whether the phrase is a valid BIP-39 mnemonic.
func Validate(mnemonic string) bool {
	return bip39.IsMnemonicValid(Normalize(mnemonic))
}

// FromMnemonic converts mnemonic to seed using PBKDF2 (BIP39 standard)
// seed = PBKDF2(mnemonic, "mnemonic" + passphrase, 2048, 64, SHA512)
// WARNING: Caller must Wipe the seed after use
func FromMnemonic(mnemonic string, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(Normalize(mnemonic), passphrase)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidMnemonic, err.Error())
	}

	return seed, nil
}

// Wipe clears secret bytes from memory
func Wipe(secret []byte) {
	for i := range secret {
		secret[i] = 0
	}
}
