package keystore_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/wallet/keystore"
)

//nolint:dupword // Test mnemonic with repeated words
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func lightParams() *keystore.ScryptParams {
	return keystore.NewScryptParams(keystore.LightScryptN, keystore.LightScryptP)
}

func TestSealOpen(t *testing.T) {
	sealed, err := keystore.Seal([]byte(testMnemonic), "secure-password", lightParams())
	require.NoError(t, err)

	assert.Equal(t, 3, sealed.Version)
	assert.Equal(t, "aes-128-ctr", sealed.Crypto.Cipher)
	assert.Equal(t, "scrypt", sealed.Crypto.KDF)
	assert.NotEmpty(t, sealed.ID)

	plaintext, err := keystore.Open(sealed, "secure-password")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, string(plaintext))

	_, err = keystore.Open(sealed, "wrong-password")
	assert.ErrorIs(t, err, keystore.ErrMACMismatch)
}

func TestSealMarshalRoundTrip(t *testing.T) {
	sealed, err := keystore.Seal([]byte("secret"), "pw", lightParams())
	require.NoError(t, err)

	data, err := keystore.Marshal(sealed)
	require.NoError(t, err)

	loaded, err := keystore.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, sealed.ID, loaded.ID)

	plaintext, err := keystore.Open(loaded, "pw")
	require.NoError(t, err)
	assert.Equal(t, "secret", string(plaintext))
}

func TestParseHeader(t *testing.T) {
	sealed, err := keystore.Seal([]byte("secret"), "pw", lightParams())
	require.NoError(t, err)

	data, err := keystore.Marshal(sealed)
	require.NoError(t, err)

	header, err := keystore.ParseHeader(data)
	require.NoError(t, err)
	assert.False(t, header.HasAddress)
	assert.Equal(t, 3, header.Version)

	sealed.Address = "2c7536e3605d9c16a7a3d7b1898e529396a65c23"
	data, err = keystore.Marshal(sealed)
	require.NoError(t, err)

	header, err = keystore.ParseHeader(data)
	require.NoError(t, err)
	assert.True(t, header.HasAddress)
	assert.Equal(t, common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"), header.Address)
}

func TestParseHeaderRejectsGarbage(t *testing.T) {
	tests := map[string]string{
		"not json":      "{{{",
		"wrong version": `{"version":1,"crypto":{"ciphertext":"00","mac":"00","kdf":"scrypt"}}`,
		"no crypto":     `{"version":3}`,
		"bad address":   `{"version":3,"address":"zz","crypto":{"ciphertext":"00","mac":"00","kdf":"scrypt"}}`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := keystore.ParseHeader([]byte(input))
			assert.True(t, errors.Is(err, keystore.ErrInvalidKeystore))
		})
	}
}
