package address_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/wallet/address"
	"github/chapool/go-keyvault/internal/wallet/seed"
)

//nolint:dupword // Test mnemonic with repeated words
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveAddressKnownVector(t *testing.T) {
	s, err := seed.FromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	svc := address.NewService()

	addr, err := svc.DeriveAddress(s, address.DefaultDerivationPath)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94"), addr)

	key, err := svc.DeriveKey(s, svc.GetBIP44Path(0))
	require.NoError(t, err)
	assert.Equal(t, addr, address.FromPrivateKey(key))

	other, err := svc.DeriveAddress(s, svc.GetBIP44Path(1))
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}

func TestParsePath(t *testing.T) {
	indices, err := address.ParsePath("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2147483692, 2147483708, 2147483648, 0, 0}, indices)

	indices, err = address.ParsePath("m/44h/60h/1")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2147483692, 2147483708, 1}, indices)

	indices, err = address.ParsePath("m")
	require.NoError(t, err)
	assert.Empty(t, indices)

	for _, bad := range []string{"", "44'/60'", "m/x", "m/44'//0", "m/2147483648"} {
		_, err := address.ParsePath(bad)
		assert.ErrorIs(t, err, address.ErrInvalidPath, bad)
	}
}

func TestZeroKey(t *testing.T) {
	s, err := seed.FromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	key, err := address.NewService().DeriveKey(s, address.DefaultDerivationPath)
	require.NoError(t, err)

	address.ZeroKey(key)
	assert.Equal(t, 0, key.D.Sign())
}
