package registry_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/storage"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	db, err := storage.OpenMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return registry.New(db)
}

func TestRegistryCRUD(t *testing.T) {
	reg := newRegistry(t)
	addr := common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94")

	_, err := reg.Get(addr)
	require.ErrorIs(t, err, registry.ErrNotFound)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, reg.Put(&registry.Record{
		Address:        addr,
		Kind:           wallet.KeyKindHD,
		DerivationPath: "m/44'/60'/0'/0/0",
		CreatedAt:      created,
	}))

	ok, err := reg.Has(addr)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := reg.Get(addr)
	require.NoError(t, err)

	acc := rec.Account()
	assert.Equal(t, addr, acc.Address)
	assert.Equal(t, wallet.KeyKindHD, acc.Kind)
	assert.Equal(t, "m/44'/60'/0'/0/0", acc.DerivationPath)
	assert.True(t, created.Equal(acc.CreatedAt))

	require.NoError(t, reg.Delete(addr))
	ok, err = reg.Has(addr)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, reg.Delete(addr))
}

func TestRegistryListOrdered(t *testing.T) {
	reg := newRegistry(t)

	b := common.HexToAddress("0xbb00000000000000000000000000000000000000")
	a := common.HexToAddress("0xaa00000000000000000000000000000000000000")
	require.NoError(t, reg.Put(&registry.Record{Address: b, Kind: wallet.KeyKindWatchOnly}))
	require.NoError(t, reg.Put(&registry.Record{Address: a, Kind: wallet.KeyKindPrivateKey}))

	records, err := reg.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, a, records[0].Address)
	assert.Equal(t, b, records[1].Address)
}

func TestRegistryRejectsUnknownKind(t *testing.T) {
	reg := newRegistry(t)
	err := reg.Put(&registry.Record{Address: common.Address{1}, Kind: "ledger"})
	assert.Error(t, err)
}

func TestRegistryStagedWrites(t *testing.T) {
	reg := newRegistry(t)
	addr := common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")

	batch := new(storage.Batch)
	require.NoError(t, reg.StagePut(batch, &registry.Record{Address: addr, Kind: wallet.KeyKindPrivateKey}))
	assert.Error(t, reg.StagePut(batch, &registry.Record{Address: addr, Kind: "paper"}))

	ok, err := reg.Has(addr)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reg.DB().Write(batch))

	rec, err := reg.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, wallet.KeyKindPrivateKey, rec.Kind)

	batch = new(storage.Batch)
	reg.StageDelete(batch, addr)
	require.NoError(t, reg.DB().Write(batch))

	_, err = reg.Get(addr)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
