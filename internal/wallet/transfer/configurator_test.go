package transfer_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/transfer"
)

var (
	fromAddr     = common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
	toAddr       = common.HexToAddress("0x3535353535353535353535353535353535353535")
	contractAddr = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
)

type fakeState struct {
	mu        sync.Mutex
	suggested *big.Int
	estimate  string
	estErr    error
	payload   string
	encErr    error
	estimates int
	lastData  []byte
}

func (f *fakeState) SuggestedGasPrice() *big.Int {
	return f.suggested
}

func (f *fakeState) EstimateGas(_ context.Context, _ common.Address, _ *common.Address, _ *big.Int, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.estimates++
	f.lastData = data
	return f.estimate, f.estErr
}

func (f *fakeState) EncodeERC20Transfer(_ context.Context, _, _ common.Address, _ *big.Int) (string, error) {
	return f.payload, f.encErr
}

type fakeNonces map[common.Address]uint64

func (f fakeNonces) NextNonce(addr common.Address) (uint64, bool) {
	n, ok := f[addr]
	return n, ok
}

func smallLimits() transfer.Limits {
	limits := transfer.DefaultLimits()
	limits.MinGasPrice = big.NewInt(1)
	limits.MaxGasPrice = big.NewInt(100)
	limits.DefaultGasPrice = big.NewInt(24)
	return limits
}

func load(t *testing.T, c *transfer.Configurator) error {
	t.Helper()

	done := make(chan error, 1)
	c.Load(context.Background(), func(err error) { done <- err })

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
		return nil
	}
}

func TestDefaultGasPriceClamp(t *testing.T) {
	tests := []struct {
		name      string
		suggested *big.Int
		want      string
	}{
		{"above max", big.NewInt(500), "100"},
		{"below min", big.NewInt(0), "1"},
		{"in range", big.NewInt(42), "42"},
		{"unknown", nil, "24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &fakeState{suggested: tt.suggested}
			c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), state, nil,
				transfer.WithLimits(smallLimits()))

			assert.Equal(t, tt.want, c.Configuration().GasPrice.String())
		})
	}
}

func TestExplicitGasPrice(t *testing.T) {
	state := &fakeState{suggested: big.NewInt(50)}

	high := transfer.NativeTransfer(toAddr, big.NewInt(1)).WithGasPrice(big.NewInt(500))
	c := transfer.New(fromAddr, high, state, nil, transfer.WithLimits(smallLimits()))
	assert.Equal(t, "100", c.Configuration().GasPrice.String())

	low := transfer.NativeTransfer(toAddr, big.NewInt(1)).WithGasPrice(big.NewInt(0))
	c = transfer.New(fromAddr, low, state, nil, transfer.WithLimits(smallLimits()))
	assert.Equal(t, "1", c.Configuration().GasPrice.String())
}

func TestExplicitGasPriceAndLimitSignInitialConfiguration(t *testing.T) {
	state := &fakeState{suggested: big.NewInt(50), estimate: "0x5208"}
	intent := transfer.NativeTransfer(toAddr, big.NewInt(1)).
		WithGasPrice(big.NewInt(500)).
		WithGasLimit(21000)
	c := transfer.New(fromAddr, intent, state, nil, transfer.WithLimits(smallLimits()))

	require.NoError(t, load(t, c))

	cfg := c.Configuration()
	assert.Equal(t, "100", cfg.GasPrice.String())
	assert.Equal(t, uint64(21000), cfg.GasLimit)
}

func TestDefaultGasLimitByKind(t *testing.T) {
	limits := transfer.DefaultLimits()

	native := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), nil, nil)
	token := transfer.New(fromAddr, transfer.TokenTransfer(contractAddr, toAddr, big.NewInt(1)), nil, nil)
	call := transfer.New(fromAddr, transfer.ContractCall(toAddr, big.NewInt(0), []byte{0x01}), nil, nil)

	assert.Equal(t, limits.DefaultGasLimit, native.Configuration().GasLimit)
	assert.Equal(t, limits.TokenGasLimit, token.Configuration().GasLimit)
	assert.Equal(t, limits.ContractGasLimit, call.Configuration().GasLimit)
	assert.Equal(t, []byte{0x01}, call.Configuration().Data)
	assert.Empty(t, native.Configuration().Data)

	explicit := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)).WithGasLimit(30000), nil, nil)
	assert.Equal(t, uint64(30000), explicit.Configuration().GasLimit)
}

func TestDefaultNonce(t *testing.T) {
	c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), nil, nil)
	assert.Equal(t, transfer.UnknownNonce, c.Configuration().Nonce)
	assert.False(t, c.Configuration().NonceKnown())

	c = transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), nil, fakeNonces{fromAddr: 4})
	assert.Equal(t, int64(4), c.Configuration().Nonce)

	c = transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)).WithNonce(9), nil, fakeNonces{fromAddr: 4})
	assert.Equal(t, int64(9), c.Configuration().Nonce)
}

func TestLoadNativeInflatesEstimate(t *testing.T) {
	tests := []struct {
		estimate string
		want     uint64
	}{
		{"0x5208", 21000},
		{"0xc350", 60000},
		{"c350", 60000},
	}

	for _, tt := range tests {
		t.Run(tt.estimate, func(t *testing.T) {
			state := &fakeState{estimate: tt.estimate}
			c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), state, nil)

			require.NoError(t, load(t, c))
			assert.Equal(t, tt.want, c.Configuration().GasLimit)
		})
	}
}

func TestLoadEstimationFailureKeepsDefault(t *testing.T) {
	for _, state := range []*fakeState{
		{estErr: errors.New("execution reverted")},
		{estimate: "0xzz"},
		{estimate: "0x0"},
	} {
		c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), state, nil)

		require.NoError(t, load(t, c))
		assert.Equal(t, transfer.DefaultLimits().DefaultGasLimit, c.Configuration().GasLimit)
	}
}

func TestLoadSkipsEstimateForExplicitLimit(t *testing.T) {
	state := &fakeState{estimate: "0xc350"}
	intent := transfer.ContractCall(toAddr, big.NewInt(0), []byte{0xaa}).WithGasLimit(70000)
	c := transfer.New(fromAddr, intent, state, nil)

	require.NoError(t, load(t, c))
	assert.Equal(t, uint64(70000), c.Configuration().GasLimit)
	assert.Equal(t, 0, state.estimates)
}

func TestLoadContractCallEstimatesWithData(t *testing.T) {
	state := &fakeState{estimate: "0x186a0"}
	c := transfer.New(fromAddr, transfer.ContractCall(toAddr, big.NewInt(0), []byte{0xaa, 0xbb}), state, nil)

	require.NoError(t, load(t, c))
	assert.Equal(t, uint64(120000), c.Configuration().GasLimit)
	assert.Equal(t, []byte{0xaa, 0xbb}, state.lastData)
}

func TestLoadTokenEncodesPayload(t *testing.T) {
	payload := []byte{0xa9, 0x05, 0x9c, 0xbb, 0x01}
	state := &fakeState{payload: hexutil.Encode(payload), suggested: big.NewInt(2_000_000_000)}
	c := transfer.New(fromAddr, transfer.TokenTransfer(contractAddr, toAddr, big.NewInt(10)), state, fakeNonces{fromAddr: 1})

	require.NoError(t, load(t, c))

	cfg := c.Configuration()
	assert.Equal(t, payload, cfg.Data)
	assert.Equal(t, transfer.DefaultLimits().TokenGasLimit, cfg.GasLimit)
	assert.Equal(t, "2000000000", cfg.GasPrice.String())
	assert.Equal(t, int64(1), cfg.Nonce)
	assert.Equal(t, 0, state.estimates)
}

func TestLoadTokenEncodingFailureIsFatal(t *testing.T) {
	state := &fakeState{encErr: errors.New("rpc down")}
	c := transfer.New(fromAddr, transfer.TokenTransfer(contractAddr, toAddr, big.NewInt(10)), state, nil)
	before := c.Configuration()

	err := load(t, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, wallet.ErrPayloadEncodingFailed)
	assert.Equal(t, before, c.Configuration())

	c = transfer.New(fromAddr, transfer.TokenTransfer(contractAddr, toAddr, big.NewInt(10)), nil, nil)
	assert.ErrorIs(t, load(t, c), wallet.ErrPayloadEncodingFailed)
}

func TestUpdateReplacesConfiguration(t *testing.T) {
	c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1)), nil, nil)

	override := transfer.Configuration{GasPrice: big.NewInt(7), GasLimit: 25000, Data: []byte{}, Nonce: 3}
	c.Update(override)

	// mutating the caller's copy does not leak into the configurator
	override.GasPrice.SetInt64(99)

	cfg := c.Configuration()
	assert.Equal(t, "7", cfg.GasPrice.String())
	assert.Equal(t, uint64(25000), cfg.GasLimit)
	assert.Equal(t, int64(3), cfg.Nonce)
}

func TestValueToSend(t *testing.T) {
	c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1000)), nil, nil)
	c.Update(transfer.Configuration{GasPrice: big.NewInt(1), GasLimit: 21, Nonce: 0})

	value, err := c.ValueToSend(big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "979", value.String())

	value, err = c.ValueToSend(big.NewInt(5000))
	require.NoError(t, err)
	assert.Equal(t, "1000", value.String())

	value, err = c.ValueToSend(nil)
	require.NoError(t, err)
	assert.Equal(t, "1000", value.String())

	c.Update(transfer.Configuration{GasPrice: big.NewInt(1), GasLimit: 1001, Nonce: 0})
	_, err = c.ValueToSend(big.NewInt(1000))
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
}

func TestTransaction(t *testing.T) {
	c := transfer.New(fromAddr, transfer.NativeTransfer(toAddr, big.NewInt(1000)), nil, nil)
	c.Update(transfer.Configuration{GasPrice: big.NewInt(1), GasLimit: 21, Nonce: 5})

	tx, err := c.Transaction(big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, toAddr, *tx.To)
	assert.Equal(t, "979", tx.Value.String())

	req, err := tx.Request()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), req.Nonce)
	assert.Equal(t, uint64(21), req.GasLimit)

	token := transfer.New(fromAddr, transfer.TokenTransfer(contractAddr, toAddr, big.NewInt(10)), nil, nil)
	tx, err = token.Transaction(big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, contractAddr, *tx.To)
	assert.Equal(t, 0, tx.Value.Sign())

	_, err = tx.Request()
	assert.Error(t, err, "nonce is unknown")
}
