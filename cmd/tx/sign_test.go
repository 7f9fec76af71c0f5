package tx

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/config"
	"github/chapool/go-keyvault/internal/test"
	"github/chapool/go-keyvault/internal/util/command"
	"github/chapool/go-keyvault/internal/wallet/signer"
	"github/chapool/go-keyvault/internal/wallet/transfer"
	"github/chapool/go-keyvault/internal/wallet/vault"
)

const (
	recipient = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	token     = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
)

func TestBuildIntentNative(t *testing.T) {
	intent, err := buildIntent(signOptions{to: recipient, value: "1.5", decimals: 18, nonce: -1})
	require.NoError(t, err)

	assert.Equal(t, transfer.KindNative, intent.Kind())
	assert.Equal(t, "1500000000000000000", intent.Value().String())
	assert.Nil(t, intent.GasPrice())

	_, hasNonce := intent.Nonce()
	assert.False(t, hasNonce)
	_, hasLimit := intent.GasLimit()
	assert.False(t, hasLimit)
}

func TestBuildIntentToken(t *testing.T) {
	intent, err := buildIntent(signOptions{
		to:       recipient,
		token:    token,
		value:    "2.5",
		decimals: 6,
		gasPrice: "3",
		gasLimit: 70000,
		nonce:    7,
	})
	require.NoError(t, err)

	assert.Equal(t, transfer.KindToken, intent.Kind())
	assert.Equal(t, "2500000", intent.Value().String())
	assert.Equal(t, token, intent.Contract().Hex())
	assert.Equal(t, "3000000000", intent.GasPrice().String())

	limit, ok := intent.GasLimit()
	assert.True(t, ok)
	assert.Equal(t, uint64(70000), limit)

	nonce, ok := intent.Nonce()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), nonce)
}

func TestBuildIntentContractCall(t *testing.T) {
	intent, err := buildIntent(signOptions{to: recipient, value: "0", data: "0xdeadbeef", decimals: 18, nonce: -1})
	require.NoError(t, err)

	assert.Equal(t, transfer.KindContractCall, intent.Kind())
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, intent.Data())
}

func TestBuildIntentRejects(t *testing.T) {
	tests := []signOptions{
		{to: "nope", value: "1", nonce: -1},
		{to: recipient, value: "-1", nonce: -1},
		{to: recipient, value: "1", token: "nope", nonce: -1},
		{to: recipient, value: "1", data: "zz", nonce: -1},
		{to: recipient, value: "1", gasPrice: "fast", nonce: -1},
		{to: recipient, value: "0.0000000000000000001", nonce: -1},
	}

	for _, opts := range tests {
		_, err := buildIntent(opts)
		assert.Error(t, err, "%+v", opts)
	}
}

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func setupSigner(t *testing.T) *test.FakeNode {
	t.Helper()

	node := test.NewFakeNode(t)
	node.Set(func(n *test.FakeNode) {
		n.Balance = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	})

	t.Setenv("KEYVAULT_HOME", t.TempDir())
	t.Setenv("KEYVAULT_RPC_URL", node.URL(t))
	t.Setenv("KEYVAULT_LIGHT_SCRYPT", "true")
	t.Setenv("KEYVAULT_LOG_PRETTY", "false")

	err := command.WithVault(context.Background(), config.DefaultConfigFromEnv(), func(ctx context.Context, rt *command.Runtime) error {
		_, err := rt.Vault.ImportAccount(ctx, vault.PrivateKeyImport{HexKey: testKey}, "correct horse battery")
		return err
	})
	require.NoError(t, err)

	return node
}

func runSign(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newSign()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func TestSignNativeTransfer(t *testing.T) {
	setupSigner(t)

	out, err := runSign(t, "--from", recipient, "--to", token, "--value", "0.1")
	require.NoError(t, err)

	raw, err := hexutil.Decode(out)
	require.NoError(t, err)

	tx, err := signer.Decode(raw)
	require.NoError(t, err)

	sender, err := signer.Sender(tx)
	require.NoError(t, err)
	assert.Equal(t, recipient, sender)

	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(60000), tx.Gas())
	assert.Equal(t, big.NewInt(30_000_000_000), tx.GasPrice())
	assert.Equal(t, big.NewInt(5), tx.ChainId())
	assert.Equal(t, big.NewInt(1e17), tx.Value())
	assert.Equal(t, token, tx.To().Hex())
}

func TestSignTokenTransfer(t *testing.T) {
	setupSigner(t)

	out, err := runSign(t, "--from", recipient, "--to", token, "--token", token, "--value", "0.00000000000000004", "--nonce", "3")
	require.NoError(t, err)

	raw, err := hexutil.Decode(out)
	require.NoError(t, err)
	tx, err := signer.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, uint64(144000), tx.Gas())
	assert.Equal(t, 0, tx.Value().Sign())
	assert.Equal(t, "0xa9059cbb", hexutil.Encode(tx.Data()[:4]))
}

func TestSignSendMaxDeductsFee(t *testing.T) {
	node := setupSigner(t)
	oneEther := big.NewInt(1e18)
	node.Set(func(n *test.FakeNode) { n.Balance = oneEther })

	out, err := runSign(t, "--from", recipient, "--to", token, "--value", "1")
	require.NoError(t, err)

	raw, err := hexutil.Decode(out)
	require.NoError(t, err)
	tx, err := signer.Decode(raw)
	require.NoError(t, err)

	fee := new(big.Int).Mul(tx.GasPrice(), new(big.Int).SetUint64(tx.Gas()))
	assert.Equal(t, new(big.Int).Sub(oneEther, fee), tx.Value())
	assert.Equal(t, big.NewInt(1e18-30_000_000_000*60000), tx.Value())
}

func TestSignRejectsInsufficientBalance(t *testing.T) {
	node := setupSigner(t)
	node.Set(func(n *test.FakeNode) { n.Balance = big.NewInt(1) })

	_, err := runSign(t, "--from", recipient, "--to", token, "--value", "0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient ethers")
}

func TestSignUnknownAccount(t *testing.T) {
	setupSigner(t)

	_, err := runSign(t, "--from", token, "--to", recipient, "--value", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Account not found")
}
