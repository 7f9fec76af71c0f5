package wallet_test

import (
	"io"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github/chapool/go-keyvault/internal/wallet"
)

func TestFailMatchesKindAndCause(t *testing.T) {
	err := wallet.Fail(wallet.ErrSigningFailed, io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, wallet.ErrSigningFailed))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, wallet.ErrExportFailed))
	assert.Equal(t, "signing_failed", wallet.ErrorCode(err))
}

func TestFailWithoutCause(t *testing.T) {
	assert.Equal(t, wallet.ErrUnknownAccount, wallet.Fail(wallet.ErrUnknownAccount, nil))
}

func TestErrorCodeSurvivesWrap(t *testing.T) {
	err := errors.Wrap(wallet.ErrWrongPassword, "failed to unlock")
	assert.Equal(t, "wrong_password", wallet.ErrorCode(err))
	assert.Empty(t, wallet.ErrorCode(io.EOF))
}

func TestRetryable(t *testing.T) {
	assert.True(t, wallet.Retryable(wallet.ErrWrongPassword))
	assert.True(t, wallet.Retryable(wallet.Fail(wallet.ErrDuplicateAccount, io.EOF)))
	assert.False(t, wallet.Retryable(wallet.ErrDeletionFailed))
	assert.False(t, wallet.Retryable(nil))
}

func TestKeyKind(t *testing.T) {
	assert.True(t, wallet.KeyKindPrivateKey.CanSign())
	assert.True(t, wallet.KeyKindHD.CanSign())
	assert.False(t, wallet.KeyKindWatchOnly.CanSign())
	assert.False(t, wallet.KeyKind("ledger").Valid())
}

func TestCredentialKeyIsLowerCase(t *testing.T) {
	addr := common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
	acc := wallet.Account{Address: addr, Kind: wallet.KeyKindPrivateKey}

	assert.Equal(t, "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23", acc.CredentialKey())
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", acc.ToSummary().Address)
}

func TestErrorCodesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range wallet.Errors() {
		assert.NotEmpty(t, e.Code)
		assert.False(t, seen[e.Code], e.Code)
		seen[e.Code] = true
	}
}
