package amount_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/wallet/amount"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals int32
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"1.5", 18, "1500000000000000000"},
		{"0.000000000000000001", 18, "1"},
		{"  42 ", 0, "42"},
		{"2.5", 6, "2500000"},
		{"0", 18, "0"},
		{"1.000", 2, "100"},
	}

	for _, tt := range tests {
		got, err := amount.ParseUnits(tt.in, tt.decimals)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}
}

func TestParseUnitsRejects(t *testing.T) {
	_, err := amount.ParseUnits("", 18)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)

	_, err = amount.ParseUnits("abc", 18)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)

	_, err = amount.ParseUnits("-1", 18)
	assert.ErrorIs(t, err, amount.ErrNegativeAmount)

	_, err = amount.ParseUnits("0.001", 2)
	assert.ErrorIs(t, err, amount.ErrTooManyDecimals)

	_, err = amount.ParseUnits("1", -1)
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", amount.FormatEther(big.NewInt(1500000000000000000)))
	assert.Equal(t, "0.000000000000000001", amount.FormatEther(big.NewInt(1)))
	assert.Equal(t, "0", amount.FormatEther(nil))
	assert.Equal(t, "24", amount.FormatGwei(big.NewInt(24000000000)))
	assert.Equal(t, "2.5", amount.FormatUnits(big.NewInt(2500000), 6))
}

func TestGweiRoundTrip(t *testing.T) {
	wei, err := amount.ParseGwei("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1500000000", wei.String())
	assert.Equal(t, "1.5", amount.FormatGwei(wei))
}
