// Package amount converts between human decimal amounts and base units.
package amount

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of the native currency.
const EtherDecimals int32 = 18

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrTooManyDecimals = errors.New("amount has more decimals than the asset supports")
)

// ParseUnits parses a decimal string like "1.5" into base units using the
// given number of decimals. Fractions finer than one base unit are rejected.
func ParseUnits(value string, decimals int32) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrInvalidAmount
	}
	if decimals < 0 {
		return nil, errors.Errorf("invalid decimals %d", decimals)
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", value)
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, errors.Wrapf(ErrTooManyDecimals, "%q with %d decimals", value, decimals)
	}

	return shifted.BigInt(), nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -decimals).String()
}

// ParseEther is ParseUnits with EtherDecimals.
func ParseEther(value string) (*big.Int, error) {
	return ParseUnits(value, EtherDecimals)
}

func FormatEther(value *big.Int) string {
	return FormatUnits(value, EtherDecimals)
}

// ParseGwei parses a gas price given in gwei.
func ParseGwei(value string) (*big.Int, error) {
	return ParseUnits(value, 9)
}

func FormatGwei(value *big.Int) string {
	return FormatUnits(value, 9)
}
