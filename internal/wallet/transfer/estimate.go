package transfer

import (
	"math"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ParseGasEstimate parses a node's hex gas estimate, with or without 0x prefix.
func ParseGasEstimate(raw string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
	if digits == "" {
		return 0, errors.Errorf("empty gas estimate %q", raw)
	}

	limit, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return 0, errors.Errorf("malformed gas estimate %q", raw)
	}
	if limit.Sign() <= 0 || !limit.IsUint64() {
		return 0, errors.Errorf("gas estimate %q out of range", raw)
	}

	return limit.Uint64(), nil
}

// InflateGasEstimate adds 20% headroom to limit unless it is exactly the plain
// transfer cost.
func InflateGasEstimate(limit, minTransfer uint64) uint64 {
	if limit == minTransfer {
		return limit
	}

	headroom := limit / 5
	if limit > math.MaxUint64-headroom {
		return math.MaxUint64
	}
	return limit + headroom
}
