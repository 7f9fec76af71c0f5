package transfer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// Limits bounds and seeds gas parameters.
type Limits struct {
	MinGasPrice     *big.Int
	MaxGasPrice     *big.Int
	DefaultGasPrice *big.Int

	DefaultGasLimit  uint64 // native transfers
	TokenGasLimit    uint64
	ContractGasLimit uint64
	MinTransferGas   uint64 // cost of a plain value transfer, never inflated
}

// DefaultLimits returns the mainnet defaults.
func DefaultLimits() Limits {
	return Limits{
		MinGasPrice:      gwei(1),
		MaxGasPrice:      gwei(100),
		DefaultGasPrice:  gwei(24),
		DefaultGasLimit:  90000,
		TokenGasLimit:    144000,
		ContractGasLimit: 600000,
		MinTransferGas:   params.TxGas,
	}
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.GWei))
}

// ClampGasPrice bounds price to [MinGasPrice, MaxGasPrice].
func (l Limits) ClampGasPrice(price *big.Int) *big.Int {
	return minInt(maxInt(price, l.MinGasPrice), l.MaxGasPrice)
}

// FloorGasPrice raises price to MinGasPrice without an upper bound.
func (l Limits) FloorGasPrice(price *big.Int) *big.Int {
	return maxInt(price, l.MinGasPrice)
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// rule holds what differs between intent kinds.
type rule struct {
	gasLimit      func(Limits) uint64
	estimateGas   bool
	encodePayload bool
}

var rules = map[Kind]rule{
	KindNative: {
		gasLimit:    func(l Limits) uint64 { return l.DefaultGasLimit },
		estimateGas: true,
	},
	KindToken: {
		gasLimit:      func(l Limits) uint64 { return l.TokenGasLimit },
		encodePayload: true,
	},
	KindContractCall: {
		gasLimit:    func(l Limits) uint64 { return l.ContractGasLimit },
		estimateGas: true,
	},
}

func ruleFor(kind Kind) rule {
	if r, ok := rules[kind]; ok {
		return r
	}
	return rules[KindNative]
}
