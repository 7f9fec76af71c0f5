// Package transfer turns a transfer intent into a signable transaction configuration.
package transfer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind tags the variant of an Intent.
type Kind int

const (
	KindNative Kind = iota
	KindToken
	KindContractCall
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindToken:
		return "token"
	case KindContractCall:
		return "contract-call"
	default:
		return "unknown"
	}
}

// Intent is an immutable description of a desired transfer. Construct it with
// NativeTransfer, TokenTransfer or ContractCall.
type Intent struct {
	kind     Kind
	to       common.Address
	contract common.Address
	value    *big.Int
	data     []byte

	gasPrice *big.Int
	gasLimit uint64
	hasLimit bool
	nonce    uint64
	hasNonce bool
}

// NativeTransfer sends value wei to to.
func NativeTransfer(to common.Address, value *big.Int) Intent {
	return Intent{kind: KindNative, to: to, value: copyInt(value)}
}

// TokenTransfer sends value token units of the ERC-20 contract to to.
func TokenTransfer(contract, to common.Address, value *big.Int) Intent {
	return Intent{kind: KindToken, contract: contract, to: to, value: copyInt(value)}
}

// ContractCall invokes to with value wei and the given call data.
func ContractCall(to common.Address, value *big.Int, data []byte) Intent {
	return Intent{kind: KindContractCall, to: to, value: copyInt(value), data: copyBytes(data)}
}

// WithGasPrice returns a copy of i with an explicit gas price.
func (i Intent) WithGasPrice(price *big.Int) Intent {
	i.gasPrice = copyInt(price)
	return i
}

// WithGasLimit returns a copy of i with an explicit gas limit.
func (i Intent) WithGasLimit(limit uint64) Intent {
	i.gasLimit = limit
	i.hasLimit = true
	return i
}

// WithNonce returns a copy of i with an explicit nonce.
func (i Intent) WithNonce(nonce uint64) Intent {
	i.nonce = nonce
	i.hasNonce = true
	return i
}

func (i Intent) Kind() Kind { return i.kind }

// To is the recipient of the value or tokens, or the called contract.
func (i Intent) To() common.Address { return i.to }

// Contract is the ERC-20 contract of a token transfer.
func (i Intent) Contract() common.Address { return i.contract }

// Value is the nominal amount: wei for native and contract calls, token units for tokens.
func (i Intent) Value() *big.Int {
	if i.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.value)
}

func (i Intent) Data() []byte { return copyBytes(i.data) }

// GasPrice returns the explicit gas price, or nil.
func (i Intent) GasPrice() *big.Int { return copyInt(i.gasPrice) }

func (i Intent) GasLimit() (uint64, bool) { return i.gasLimit, i.hasLimit }

func (i Intent) Nonce() (uint64, bool) { return i.nonce, i.hasNonce }

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
