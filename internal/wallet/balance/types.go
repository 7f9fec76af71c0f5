// Package balance decides whether an account can fund a configured transfer.
package balance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StatusKind is the variant of a Status.
type StatusKind int

const (
	StatusSufficient StatusKind = iota
	StatusInsufficientNative
	StatusInsufficientToken
)

func (k StatusKind) String() string {
	switch k {
	case StatusSufficient:
		return "sufficient"
	case StatusInsufficientNative:
		return "insufficient-native"
	case StatusInsufficientToken:
		return "insufficient-token"
	default:
		return "unknown"
	}
}

// Reason is the single most relevant explanation of a Status, used as a
// message key.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInsufficientNative Reason = "insufficient_native"
	ReasonInsufficientToken  Reason = "insufficient_token"
	ReasonInsufficientGas    Reason = "insufficient_gas"
)

// Status is the outcome of Validate. ValueSufficient refers to the native
// value for StatusInsufficientNative and to the token amount for
// StatusInsufficientToken.
type Status struct {
	Kind            StatusKind
	ValueSufficient bool
	GasSufficient   bool
}

// Balances are the account's known holdings. Nil means unknown.
type Balances struct {
	Native *big.Int
	Token  *big.Int
}

// Source looks balances up on chain.
type Source interface {
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, contract, addr common.Address) (*big.Int, error)
}
