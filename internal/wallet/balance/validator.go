package balance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/wallet/transfer"
)

// Validate checks b against the cost of cfg for intent. It never fails.
//
// For native and contract-call intents the value is checked first; when it is
// not covered gas is reported as not covered either. For token intents the
// token amount and the gas fee are checked independently. An unknown native
// balance is treated as sufficient; so is an unknown token balance.
func Validate(b Balances, cfg transfer.Configuration, intent transfer.Intent) Status {
	return validate(b, cfg.Fee(), intent.Kind(), intent.Value())
}

// ValidateTransaction is Validate for the transaction that will actually be
// signed. Native and contract-call intents are checked with tx.Value, which
// is below the intent's value when the fee was deducted from a send-max.
// Token intents are checked with the intent's token amount.
func ValidateTransaction(b Balances, tx transfer.Transaction, intent transfer.Intent) Status {
	value := intent.Value()
	if intent.Kind() != transfer.KindToken && tx.Value != nil {
		value = tx.Value
	}
	return validate(b, tx.Configuration.Fee(), intent.Kind(), value)
}

func validate(b Balances, fee *big.Int, kind transfer.Kind, value *big.Int) Status {
	if b.Native == nil {
		return Status{Kind: StatusSufficient, ValueSufficient: true, GasSufficient: true}
	}

	if kind == transfer.KindToken {
		gasOK := fee.Cmp(b.Native) <= 0
		tokenOK := b.Token == nil || value.Cmp(b.Token) <= 0

		return status(StatusInsufficientToken, tokenOK, gasOK)
	}

	if value.Cmp(b.Native) > 0 {
		return status(StatusInsufficientNative, false, false)
	}

	total := new(big.Int).Add(fee, value)
	return status(StatusInsufficientNative, true, total.Cmp(b.Native) <= 0)
}

func status(kind StatusKind, valueOK, gasOK bool) Status {
	if valueOK && gasOK {
		kind = StatusSufficient
	}
	return Status{Kind: kind, ValueSufficient: valueOK, GasSufficient: gasOK}
}

// Sufficient reports whether both the value and the gas are covered.
func (s Status) Sufficient() bool {
	return s.ValueSufficient && s.GasSufficient
}

// Reason picks the message to show: a missing value or token amount wins over
// missing gas.
func (s Status) Reason() Reason {
	switch {
	case s.Sufficient():
		return ReasonNone
	case !s.ValueSufficient && s.Kind == StatusInsufficientToken:
		return ReasonInsufficientToken
	case !s.ValueSufficient:
		return ReasonInsufficientNative
	default:
		return ReasonInsufficientGas
	}
}

// Fetch loads the balances relevant to intent for from.
func Fetch(ctx context.Context, src Source, from common.Address, intent transfer.Intent) (Balances, error) {
	native, err := src.NativeBalance(ctx, from)
	if err != nil {
		return Balances{}, errors.Wrap(err, "failed to fetch native balance")
	}

	b := Balances{Native: native}
	if intent.Kind() != transfer.KindToken {
		return b, nil
	}

	token, err := src.TokenBalance(ctx, intent.Contract(), from)
	if err != nil {
		return Balances{}, errors.Wrap(err, "failed to fetch token balance")
	}
	b.Token = token

	return b, nil
}
