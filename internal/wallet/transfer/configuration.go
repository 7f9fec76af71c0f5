package transfer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-keyvault/internal/wallet/signer"
)

// UnknownNonce marks a configuration whose nonce has not been learned yet.
const UnknownNonce int64 = -1

// Configuration is the signable parameter set of a transfer. It is passed and
// stored by value; use Clone before handing one to another goroutine.
type Configuration struct {
	GasPrice *big.Int
	GasLimit uint64
	Data     []byte
	Nonce    int64
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	return Configuration{
		GasPrice: copyInt(c.GasPrice),
		GasLimit: c.GasLimit,
		Data:     copyBytes(c.Data),
		Nonce:    c.Nonce,
	}
}

// Fee is GasPrice * GasLimit, the most the transaction can spend on gas.
func (c Configuration) Fee() *big.Int {
	if c.GasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(c.GasPrice, new(big.Int).SetUint64(c.GasLimit))
}

// NonceKnown reports whether Nonce holds a real value.
func (c Configuration) NonceKnown() bool {
	return c.Nonce > UnknownNonce
}

// Transaction is a configuration bound to its recipient and final value.
type Transaction struct {
	To            *common.Address
	Value         *big.Int
	Configuration Configuration
}

// Request converts t into the signer's input.
func (t Transaction) Request() (*signer.Request, error) {
	if !t.Configuration.NonceKnown() {
		return nil, errors.New("transaction nonce is unknown")
	}

	var to *common.Address
	if t.To != nil {
		addr := *t.To
		to = &addr
	}

	return &signer.Request{
		Nonce:    uint64(t.Configuration.Nonce),
		To:       to,
		Value:    copyInt(t.Value),
		GasLimit: t.Configuration.GasLimit,
		GasPrice: copyInt(t.Configuration.GasPrice),
		Data:     copyBytes(t.Configuration.Data),
	}, nil
}
