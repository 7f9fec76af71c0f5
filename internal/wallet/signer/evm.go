package signer

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// NewLegacyTransaction builds the unsigned transaction for req.
func NewLegacyTransaction(req *Request) (*types.Transaction, error) {
	if req.GasPrice == nil || req.GasPrice.Sign() < 0 {
		return nil, errors.New("invalid gas price")
	}
	if req.GasLimit == 0 {
		return nil, errors.New("gas limit must be positive")
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, errors.New("value must not be negative")
	}

	data := make([]byte, len(req.Data))
	copy(data, req.Data)

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		GasPrice: new(big.Int).Set(req.GasPrice),
		Gas:      req.GasLimit,
		To:       req.To,
		Value:    new(big.Int).Set(value),
		Data:     data,
	})

	return tx, nil
}

// SignLegacy signs req with key under EIP-155 replay protection for chainID.
func SignLegacy(req *Request, chainID *big.Int, key *ecdsa.PrivateKey) (*Response, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain ID must be positive")
	}

	tx, err := NewLegacyTransaction(req)
	if err != nil {
		return nil, err
	}

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return Encode(signedTx)
}

// Encode serializes a signed transaction into its canonical network encoding.
func Encode(signedTx *types.Transaction) (*Response, error) {
	txBytes, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction")
	}

	return &Response{
		RawTransaction: txBytes,
		TxHash:         signedTx.Hash().Hex(),
	}, nil
}

// Decode parses raw bytes produced by Encode.
func Decode(raw []byte) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal signed transaction")
	}
	return tx, nil
}

// Sender recovers the signer of an EIP-155 transaction.
func Sender(tx *types.Transaction) (string, error) {
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return "", errors.Wrap(err, "failed to recover sender")
	}
	return from.Hex(), nil
}
