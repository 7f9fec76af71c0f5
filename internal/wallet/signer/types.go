package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Request describes an unsigned legacy (gas price) transaction.
type Request struct {
	Nonce    uint64          // Transaction nonce
	To       *common.Address // Recipient; nil deploys a contract
	Value    *big.Int        // Amount in wei
	GasLimit uint64          // Gas limit
	GasPrice *big.Int        // Gas price in wei
	Data     []byte          // Transaction data (for contract calls)
}

// Response represents a signed EVM transaction
type Response struct {
	RawTransaction []byte // RLP-encoded signed transaction
	TxHash         string // Transaction hash (hex string with 0x prefix)
}
