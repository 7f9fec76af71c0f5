// Package chain talks to an Ethereum JSON-RPC node on behalf of the transaction
// configurator: gas price, gas estimation, nonces, balances and ERC-20 payloads.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// StateProvider supplies the network facts a transaction configuration depends on.
type StateProvider interface {
	// SuggestedGasPrice returns the last observed network gas price, or nil when unknown.
	SuggestedGasPrice() *big.Int

	// EstimateGas returns the node's gas estimate as a 0x-prefixed hex quantity.
	EstimateGas(ctx context.Context, from common.Address, to *common.Address, value *big.Int, data []byte) (string, error)

	// EncodeERC20Transfer returns the hex call data of transfer(to, value) on contract.
	EncodeERC20Transfer(ctx context.Context, contract, to common.Address, value *big.Int) (string, error)
}

// NonceSource returns the next nonce for an address when it is known.
type NonceSource interface {
	NextNonce(addr common.Address) (uint64, bool)
}

// Backend is the subset of node RPC used by State.
type Backend interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	GetChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, address common.Address) (uint64, error)
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, tokenAddress, account common.Address) (*big.Int, error)
}
