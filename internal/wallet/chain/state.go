package chain

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// State caches network facts fetched from a Backend and serves them to the
// transaction configurator.
type State struct {
	backend Backend
	erc20   abi.ABI

	mu       sync.RWMutex
	gasPrice *big.Int
	chainID  *big.Int
	nonces   map[common.Address]uint64
}

var (
	_ StateProvider = (*State)(nil)
	_ NonceSource   = (*State)(nil)
)

// NewState creates a State with nothing cached yet.
func NewState(backend Backend) (*State, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ERC20 ABI")
	}

	return &State{
		backend: backend,
		erc20:   parsed,
		nonces:  make(map[common.Address]uint64),
	}, nil
}

// Refresh reloads the gas price, the chain ID and the pending nonce of every addr.
func (s *State) Refresh(ctx context.Context, addrs ...common.Address) error {
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to refresh gas price")
	}

	chainID, err := s.backend.GetChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to refresh chain ID")
	}

	nonces := make(map[common.Address]uint64, len(addrs))
	for _, addr := range addrs {
		nonce, err := s.backend.PendingNonceAt(ctx, addr)
		if err != nil {
			return errors.Wrapf(err, "failed to refresh nonce of %s", addr.Hex())
		}
		nonces[addr] = nonce
	}

	s.mu.Lock()
	s.gasPrice = gasPrice
	s.chainID = chainID
	for addr, nonce := range nonces {
		s.nonces[addr] = nonce
	}
	s.mu.Unlock()

	log.Debug().
		Str("gas_price", gasPrice.String()).
		Str("chain_id", chainID.String()).
		Int("addresses", len(addrs)).
		Msg("Refreshed chain state")

	return nil
}

// SuggestedGasPrice returns a copy of the cached gas price, nil before the first Refresh.
func (s *State) SuggestedGasPrice() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.gasPrice == nil {
		return nil
	}
	return new(big.Int).Set(s.gasPrice)
}

// ChainID returns a copy of the cached chain ID, nil before the first Refresh.
func (s *State) ChainID() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.chainID == nil {
		return nil
	}
	return new(big.Int).Set(s.chainID)
}

// NextNonce implements NonceSource.
func (s *State) NextNonce(addr common.Address) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nonce, ok := s.nonces[addr]
	return nonce, ok
}

// SetNonce records a locally known next nonce, e.g. after broadcasting.
func (s *State) SetNonce(addr common.Address, nonce uint64) {
	s.mu.Lock()
	s.nonces[addr] = nonce
	s.mu.Unlock()
}

// EstimateGas implements StateProvider.
func (s *State) EstimateGas(ctx context.Context, from common.Address, to *common.Address, value *big.Int, data []byte) (string, error) {
	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return "", err
	}

	return hexutil.EncodeUint64(gas), nil
}

// EncodeERC20Transfer implements StateProvider.
func (s *State) EncodeERC20Transfer(_ context.Context, contract, to common.Address, value *big.Int) (string, error) {
	if contract == (common.Address{}) {
		return "", errors.New("token contract address is empty")
	}
	if value == nil || value.Sign() < 0 {
		return "", errors.New("token amount must not be negative")
	}

	data, err := s.erc20.Pack("transfer", to, value)
	if err != nil {
		return "", errors.Wrap(err, "failed to pack ERC20 transfer")
	}

	return hexutil.Encode(data), nil
}

// NativeBalance returns the latest native balance of addr.
func (s *State) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return s.backend.BalanceAt(ctx, addr)
}

// TokenBalance returns addr's balance on the ERC-20 contract.
func (s *State) TokenBalance(ctx context.Context, contract, addr common.Address) (*big.Int, error) {
	return s.backend.TokenBalance(ctx, contract, addr)
}
