// Package test holds fixtures shared by the package tests.
package test

import (
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/wallet/chain"
)

// FakeNode answers the eth_* calls the chain package makes with canned
// values. Fields may be changed between calls.
type FakeNode struct {
	mu sync.Mutex

	GasPrice     *big.Int
	ChainID      *big.Int
	Estimate     uint64
	EstimateErr  error
	Nonce        uint64
	Balance      *big.Int
	TokenBalance *big.Int

	server *rpc.Server
}

// NewFakeNode returns a node on chain 5 with a 30 gwei gas price.
func NewFakeNode(t *testing.T) *FakeNode {
	t.Helper()

	node := &FakeNode{
		GasPrice:     big.NewInt(30_000_000_000),
		ChainID:      big.NewInt(5),
		Estimate:     50000,
		Nonce:        7,
		Balance:      big.NewInt(1_000_000),
		TokenBalance: big.NewInt(42),
		server:       rpc.NewServer(),
	}

	require.NoError(t, node.server.RegisterName("eth", &ethAPI{node: node}))
	t.Cleanup(node.server.Stop)

	return node
}

// Set changes the node's answers under its lock.
func (n *FakeNode) Set(f func(n *FakeNode)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	f(n)
}

// Client connects to the node in process.
func (n *FakeNode) Client(t *testing.T) *chain.RPCClient {
	t.Helper()

	client := chain.WrapClient(ethclient.NewClient(rpc.DialInProc(n.server)))
	t.Cleanup(client.Close)

	return client
}

// URL serves the node over HTTP and returns its endpoint.
func (n *FakeNode) URL(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(n.server)
	t.Cleanup(srv.Close)

	return srv.URL
}

// WithTestState runs closure with chain state backed by a fresh FakeNode.
func WithTestState(t *testing.T, closure func(node *FakeNode, state *chain.State)) {
	t.Helper()

	node := NewFakeNode(t)
	state, err := chain.NewState(node.Client(t))
	require.NoError(t, err)

	closure(node, state)
}

type ethAPI struct {
	node *FakeNode
}

func (a *ethAPI) GasPrice() *hexutil.Big {
	a.node.mu.Lock()
	defer a.node.mu.Unlock()
	return (*hexutil.Big)(a.node.GasPrice)
}

func (a *ethAPI) ChainId() *hexutil.Big { //nolint:revive,stylecheck // RPC method name
	a.node.mu.Lock()
	defer a.node.mu.Unlock()
	return (*hexutil.Big)(a.node.ChainID)
}

func (a *ethAPI) EstimateGas(_ map[string]interface{}, _ *string) (hexutil.Uint64, error) {
	a.node.mu.Lock()
	defer a.node.mu.Unlock()

	if a.node.EstimateErr != nil {
		return 0, a.node.EstimateErr
	}
	return hexutil.Uint64(a.node.Estimate), nil
}

func (a *ethAPI) GetTransactionCount(_ common.Address, _ *string) hexutil.Uint64 {
	a.node.mu.Lock()
	defer a.node.mu.Unlock()
	return hexutil.Uint64(a.node.Nonce)
}

func (a *ethAPI) GetBalance(_ common.Address, _ *string) *hexutil.Big {
	a.node.mu.Lock()
	defer a.node.mu.Unlock()
	return (*hexutil.Big)(a.node.Balance)
}

func (a *ethAPI) Call(_ map[string]interface{}, _ *string) hexutil.Bytes {
	a.node.mu.Lock()
	defer a.node.mu.Unlock()
	return common.LeftPadBytes(a.node.TokenBalance.Bytes(), 32)
}
