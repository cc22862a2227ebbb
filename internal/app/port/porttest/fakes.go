// Package porttest provides in-memory implementations of the port interfaces for tests.
package porttest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	moralis "time_dividends/internal/entity"
)

// ReadFunc answers a contract read.
type ReadFunc func(args []interface{}) ([]interface{}, error)

// Uint returns a ReadFunc answering a single uint256.
func Uint(v int64) ReadFunc {
	return func([]interface{}) ([]interface{}, error) { return []interface{}{big.NewInt(v)}, nil }
}

// ContractClient is a scriptable port.ContractClient.
type ContractClient struct {
	Network       entity.NetworkDescriptor
	Reads         map[string]ReadFunc
	SimulateErr   error
	WriteErr      error
	TxHash        string
	Receipt       *entity.TransactionReceipt
	ReceiptErr    error
	Nonce         uint64
	ServedChainID uint64
	ChainIDErr    error
	// BeforeWrite runs inside WriteContract before it returns.
	BeforeWrite func()

	mu        sync.Mutex
	calls     map[string]int
	simulated []entity.ContractCall
}

// NewContractClient returns a client that serves network's chain id and succeeds every write.
func NewContractClient(network entity.NetworkDescriptor) *ContractClient {
	return &ContractClient{
		Network:       network,
		Reads:         map[string]ReadFunc{},
		TxHash:        "0x" + fmt.Sprintf("%064x", 1),
		ServedChainID: network.ChainID,
		calls:         map[string]int{},
	}
}

func (c *ContractClient) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[name]++
}

// Calls returns how often name ("read:<method>", "simulate", "write", "wait", "nonce", "chainid") was hit.
func (c *ContractClient) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// Simulated returns the calls passed to SimulateContract.
func (c *ContractClient) Simulated() []entity.ContractCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.ContractCall(nil), c.simulated...)
}

func (c *ContractClient) ReadContract(_ context.Context, call entity.ContractCall) ([]interface{}, error) {
	c.record("read:" + call.Method)
	c.mu.Lock()
	fn, ok := c.Reads[call.Method]
	c.mu.Unlock()
	if !ok {
		return nil, entity.Errorf(entity.KindInvalidInput, "read "+call.Method, "no fake read configured")
	}
	return fn(call.Args)
}

func (c *ContractClient) SimulateContract(_ context.Context, call entity.ContractCall) (*entity.PreparedCall, error) {
	c.record("simulate")
	c.mu.Lock()
	c.simulated = append(c.simulated, call)
	c.mu.Unlock()
	if c.SimulateErr != nil {
		return nil, c.SimulateErr
	}
	return &entity.PreparedCall{ContractCall: call, Data: []byte{0x01}, Gas: 50000}, nil
}

func (c *ContractClient) WriteContract(_ context.Context, prepared *entity.PreparedCall, signer port.TransactionSigner) (string, error) {
	c.record("write")
	if c.BeforeWrite != nil {
		c.BeforeWrite()
	}
	if c.WriteErr != nil {
		return "", c.WriteErr
	}
	if signer == nil || signer.Address() != prepared.From {
		return "", entity.Errorf(entity.KindUnauthorized, "write", "signer mismatch")
	}
	return c.TxHash, nil
}

func (c *ContractClient) WaitForTransactionReceipt(_ context.Context, txHash string) (*entity.TransactionReceipt, error) {
	c.record("wait")
	if c.ReceiptErr != nil {
		return nil, c.ReceiptErr
	}
	if c.Receipt != nil {
		return c.Receipt, nil
	}
	return &entity.TransactionReceipt{TxHash: txHash, Status: entity.ReceiptStatusSuccessful, BlockNumber: 1}, nil
}

func (c *ContractClient) PendingNonce(context.Context, string) (uint64, error) {
	c.record("nonce")
	return c.Nonce, nil
}

func (c *ContractClient) ChainID(context.Context) (uint64, error) {
	c.record("chainid")
	return c.ServedChainID, c.ChainIDErr
}

func (c *ContractClient) Definition() entity.NetworkDescriptor { return c.Network }

// ClientProvider hands out pre-registered clients by network id.
type ClientProvider struct {
	mu      sync.Mutex
	Clients map[string]*ContractClient
	Err     error
}

// NewClientProvider registers clients under their network ids.
func NewClientProvider(clients ...*ContractClient) *ClientProvider {
	p := &ClientProvider{Clients: map[string]*ContractClient{}}
	for _, c := range clients {
		p.Clients[c.Network.ID] = c
	}
	return p
}

func (p *ClientProvider) GetClient(netDef entity.NetworkDescriptor) (port.ContractClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	c, ok := p.Clients[netDef.ID]
	if !ok {
		return nil, entity.Errorf(entity.KindNetworkUnreachable, "get client", "no client for %s", netDef.ID)
	}
	return c, nil
}

func (p *ClientProvider) Close() {}

// IndexingClient is a scriptable port.IndexingClient.
type IndexingClient struct {
	mu          sync.Mutex
	Initialized bool
	Balances    *moralis.WalletTokenBalances
	BalancesErr error
	Prices      map[string]float64
	PriceErr    error
	balanceHits int
	priceHits   int
}

func (c *IndexingClient) Initialize(apiKey string) error {
	if apiKey == "" {
		return entity.Errorf(entity.KindUnavailable, "initialize", "API key is not configured")
	}
	c.mu.Lock()
	c.Initialized = true
	c.mu.Unlock()
	return nil
}

func (c *IndexingClient) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Initialized
}

func (c *IndexingClient) GetWalletTokenBalances(_ context.Context, address, chain string, _ []string) (*moralis.WalletTokenBalances, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balanceHits++
	if c.BalancesErr != nil {
		return nil, c.BalancesErr
	}
	if c.Balances == nil {
		return &moralis.WalletTokenBalances{Address: address, Chain: chain}, nil
	}
	return c.Balances, nil
}

func (c *IndexingClient) GetTokenPrice(_ context.Context, chain, tokenAddress string) (*moralis.TokenPrice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.priceHits++
	if c.PriceErr != nil {
		return nil, c.PriceErr
	}
	price, ok := c.Prices[chain]
	if !ok {
		return nil, entity.Errorf(entity.KindInvalidInput, "get token price", "no price for %s", chain)
	}
	return &moralis.TokenPrice{TokenAddress: tokenAddress, UsdPrice: price}, nil
}

func (c *IndexingClient) Close() {
	c.mu.Lock()
	c.Initialized = false
	c.mu.Unlock()
}

// BalanceHits counts GetWalletTokenBalances calls.
func (c *IndexingClient) BalanceHits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceHits
}

// PriceHits counts GetTokenPrice calls.
func (c *IndexingClient) PriceHits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.priceHits
}
