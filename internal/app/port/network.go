package port

import (
	"context"

	"time_dividends/internal/domain/entity"
)

// ContractClient defines the interface for calling the TIME contract on one EVM network.
type ContractClient interface {
	// ReadContract performs an eth_call and returns the decoded outputs.
	ReadContract(ctx context.Context, call entity.ContractCall) ([]interface{}, error)

	// SimulateContract dry-runs a write from call.From and estimates its gas.
	// Reverts are reported with entity.KindTransactionReverted.
	SimulateContract(ctx context.Context, call entity.ContractCall) (*entity.PreparedCall, error)

	// WriteContract signs a simulated call and broadcasts it, returning the transaction hash.
	WriteContract(ctx context.Context, prepared *entity.PreparedCall, signer TransactionSigner) (string, error)

	// WaitForTransactionReceipt blocks until the transaction is mined or ctx is done.
	WaitForTransactionReceipt(ctx context.Context, txHash string) (*entity.TransactionReceipt, error)

	// PendingNonce returns the next nonce for address including pending transactions.
	PendingNonce(ctx context.Context, address string) (uint64, error)

	// ChainID asks the RPC endpoint which chain it serves.
	ChainID(ctx context.Context) (uint64, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDescriptor
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all supported networks in display order.
	GetAllNetworkDefinitions() []entity.NetworkDescriptor

	// GetNetworkDefinitionByName returns a network by its id or name.
	GetNetworkDefinitionByName(nameOrID string) (entity.NetworkDescriptor, bool)

	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDescriptor, bool)

	// DefaultNetwork is used when a wallet is on an unsupported chain.
	DefaultNetwork() entity.NetworkDescriptor
}

// ContractClientProvider defines the interface for providing contract clients.
type ContractClientProvider interface {
	GetClient(networkDefinition entity.NetworkDescriptor) (ContractClient, error)
	Close()
}
