package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"time_dividends/internal/domain/entity"
)

// TransactionSigner signs transactions for a single account.
type TransactionSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// WalletAdapter owns wallet sessions and the signer used for writes.
type WalletAdapter interface {
	Connect(ctx context.Context, address string, chainID uint64) (entity.WalletSession, error)
	Session(id string) (entity.WalletSession, bool)
	SwitchChain(ctx context.Context, id string, chainID uint64) (entity.WalletSession, error)
	Disconnect(id string) bool
	SignerFor(session entity.WalletSession) (TransactionSigner, error)
	// ProjectID is the wallet-connect project id handed to browser clients.
	ProjectID() string
}

// WalletProvider defines the interface for fetching watched wallet addresses.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
