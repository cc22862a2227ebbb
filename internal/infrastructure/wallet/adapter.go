package wallet

import (
	"context"
	"sync"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Adapter keeps wallet sessions in a TTL cache and hands out the configured signer.
type Adapter struct {
	sessions  *cache.Cache
	signer    port.TransactionSigner
	networks  port.NetworkDefinitionProvider
	clients   port.ContractClientProvider
	projectID string
	logger    port.Logger
	now       func() time.Time

	// serialises read-modify-write of a session
	mu sync.Mutex
}

// NewAdapter creates the wallet adapter. signer may be nil, in which case sessions are read-only.
func NewAdapter(
	sessionTTL time.Duration,
	projectID string,
	signer port.TransactionSigner,
	networks port.NetworkDefinitionProvider,
	clients port.ContractClientProvider,
	logger port.Logger,
) *Adapter {
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}
	return &Adapter{
		sessions:  cache.New(sessionTTL, sessionTTL/2),
		signer:    signer,
		networks:  networks,
		clients:   clients,
		projectID: projectID,
		logger:    logger.With("component", "wallet_adapter"),
		now:       time.Now,
	}
}

// Connect opens a session for address on chainID. An empty address uses the signer's account;
// chainID 0 uses the default network. The chain does not have to be supported.
func (a *Adapter) Connect(_ context.Context, address string, chainID uint64) (entity.WalletSession, error) {
	const op = "connect wallet"
	if address == "" {
		if a.signer == nil {
			return entity.WalletSession{}, entity.Errorf(entity.KindInvalidInput, op, "address is required")
		}
		address = a.signer.Address().Hex()
	}
	if !common.IsHexAddress(address) {
		return entity.WalletSession{}, entity.Errorf(entity.KindInvalidInput, op, "invalid address %q", address)
	}
	if chainID == 0 {
		chainID = a.networks.DefaultNetwork().ChainID
	}

	addr := common.HexToAddress(address)
	now := a.now()
	session := entity.WalletSession{
		ID:        uuid.NewString(),
		Address:   addr.Hex(),
		ChainID:   chainID,
		Connected: true,
		CanSign:   a.signer != nil && a.signer.Address() == addr,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.sessions.SetDefault(session.ID, session)
	a.logger.Info("Wallet connected", "session", session.ID, "address", session.Address, "chain_id", chainID, "can_sign", session.CanSign)
	return session, nil
}

// Session returns a copy of the session and extends its lifetime.
func (a *Adapter) Session(id string) (entity.WalletSession, bool) {
	v, ok := a.sessions.Get(id)
	if !ok {
		return entity.WalletSession{}, false
	}
	session := v.(entity.WalletSession)
	a.sessions.SetDefault(id, session)
	return session, true
}

// SwitchChain moves the session to chainID after checking that the network's RPC serves that chain.
func (a *Adapter) SwitchChain(ctx context.Context, id string, chainID uint64) (entity.WalletSession, error) {
	const op = "switch chain"
	network, ok := a.networks.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		return entity.WalletSession{}, entity.Errorf(entity.KindInvalidInput, op, "chain %d is not supported", chainID)
	}
	if _, ok := a.Session(id); !ok {
		return entity.WalletSession{}, entity.Errorf(entity.KindInvalidInput, op, "session %s not found", id)
	}

	client, err := a.clients.GetClient(network)
	if err != nil {
		return entity.WalletSession{}, err
	}
	served, err := client.ChainID(ctx)
	if err != nil {
		return entity.WalletSession{}, err
	}
	if served != chainID {
		return entity.WalletSession{}, entity.Errorf(entity.KindNetworkUnreachable, op, "RPC for %s serves chain %d", network.ID, served)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	session, ok := a.Session(id)
	if !ok {
		return entity.WalletSession{}, entity.Errorf(entity.KindInvalidInput, op, "session %s not found", id)
	}
	session.ChainID = chainID
	session.UpdatedAt = a.now()
	a.sessions.SetDefault(id, session)
	a.logger.Info("Wallet switched chain", "session", id, "network", network.ID, "chain_id", chainID)
	return session, nil
}

// Disconnect drops the session. It reports whether the session existed.
func (a *Adapter) Disconnect(id string) bool {
	if _, ok := a.sessions.Get(id); !ok {
		return false
	}
	a.sessions.Delete(id)
	a.logger.Info("Wallet disconnected", "session", id)
	return true
}

// SignerFor returns the signer when it controls the session's address.
func (a *Adapter) SignerFor(session entity.WalletSession) (port.TransactionSigner, error) {
	if a.signer == nil {
		return nil, &entity.ServiceError{Kind: entity.KindUnavailable, Op: "signer", Message: "No signer configured for this service"}
	}
	if !common.IsHexAddress(session.Address) || a.signer.Address() != common.HexToAddress(session.Address) {
		return nil, &entity.ServiceError{Kind: entity.KindUnauthorized, Op: "signer", Message: "Wallet cannot sign for " + session.Address}
	}
	return a.signer, nil
}

// ProjectID implements port.WalletAdapter.
func (a *Adapter) ProjectID() string {
	return a.projectID
}

// SignerAddress returns the signer account or an empty string.
func (a *Adapter) SignerAddress() string {
	if a.signer == nil {
		return ""
	}
	return a.signer.Address().Hex()
}
