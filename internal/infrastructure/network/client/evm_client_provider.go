package client

import (
	"fmt"
	"sync"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/configloader"

	"golang.org/x/time/rate"
)

// evmClientProvider implements the port.ContractClientProvider interface.
type evmClientProvider struct {
	clients map[string]*EVMClient
	mu      sync.Mutex
	logger  port.Logger
	opts    EVMClientOptions
	rps     rate.Limit
	burst   int
}

// NewEVMClientProvider creates a new EVMClientProvider.
// Every network gets its own rate limiter so a slow chain cannot starve the others.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger) port.ContractClientProvider {
	rc := cfg.RpcClient
	return &evmClientProvider{
		clients: make(map[string]*EVMClient),
		logger:  logger.With("component", "evm_client_provider"),
		opts: EVMClientOptions{
			ConnectionTimeout:   time.Duration(rc.ConnectionTimeoutMs) * time.Millisecond,
			RPCCallTimeout:      time.Duration(rc.DefaultTimeoutMs) * time.Millisecond,
			ReceiptPollInterval: time.Duration(cfg.Transactions.ReceiptPollIntervalMs) * time.Millisecond,
		},
		rps:   rate.Limit(rc.RateLimit),
		burst: rc.BurstLimit,
	}
}

// GetClient retrieves a contract client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *evmClientProvider) GetClient(netDef entity.NetworkDescriptor) (port.ContractClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ID]; exists {
		p.logger.Debug("Returning cached EVM client", "network", netDef.ID)
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.ID, "rpc_primary", netDef.RPCURL)
	opts := p.opts
	if p.rps > 0 {
		opts.Limiter = rate.NewLimiter(p.rps, max(p.burst, 1))
	}
	newClient, err := NewEVMClient(netDef, opts)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.ID, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ID] = newClient
	return newClient, nil
}

// Close drops every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
