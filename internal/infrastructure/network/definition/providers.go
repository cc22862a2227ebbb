package networkdefinition

import (
	"fmt"
	"strings"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/configloader"
)

// PulseChainTimeToken is the TIME dividend token on PulseChain.
const PulseChainTimeToken = "0xCA35638A3fdDD02fEC597D8c1681198C06b23F58"

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	networks       []entity.NetworkDescriptor
	defaultNetwork entity.NetworkDescriptor
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDescriptor{
		ID:              "ethereum",
		Name:            "Ethereum",
		DisplayName:     "Ethereum Mainnet",
		ChainID:         1,
		RPCURL:          "https://cloudflare-eth.com",
		FallbackRPCURLs: []string{"https://ethereum-rpc.publicnode.com", "https://rpc.ankr.com/eth"},
		Symbol:          "ETH",
		ExplorerURL:     "https://etherscan.io",
		IndexerChain:    "eth",
	}
	PulseChain = entity.NetworkDescriptor{
		ID:           "pulsechain",
		Name:         "PulseChain",
		DisplayName:  "PulseChain Mainnet",
		ChainID:      369,
		RPCURL:       "https://rpc.pulsechain.com",
		Symbol:       "PLS",
		ExplorerURL:  "https://scan.pulsechain.com",
		TokenAddress: PulseChainTimeToken,
		IndexerChain: "pulse",
	}
	BNB = entity.NetworkDescriptor{
		ID:              "bnb",
		Name:            "BNB Chain",
		DisplayName:     "BNB Smart Chain",
		ChainID:         56,
		RPCURL:          "https://bsc-dataseed.binance.org/",
		FallbackRPCURLs: []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		Symbol:          "BNB",
		ExplorerURL:     "https://bscscan.com",
		IndexerChain:    "bsc",
	}
	Polygon = entity.NetworkDescriptor{
		ID:              "polygon",
		Name:            "Polygon",
		DisplayName:     "Polygon Mainnet",
		ChainID:         137,
		RPCURL:          "https://polygon-rpc.com/",
		FallbackRPCURLs: []string{"https://polygon.publicnode.com"},
		Symbol:          "MATIC",
		ExplorerURL:     "https://polygonscan.com",
		IndexerChain:    "polygon",
	}
	Arbitrum = entity.NetworkDescriptor{
		ID:              "arbitrum",
		Name:            "Arbitrum",
		DisplayName:     "Arbitrum One",
		ChainID:         42161,
		RPCURL:          "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs: []string{"https://arbitrum.publicnode.com"},
		Symbol:          "ETH",
		ExplorerURL:     "https://arbiscan.io",
		IndexerChain:    "arbitrum",
	}
	Avalanche = entity.NetworkDescriptor{
		ID:              "avalanche",
		Name:            "Avalanche",
		DisplayName:     "Avalanche C-Chain",
		ChainID:         43114,
		RPCURL:          "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs: []string{"https://avalanche.public-rpc.com"},
		Symbol:          "AVAX",
		ExplorerURL:     "https://snowtrace.io",
		IndexerChain:    "avalanche",
	}
	Base = entity.NetworkDescriptor{
		ID:              "base",
		Name:            "Base",
		DisplayName:     "Base",
		ChainID:         8453,
		RPCURL:          "https://mainnet.base.org",
		FallbackRPCURLs: []string{"https://base.publicnode.com"},
		Symbol:          "ETH",
		ExplorerURL:     "https://basescan.org",
		IndexerChain:    "base",
	}
)

// builtinNetworks is the display order of the selector.
var builtinNetworks = []entity.NetworkDescriptor{Ethereum, PulseChain, BNB, Polygon, Arbitrum, Avalanche, Base}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
// Overrides are applied on top of the built-ins; unknown ids are skipped with a warning.
func NewNetworkDefinitionProvider(log port.Logger, overrides []configloader.NetworkOverride, defaultID string) (*NetworkDefinitionProvider, error) {
	p := &NetworkDefinitionProvider{
		logger:   log,
		networks: make([]entity.NetworkDescriptor, len(builtinNetworks)),
	}
	for i, def := range builtinNetworks {
		def.FallbackRPCURLs = append([]string(nil), def.FallbackRPCURLs...)
		p.networks[i] = def
	}

	for _, o := range overrides {
		idx := p.indexOf(o.ID)
		if idx < 0 {
			p.logger.Warn(fmt.Sprintf("Override for unknown network '%s' ignored.", o.ID))
			continue
		}
		def := &p.networks[idx]
		if o.RPCURL != "" {
			def.RPCURL = o.RPCURL
		}
		if len(o.FallbackRPCURLs) > 0 {
			def.FallbackRPCURLs = append([]string(nil), o.FallbackRPCURLs...)
		}
		if o.TokenAddress != "" {
			def.TokenAddress = o.TokenAddress
		}
		if o.ExplorerURL != "" {
			def.ExplorerURL = o.ExplorerURL
		}
		p.logger.Debug(fmt.Sprintf("Network '%s' overridden from config.", def.ID), "rpc", def.RPCURL, "token", def.TokenAddress)
	}

	if defaultID == "" {
		defaultID = Ethereum.ID
	}
	idx := p.indexOf(defaultID)
	if idx < 0 {
		return nil, fmt.Errorf("default network %q is not supported", defaultID)
	}
	p.defaultNetwork = p.networks[idx]

	withToken := 0
	for _, def := range p.networks {
		if def.HasToken() {
			withToken++
		}
	}
	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Networks: %d, with TIME contract: %d", len(p.networks), withToken),
		"default", p.defaultNetwork.ID)
	return p, nil
}

func (p *NetworkDefinitionProvider) indexOf(id string) int {
	for i, def := range p.networks {
		if strings.EqualFold(def.ID, id) {
			return i
		}
	}
	return -1
}

// GetAllNetworkDefinitions returns the supported networks in display order.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDescriptor {
	if p == nil {
		return []entity.NetworkDescriptor{}
	}
	defsCopy := make([]entity.NetworkDescriptor, len(p.networks))
	copy(defsCopy, p.networks)
	return defsCopy
}

// GetNetworkDefinitionByName returns a network by its id or name.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(nameOrID string) (entity.NetworkDescriptor, bool) {
	if p == nil {
		return entity.NetworkDescriptor{}, false
	}
	for _, def := range p.networks {
		if strings.EqualFold(def.ID, nameOrID) || strings.EqualFold(def.Name, nameOrID) {
			return def, true
		}
	}
	return entity.NetworkDescriptor{}, false
}

// GetNetworkDefinitionByChainID returns a network by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDescriptor, bool) {
	if p == nil {
		return entity.NetworkDescriptor{}, false
	}
	for _, def := range p.networks {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDescriptor{}, false
}

// DefaultNetwork returns the network used when the wallet is on an unsupported chain.
func (p *NetworkDefinitionProvider) DefaultNetwork() entity.NetworkDescriptor {
	return p.defaultNetwork
}
