package entity

import "strings"

// NetworkDescriptor holds the configuration for a supported EVM network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDescriptor struct {
	ID              string   `json:"id" yaml:"id"` // stable key, e.g. "ethereum", "pulsechain"
	Name            string   `json:"name" yaml:"name"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	ChainID         uint64   `json:"chainId" yaml:"chainId"`
	RPCURL          string   `json:"rpcUrl" yaml:"rpcUrl"`
	FallbackRPCURLs []string `json:"fallbackRpcUrls,omitempty" yaml:"fallbackRpcUrls,omitempty"`
	Symbol          string   `json:"symbol" yaml:"symbol"`
	ExplorerURL     string   `json:"explorerUrl" yaml:"explorerUrl"`
	TokenAddress    string   `json:"tokenAddress,omitempty" yaml:"tokenAddress,omitempty"`
	// IndexerChain is the chain name understood by the token indexing API.
	IndexerChain string `json:"indexerChain" yaml:"indexerChain"`
}

// HasToken reports whether the TIME dividend contract is deployed on the network.
func (n NetworkDescriptor) HasToken() bool {
	addr := strings.TrimSpace(n.TokenAddress)
	return addr != "" && !strings.EqualFold(addr, ZeroAddress)
}

// TxURL returns the explorer link for a transaction hash.
func (n NetworkDescriptor) TxURL(txHash string) string {
	if n.ExplorerURL == "" || txHash == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/tx/" + txHash
}

// ZeroAddress marks a network without a deployed TIME contract.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NetworkResolution is the outcome of matching a wallet chain against the supported networks.
type NetworkResolution struct {
	Network   NetworkDescriptor `json:"network"`
	Supported bool              `json:"supported"`
	Prompt    string            `json:"prompt,omitempty"`
	View      string            `json:"view"`
}

const (
	ViewNetwork   = "network"
	ViewDividends = "dividends"
)
