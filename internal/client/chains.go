package client

// supportedChains are the chain names accepted by the indexing API, in display order.
var supportedChains = []string{"eth", "polygon", "bsc", "avalanche", "arbitrum", "base", "pulse"}

// SupportedChains returns a copy of the indexer chain names.
func SupportedChains() []string {
	out := make([]string, len(supportedChains))
	copy(out, supportedChains)
	return out
}

// IsValidChain reports whether chain is served by the indexing API. Matching is exact.
func IsValidChain(chain string) bool {
	for _, c := range supportedChains {
		if c == chain {
			return true
		}
	}
	return false
}
