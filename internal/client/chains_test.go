package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidChain(t *testing.T) {
	for _, chain := range []string{"eth", "polygon", "bsc", "avalanche", "arbitrum", "base", "pulse"} {
		assert.True(t, IsValidChain(chain), chain)
	}
	assert.False(t, IsValidChain("ETH"))
	assert.False(t, IsValidChain("pulsechain"))
	assert.False(t, IsValidChain(""))
}

func TestSupportedChainsReturnsCopy(t *testing.T) {
	chains := SupportedChains()
	chains[0] = "mutated"
	assert.True(t, IsValidChain("eth"))
	assert.Len(t, SupportedChains(), 7)
}
