package port

import (
	"context"

	moralis "time_dividends/internal/entity"
)

// IndexingClient is the token indexing API used for balances and prices.
type IndexingClient interface {
	// Initialize stores the API key. Calling it again with the same key is a no-op.
	Initialize(apiKey string) error
	IsInitialized() bool
	GetWalletTokenBalances(ctx context.Context, address, chain string, tokenAddresses []string) (*moralis.WalletTokenBalances, error)
	GetTokenPrice(ctx context.Context, chain, tokenAddress string) (*moralis.TokenPrice, error)
	Close()
}

// TokenPriceService определяет интерфейс для службы получения цен токенов.
type TokenPriceService interface {
	// LoadAndCacheTokenPrices warms the cache with the TIME price on every indexed network.
	LoadAndCacheTokenPrices(ctx context.Context) error
	// GetPriceUSD reads the cache only.
	GetPriceUSD(chain string, tokenAddress string) (float64, bool)
	// FetchPriceUSD reads the cache and falls back to the indexing API on a miss.
	FetchPriceUSD(ctx context.Context, chain string, tokenAddress string) (float64, error)
}
