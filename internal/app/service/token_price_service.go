package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/client"
	"time_dividends/internal/domain/entity"

	"github.com/patrickmn/go-cache"
)

// tokenPriceServiceImpl implements port.TokenPriceService over a TTL cache.
type tokenPriceServiceImpl struct {
	indexer         port.IndexingClient
	networkProvider port.NetworkDefinitionProvider
	logger          port.Logger
	prices          *cache.Cache
	concurrency     int
}

// NewTokenPriceService creates a new instance of tokenPriceServiceImpl.
func NewTokenPriceService(
	indexer port.IndexingClient,
	np port.NetworkDefinitionProvider,
	l port.Logger,
	ttl time.Duration,
	concurrency int,
) port.TokenPriceService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	s := &tokenPriceServiceImpl{
		indexer:         indexer,
		networkProvider: np,
		logger:          l.With("component", "token_price_service"),
		prices:          cache.New(ttl, 2*ttl),
		concurrency:     concurrency,
	}
	s.logger.Debug("TokenPriceService initialized", "ttl", ttl.String())
	return s
}

func priceKey(chain, tokenAddress string) string {
	return chain + ":" + strings.ToLower(tokenAddress)
}

// GetPriceUSD implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) GetPriceUSD(chain string, tokenAddress string) (float64, bool) {
	v, ok := s.prices.Get(priceKey(chain, tokenAddress))
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

// FetchPriceUSD implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) FetchPriceUSD(ctx context.Context, chain string, tokenAddress string) (float64, error) {
	if price, ok := s.GetPriceUSD(chain, tokenAddress); ok {
		return price, nil
	}
	if !s.indexer.IsInitialized() {
		return 0, entity.Errorf(entity.KindUnavailable, "fetch price", "indexing client is not initialized")
	}

	quote, err := s.indexer.GetTokenPrice(ctx, chain, tokenAddress)
	if err != nil {
		return 0, fmt.Errorf("price for %s on %s: %w", tokenAddress, chain, err)
	}
	if quote.UsdPrice <= 0 {
		s.logger.Debug("Indexer returned no usable price, not caching", "chain", chain, "token", tokenAddress, "price", quote.UsdPrice)
		return quote.UsdPrice, nil
	}
	s.prices.SetDefault(priceKey(chain, tokenAddress), quote.UsdPrice)
	return quote.UsdPrice, nil
}

// LoadAndCacheTokenPrices implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) LoadAndCacheTokenPrices(ctx context.Context) error {
	if !s.indexer.IsInitialized() {
		s.logger.Warn("Indexing client not initialized, skipping price warmup")
		return nil
	}
	s.logger.Info("Starting to load and cache TIME prices...")

	var processed, failed atomic.Int32
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for _, netDef := range s.networkProvider.GetAllNetworkDefinitions() {
		if !netDef.HasToken() || !client.IsValidChain(netDef.IndexerChain) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(netDef entity.NetworkDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()

			price, err := s.FetchPriceUSD(ctx, netDef.IndexerChain, netDef.TokenAddress)
			if err != nil {
				s.logger.Warn("Failed to fetch TIME price", "network", netDef.ID, "error", err)
				failed.Add(1)
				return
			}
			s.logger.Debug("Cached TIME price", "network", netDef.ID, "priceUSD", price)
			processed.Add(1)
		}(netDef)
	}
	wg.Wait()

	s.logger.Info("Finished loading TIME prices", "cached", processed.Load(), "failed", failed.Load())
	if processed.Load() == 0 && failed.Load() > 0 {
		return fmt.Errorf("no TIME price could be loaded (%d failures)", failed.Load())
	}
	return nil
}
