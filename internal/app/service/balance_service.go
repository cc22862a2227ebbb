package service

import (
	"context"
	"math/big"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/client"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/pkg/metrics"
	"time_dividends/internal/pkg/utils"
)

// balanceServiceImpl implements port.BalanceService.
type balanceServiceImpl struct {
	indexer port.IndexingClient
	prices  port.TokenPriceService
	logger  port.Logger
	metrics metrics.Recorder
}

// NewBalanceService creates the indexer-backed balance reader.
func NewBalanceService(indexer port.IndexingClient, prices port.TokenPriceService, logger port.Logger, recorder metrics.Recorder) port.BalanceService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &balanceServiceImpl{
		indexer: indexer,
		prices:  prices,
		logger:  logger.With("component", "balance_service"),
		metrics: recorder,
	}
}

// FetchTokenBalance implements port.BalanceService.
func (s *balanceServiceImpl) FetchTokenBalance(ctx context.Context, address string, network entity.NetworkDescriptor) (*entity.TokenBalanceSnapshot, error) {
	start := time.Now()
	snapshot, err := s.fetch(ctx, address, network)

	result := "ok"
	switch {
	case err != nil:
		result = string(entity.KindOf(err))
	case snapshot == nil:
		result = "empty"
	}
	s.metrics.IncCounter(metrics.FetchTotal, map[string]string{"kind": "balance", "network": network.ID, "result": result})
	s.metrics.ObserveDuration(metrics.FetchDuration, time.Since(start), map[string]string{"kind": "balance", "network": network.ID})
	return snapshot, err
}

func (s *balanceServiceImpl) fetch(ctx context.Context, address string, network entity.NetworkDescriptor) (*entity.TokenBalanceSnapshot, error) {
	const op = "fetch token balance"
	if !s.indexer.IsInitialized() {
		return nil, entity.Errorf(entity.KindUnavailable, op, "indexing client is not initialized")
	}
	if address == "" {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "address is required")
	}
	if !client.IsValidChain(network.IndexerChain) {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "chain %q is not supported by the indexing API", network.IndexerChain)
	}
	if !network.HasToken() {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "no TIME token address for %s", network.ID)
	}

	resp, err := s.indexer.GetWalletTokenBalances(ctx, address, network.IndexerChain, []string{network.TokenAddress})
	if err != nil {
		s.logger.Warn("Token balance fetch failed", "network", network.ID, "address", address, "error", err)
		return nil, err
	}
	token, ok := resp.FindToken(network.TokenAddress)
	if !ok {
		s.logger.Debug("Wallet holds no TIME on network", "network", network.ID, "address", address)
		return nil, nil
	}

	amount, ok := new(big.Int).SetString(token.Balance, 10)
	if !ok {
		s.logger.Warn("Indexer returned a non-numeric balance", "network", network.ID, "balance", token.Balance)
		amount = big.NewInt(0)
	}

	price := token.UsdPrice
	if price == nil && s.prices != nil {
		if p, err := s.prices.FetchPriceUSD(ctx, network.IndexerChain, network.TokenAddress); err == nil && p > 0 {
			price = &p
		} else if err != nil {
			s.logger.Debug("No TIME price available", "network", network.ID, "error", err)
		}
	}
	value := token.UsdValue
	if value == nil {
		value = utils.CalculateValueUSD(amount, token.Decimals, price)
	}

	return &entity.TokenBalanceSnapshot{
		WalletAddress:     address,
		NetworkID:         network.ID,
		TokenAddress:      token.TokenAddress,
		Name:              token.Name,
		Symbol:            token.Symbol,
		Logo:              token.Logo,
		Decimals:          token.Decimals,
		RawBalance:        token.Balance,
		Amount:            amount,
		PriceUSD:          price,
		ValueUSD:          value,
		PossibleSpam:      token.PossibleSpam,
		VerifiedContract:  token.VerifiedContract,
		FormattedBalance:  utils.FormatTokenBalance(token.Balance, token.Decimals),
		FormattedValueUSD: utils.FormatUSDValue(value),
		FetchedAt:         time.Now().UTC(),
	}, nil
}

// BalanceDisplayFor returns the balance card strings. A nil snapshot shows "No Data".
func BalanceDisplayFor(snapshot *entity.TokenBalanceSnapshot) entity.BalanceDisplay {
	if snapshot == nil {
		return entity.BalanceDisplay{Amount: entity.NoDataLabel, Value: entity.NoDataLabel}
	}
	return entity.BalanceDisplay{Amount: snapshot.FormattedBalance, Value: snapshot.FormattedValueUSD}
}
