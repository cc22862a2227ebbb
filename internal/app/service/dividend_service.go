package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/infrastructure/abiloader"
	"time_dividends/internal/pkg/metrics"
	"time_dividends/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// dividendServiceImpl implements port.DividendService.
type dividendServiceImpl struct {
	clients     port.ContractClientProvider
	contractABI *abi.ABI
	logger      port.Logger
	metrics     metrics.Recorder
}

// NewDividendService creates a new dividend reader.
func NewDividendService(clients port.ContractClientProvider, contractABI *abi.ABI, logger port.Logger, recorder metrics.Recorder) port.DividendService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &dividendServiceImpl{
		clients:     clients,
		contractABI: contractABI,
		logger:      logger.With("component", "dividend_service"),
		metrics:     recorder,
	}
}

// errContractNotDeployed builds the error shown when a network has no TIME contract.
func errContractNotDeployed(networkID string) error {
	return &entity.ServiceError{
		Kind:    entity.KindInvalidInput,
		Op:      "dividends",
		Message: fmt.Sprintf("TIME contract not deployed on %s", networkID),
	}
}

// FetchDividendData reads claimable, claimed, balance and decimals in parallel.
func (s *dividendServiceImpl) FetchDividendData(ctx context.Context, address string, network entity.NetworkDescriptor) (*entity.DividendSnapshot, error) {
	start := time.Now()
	snapshot, err := s.fetch(ctx, address, network)

	result := "ok"
	if err != nil {
		result = string(entity.KindOf(err))
	}
	s.metrics.IncCounter(metrics.FetchTotal, map[string]string{"kind": "dividends", "network": network.ID, "result": result})
	s.metrics.ObserveDuration(metrics.FetchDuration, time.Since(start), map[string]string{"kind": "dividends", "network": network.ID})
	return snapshot, err
}

func (s *dividendServiceImpl) fetch(ctx context.Context, address string, network entity.NetworkDescriptor) (*entity.DividendSnapshot, error) {
	if !network.HasToken() {
		return nil, errContractNotDeployed(network.ID)
	}
	if !common.IsHexAddress(address) {
		return nil, entity.Errorf(entity.KindInvalidInput, "dividends", "invalid address %q", address)
	}

	client, err := s.clients.GetClient(network)
	if err != nil {
		return nil, err
	}

	user := common.HexToAddress(address)
	contract := common.HexToAddress(network.TokenAddress)

	var (
		claimable, claimed, balance *big.Int
		decimals                    uint8
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := readUint256(gctx, client, s.contractABI, contract, abiloader.MethodClaimableDividendOf, user)
		claimable = v
		return err
	})
	g.Go(func() error {
		v, err := readUint256(gctx, client, s.contractABI, contract, abiloader.MethodCumulativeDividendClaimed, user)
		claimed = v
		return err
	})
	g.Go(func() error {
		v, err := readUint256(gctx, client, s.contractABI, contract, abiloader.MethodBalanceOf, user)
		balance = v
		return err
	})
	g.Go(func() error {
		v, err := readUint8(gctx, client, s.contractABI, contract, abiloader.MethodDecimals)
		decimals = v
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Dividend read failed", "network", network.ID, "address", address, "error", err)
		return nil, err
	}

	return &entity.DividendSnapshot{
		WalletAddress:         user.Hex(),
		NetworkID:             network.ID,
		ContractAddress:       contract.Hex(),
		ClaimableDividend:     claimable,
		TotalDividendsClaimed: claimed,
		TokenBalance:          balance,
		Decimals:              decimals,
		FetchedAt:             time.Now().UTC(),
	}, nil
}

func readUint256(ctx context.Context, client port.ContractClient, contractABI *abi.ABI, contract common.Address, method string, args ...interface{}) (*big.Int, error) {
	out, err := client.ReadContract(ctx, entity.ContractCall{Address: contract, ABI: contractABI, Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, entity.Errorf(entity.KindUnknown, "read "+method, "no output")
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, entity.Errorf(entity.KindUnknown, "read "+method, "unexpected output type %T", out[0])
	}
	return v, nil
}

func readUint8(ctx context.Context, client port.ContractClient, contractABI *abi.ABI, contract common.Address, method string) (uint8, error) {
	out, err := client.ReadContract(ctx, entity.ContractCall{Address: contract, ABI: contractABI, Method: method})
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, entity.Errorf(entity.KindUnknown, "read "+method, "no output")
	}
	v, ok := out[0].(uint8)
	if !ok {
		return 0, entity.Errorf(entity.KindUnknown, "read "+method, "unexpected output type %T", out[0])
	}
	return v, nil
}

// DividendDisplayFor formats a snapshot for display. A nil snapshot shows zeros and no flags.
func DividendDisplayFor(snapshot *entity.DividendSnapshot) entity.DividendDisplay {
	if snapshot == nil {
		return entity.DividendDisplay{
			ClaimableAmount: "0",
			TotalClaimed:    "0",
			TokenBalance:    "0",
		}
	}
	return entity.DividendDisplay{
		ClaimableAmount: utils.FormatDividendAmount(snapshot.ClaimableDividend, snapshot.Decimals),
		TotalClaimed:    utils.FormatDividendAmount(snapshot.TotalDividendsClaimed, snapshot.Decimals),
		TokenBalance:    utils.FormatDividendAmount(snapshot.TokenBalance, snapshot.Decimals),
		HasDividends:    utils.IsPositive(snapshot.ClaimableDividend),
		HasTokens:       utils.IsPositive(snapshot.TokenBalance),
	}
}
