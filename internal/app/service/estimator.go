package service

import (
	"context"
	"errors"
	"strings"

	"time_dividends/internal/app/port"
	"time_dividends/internal/domain/entity"
	"time_dividends/internal/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// TimeTotalSupply is the circulating TIME supply used for ownership share.
const TimeTotalSupply = 1993069172.79

const defaultFeeRate = 0.0001

// feeRates is the share of trading volume distributed as dividends, per network.
var feeRates = map[string]float64{
	"pulsechain": 0.0001,
	"ethereum":   0.00008,
	"bnb":        0.00009,
	"polygon":    0.00007,
	"arbitrum":   0.00006,
	"avalanche":  0.00008,
	"base":       0.00005,
}

// FeeRate returns the dividend fee rate of a network.
func FeeRate(networkID string) float64 {
	if rate, ok := feeRates[networkID]; ok {
		return rate
	}
	return defaultFeeRate
}

// EarningsEstimator projects dividend income from a TIME position and a trading volume.
type EarningsEstimator struct {
	networks port.NetworkDefinitionProvider
	prices   port.TokenPriceService
	logger   port.Logger
	validate *validator.Validate
}

// NewEarningsEstimator creates an EarningsEstimator. prices may be nil.
func NewEarningsEstimator(networks port.NetworkDefinitionProvider, prices port.TokenPriceService, logger port.Logger) *EarningsEstimator {
	return &EarningsEstimator{
		networks: networks,
		prices:   prices,
		logger:   logger.With("component", "earnings_estimator"),
		validate: validator.New(),
	}
}

// Estimate computes the fee share for req.Period. The USD value is filled only when a TIME price is known.
func (e *EarningsEstimator) Estimate(ctx context.Context, req entity.EstimateRequest) (*entity.EarningsEstimate, error) {
	const op = "estimate"
	if req.Period == "" {
		req.Period = entity.PeriodDaily
	}
	if err := e.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, entity.Errorf(entity.KindInvalidInput, op, "invalid fields: %s", strings.Join(fields, ", "))
		}
		return nil, entity.NewServiceError(entity.KindInvalidInput, op, err)
	}

	network, ok := e.networks.GetNetworkDefinitionByName(req.NetworkID)
	if !ok {
		return nil, entity.Errorf(entity.KindInvalidInput, op, "unknown network %q", req.NetworkID)
	}

	feeRate := FeeRate(network.ID)
	share := req.TimeAmount / TimeTotalSupply
	dailyFees := req.DailyVolume * feeRate * share
	periodFees := dailyFees * req.Period.Days()

	estimate := &entity.EarningsEstimate{
		NetworkID:      network.ID,
		Symbol:         network.Symbol,
		Period:         req.Period,
		FeeRate:        feeRate,
		TotalSupply:    TimeTotalSupply,
		OwnershipShare: share,
		DailyFees:      dailyFees,
		PeriodEarnings: utils.FormatFloat(periodFees, 8),
		ValueUSD:       utils.FormatUSDValue(nil),
	}

	if e.prices != nil && network.HasToken() {
		price, err := e.prices.FetchPriceUSD(ctx, network.IndexerChain, network.TokenAddress)
		if err != nil {
			e.logger.Debug("No TIME price for estimate", "network", network.ID, "error", err)
		} else {
			value := periodFees * price
			estimate.ValueUSD = utils.FormatUSDValue(&value)
		}
	}
	return estimate, nil
}
