// Package bootstrap wires the services of the process together.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"time_dividends/internal/app/port"
	"time_dividends/internal/app/service"
	"time_dividends/internal/client"
	"time_dividends/internal/infrastructure/abiloader"
	"time_dividends/internal/infrastructure/configloader"
	"time_dividends/internal/infrastructure/eventhub"
	clientprovider "time_dividends/internal/infrastructure/network/client"
	networkdefinition "time_dividends/internal/infrastructure/network/definition"
	"time_dividends/internal/infrastructure/wallet"
	"time_dividends/internal/infrastructure/walletloader"
	"time_dividends/internal/pkg/logger"
	"time_dividends/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const metricsNamespace = "time_dividends"

// Container holds every long-lived component. Build it once with New and release it with Close.
type Container struct {
	Config   *configloader.Config
	Logger   port.Logger
	Registry *prometheus.Registry

	ContractABI *abi.ABI
	Networks    port.NetworkDefinitionProvider
	Clients     port.ContractClientProvider
	Indexer     port.IndexingClient
	Wallet      *wallet.Adapter
	Hub         *eventhub.Hub

	Prices       port.TokenPriceService
	Balances     port.BalanceService
	Dividends    port.DividendService
	Selector     *service.NetworkSelector
	Coordinator  *service.FetchCoordinator
	Transactions *service.TransactionOrchestrator
	Estimator    *service.EarningsEstimator
	Reports      *service.ReportService
}

// New builds the container. zapLogger is used by the HTTP clients that log through zap directly.
func New(ctx context.Context, cfg *configloader.Config, zapLogger *zap.Logger) (*Container, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	appLogger := logger.NewSlogAdapter()
	c := &Container{Config: cfg, Logger: appLogger}

	networks, err := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Networks, cfg.DefaultNetwork)
	if err != nil {
		return nil, fmt.Errorf("networks: %w", err)
	}
	c.Networks = networks

	contractABI, err := abiloader.NewABILoader(cfg.Contract.ABIPath, appLogger.Info, appLogger.Warn).LoadContractABI()
	if err != nil {
		return nil, fmt.Errorf("contract ABI: %w", err)
	}
	c.ContractABI = contractABI

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewPrometheusRecorder(metricsNamespace, c.Registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	c.Clients = clientprovider.NewEVMClientProvider(cfg, appLogger)

	var indexerLimiter *rate.Limiter
	if cfg.Indexer.RateLimit > 0 {
		indexerLimiter = rate.NewLimiter(rate.Limit(cfg.Indexer.RateLimit), max(cfg.Indexer.BurstLimit, 1))
	}
	c.Indexer = client.NewMoralisClient(
		cfg.Indexer.BaseURL,
		time.Duration(cfg.Indexer.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		indexerLimiter,
	)
	if cfg.Indexer.APIKey != "" {
		if err := c.Indexer.Initialize(cfg.Indexer.APIKey); err != nil {
			return nil, fmt.Errorf("indexer: %w", err)
		}
	} else {
		appLogger.Warn("Indexing API key missing, balance lookups are unavailable")
	}

	signer, err := buildSigner(cfg.Wallet)
	if err != nil {
		return nil, err
	}
	c.Wallet = wallet.NewAdapter(
		time.Duration(cfg.Wallet.SessionTTLMinutes)*time.Minute,
		cfg.Wallet.WalletConnectProjectID,
		signer,
		networks,
		c.Clients,
		appLogger,
	)
	c.Hub = eventhub.New(16, appLogger)

	c.Prices = service.NewTokenPriceService(
		c.Indexer,
		networks,
		appLogger,
		time.Duration(cfg.TokenPriceSvc.CacheTTLMinutes)*time.Minute,
		cfg.TokenPriceSvc.MaxConcurrent,
	)
	c.Balances = service.NewBalanceService(c.Indexer, c.Prices, appLogger, recorder)
	c.Dividends = service.NewDividendService(c.Clients, contractABI, appLogger, recorder)
	c.Selector = service.NewNetworkSelector(networks, c.Wallet, appLogger)
	c.Coordinator = service.NewFetchCoordinator(c.Selector, c.Balances, c.Dividends, c.Hub, appLogger, recorder)
	c.Transactions = service.NewTransactionOrchestrator(
		c.Wallet,
		networks,
		c.Clients,
		contractABI,
		c.Coordinator,
		appLogger,
		recorder,
		time.Duration(cfg.Transactions.ConfirmTimeoutSeconds)*time.Second,
	)
	c.Estimator = service.NewEarningsEstimator(networks, c.Prices, appLogger)
	c.Reports = service.NewReportService(
		walletloader.NewWalletFileLoader(cfg.Report.WalletsFile, appLogger.Info),
		networks,
		c.Dividends,
		appLogger,
		cfg.Performance.MaxConcurrentRoutines,
	)

	if cfg.TokenPriceSvc.WarmOnStart {
		if err := c.Prices.LoadAndCacheTokenPrices(ctx); err != nil {
			appLogger.Warn("TIME price warmup failed, prices will be fetched on demand", "error", err)
		}
	}

	appLogger.Info("Container initialized",
		"networks", len(networks.GetAllNetworkDefinitions()),
		"default_network", networks.DefaultNetwork().ID,
		"indexer", c.Indexer.IsInitialized(),
		"signer", c.Wallet.SignerAddress())
	return c, nil
}

// buildSigner prefers the raw private key over the keystore. No signer is not an error.
func buildSigner(cfg configloader.WalletConfig) (port.TransactionSigner, error) {
	switch {
	case cfg.PrivateKey != "":
		s, err := wallet.NewKeySigner(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("signer: %w", err)
		}
		return s, nil
	case cfg.KeystorePath != "":
		s, err := wallet.NewKeystoreSigner(cfg.KeystorePath, cfg.KeystorePassword)
		if err != nil {
			return nil, fmt.Errorf("signer: %w", err)
		}
		return s, nil
	default:
		return nil, nil
	}
}

// Close releases network clients.
func (c *Container) Close() {
	if c.Clients != nil {
		c.Clients.Close()
	}
	if c.Indexer != nil {
		c.Indexer.Close()
	}
	c.Logger.Info("Container closed")
}
