package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfigPath       = "CONFIG_PATH"
	EnvMoralisAPIKey    = "MORALIS_API_KEY"
	EnvWalletConnectID  = "WALLETCONNECT_PROJECT_ID"
	EnvSignerPrivateKey = "SIGNER_PRIVATE_KEY"
	EnvKeystorePassword = "SIGNER_KEYSTORE_PASSWORD"
)

// DefaultConfigPath is used when neither a flag nor CONFIG_PATH is given.
const DefaultConfigPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port" validate:"required,numeric"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds" validate:"gte=0"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds" validate:"gte=0"`
	AllowedOrigins      []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// IndexerConfig holds the token indexing API configuration.
type IndexerConfig struct {
	BaseURL              string  `yaml:"baseURL" validate:"omitempty,url"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis" validate:"gte=0"`
	RateLimit            float64 `yaml:"rateLimit" validate:"gte=0"`
	BurstLimit           int     `yaml:"burstLimit" validate:"gte=0"`
}

// WalletConfig holds the wallet session and signer configuration.
type WalletConfig struct {
	WalletConnectProjectID string `yaml:"walletConnectProjectId"`
	PrivateKey             string `yaml:"privateKey"`
	KeystorePath           string `yaml:"keystorePath"`
	KeystorePassword       string `yaml:"keystorePassword"`
	SessionTTLMinutes      int    `yaml:"sessionTTLMinutes" validate:"gte=0"`
}

// ContractConfig points at an optional ABI override for the TIME contract.
type ContractConfig struct {
	ABIPath string `yaml:"abiPath"`
}

// RpcClientConfig holds configuration for RPC clients.
type RpcClientConfig struct {
	DefaultTimeoutMs    int64   `yaml:"defaultTimeoutMs" validate:"gte=0"`
	ConnectionTimeoutMs int64   `yaml:"connectionTimeoutMs" validate:"gte=0"`
	RateLimit           float64 `yaml:"rateLimit" validate:"gte=0"`
	BurstLimit          int     `yaml:"burstLimit" validate:"gte=0"`
}

// TransactionConfig controls the confirm phase of claim and sweep.
type TransactionConfig struct {
	ConfirmTimeoutSeconds int   `yaml:"confirmTimeoutSeconds" validate:"gte=0"`
	ReceiptPollIntervalMs int64 `yaml:"receiptPollIntervalMs" validate:"gte=0"`
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
type TokenPriceServiceConfig struct {
	CacheTTLMinutes int  `yaml:"cacheTTLMinutes" validate:"gte=0"`
	MaxConcurrent   int  `yaml:"maxConcurrent" validate:"gte=0"`
	WarmOnStart     bool `yaml:"warmOnStart"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines" validate:"gte=0"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecPath string `yaml:"specPath"`
}

// ReportConfig holds the watchlist report settings.
type ReportConfig struct {
	WalletsFile string `yaml:"walletsFile"`
}

// NetworkOverride replaces fields of a built-in network. Empty fields keep the built-in value.
type NetworkOverride struct {
	ID              string   `yaml:"id" validate:"required"`
	RPCURL          string   `yaml:"rpcUrl" validate:"omitempty,url"`
	FallbackRPCURLs []string `yaml:"fallbackRpcUrls" validate:"dive,url"`
	TokenAddress    string   `yaml:"tokenAddress" validate:"omitempty,eth_addr"`
	ExplorerURL     string   `yaml:"explorerUrl" validate:"omitempty,url"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server         ServerConfig            `yaml:"server"`
	Logging        LoggingConfig           `yaml:"logging"`
	Indexer        IndexerConfig           `yaml:"indexer"`
	Wallet         WalletConfig            `yaml:"wallet"`
	Contract       ContractConfig          `yaml:"contract"`
	RpcClient      RpcClientConfig         `yaml:"rpcClient"`
	Transactions   TransactionConfig       `yaml:"transactions"`
	TokenPriceSvc  TokenPriceServiceConfig `yaml:"tokenPriceService"`
	Performance    PerformanceConfig       `yaml:"performance"`
	Swagger        SwaggerConfig           `yaml:"swagger"`
	Report         ReportConfig            `yaml:"report"`
	DefaultNetwork string                  `yaml:"defaultNetwork"`
	Networks       []NetworkOverride       `yaml:"networks" validate:"dive"`
}

// Load reads the YAML configuration file from the given path, applies env overrides and defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if err := finish(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to built-in defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logrus.Warnf("Config file %s not found, using defaults", path)
		cfg := &Config{}
		if err := finish(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// ResolvePath picks the config path: explicit flag, then CONFIG_PATH, then the default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultConfigPath
}

func finish(cfg *Config) error {
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := validator.New().Struct(cfg); err != nil {
		logrus.Errorf("Configuration validation failed: %v", err)
		return err
	}
	warnMissingSecrets(cfg)
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvMoralisAPIKey)); v != "" {
		cfg.Indexer.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWalletConnectID)); v != "" {
		cfg.Wallet.WalletConnectProjectID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSignerPrivateKey)); v != "" {
		cfg.Wallet.PrivateKey = v
	}
	if v := os.Getenv(EnvKeystorePassword); v != "" {
		cfg.Wallet.KeystorePassword = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		// claim/sweep requests wait for the receipt
		cfg.Server.WriteTimeoutSeconds = 240
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Indexer.BaseURL == "" {
		cfg.Indexer.BaseURL = "https://deep-index.moralis.io/api/v2.2"
		logrus.Infof("Indexer.BaseURL not set, defaulting to %s", cfg.Indexer.BaseURL)
	}
	if cfg.Indexer.RequestTimeoutMillis == 0 {
		cfg.Indexer.RequestTimeoutMillis = 10000
		logrus.Infof("Indexer.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Indexer.RequestTimeoutMillis)
	}
	if cfg.Indexer.RateLimit == 0 {
		cfg.Indexer.RateLimit = 5
	}
	if cfg.Indexer.BurstLimit == 0 {
		cfg.Indexer.BurstLimit = 10
	}

	if cfg.Wallet.SessionTTLMinutes == 0 {
		cfg.Wallet.SessionTTLMinutes = 120
	}

	if cfg.RpcClient.DefaultTimeoutMs == 0 {
		cfg.RpcClient.DefaultTimeoutMs = 15000
		logrus.Infof("RpcClient.DefaultTimeoutMs not set, defaulting to %d ms", cfg.RpcClient.DefaultTimeoutMs)
	}
	if cfg.RpcClient.ConnectionTimeoutMs == 0 {
		cfg.RpcClient.ConnectionTimeoutMs = 10000
	}
	if cfg.RpcClient.RateLimit == 0 {
		cfg.RpcClient.RateLimit = 20
	}
	if cfg.RpcClient.BurstLimit == 0 {
		cfg.RpcClient.BurstLimit = 40
	}

	if cfg.Transactions.ConfirmTimeoutSeconds == 0 {
		cfg.Transactions.ConfirmTimeoutSeconds = 180
	}
	if cfg.Transactions.ReceiptPollIntervalMs == 0 {
		cfg.Transactions.ReceiptPollIntervalMs = 2000
	}

	if cfg.TokenPriceSvc.CacheTTLMinutes == 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 5
		logrus.Infof("CacheTTLMinutes for TokenPriceSvc not set, defaulting to %d minutes", cfg.TokenPriceSvc.CacheTTLMinutes)
	}
	if cfg.TokenPriceSvc.MaxConcurrent == 0 {
		cfg.TokenPriceSvc.MaxConcurrent = 4
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Swagger.SpecPath == "" {
		cfg.Swagger.SpecPath = "./docs/swagger.yaml"
	}
	if cfg.Report.WalletsFile == "" {
		cfg.Report.WalletsFile = "data/wallets.txt"
	}
	if cfg.DefaultNetwork == "" {
		cfg.DefaultNetwork = "ethereum"
	}
}

func warnMissingSecrets(cfg *Config) {
	if cfg.Indexer.APIKey == "" {
		logrus.Warnf("%s is not set, token balances will be unavailable", EnvMoralisAPIKey)
	}
	if cfg.Wallet.WalletConnectProjectID == "" {
		logrus.Warnf("%s is not set, browser wallet connection will be unavailable", EnvWalletConnectID)
	}
	if cfg.Wallet.PrivateKey == "" && cfg.Wallet.KeystorePath == "" {
		logrus.Warn("No signer configured, claim and sweep will be refused")
	}
}
