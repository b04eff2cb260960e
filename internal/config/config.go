package config

import (
	"fmt"
	"math"
	"os"

	"wallet_history/internal/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// EnvRPC overrides solana.rpcURL.
	EnvRPC = "RPC"
	// EnvCoingeckoAPIKey overrides coinGecko.apiKey.
	EnvCoingeckoAPIKey = "COINGECKO_API_KEY"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server        ServerConfig            `yaml:"server"`
	Solana        SolanaConfig            `yaml:"solana"`
	CoinGecko     CoinGeckoConfig         `yaml:"coinGecko"`
	Jupiter       JupiterConfig           `yaml:"jupiter"`
	TokenPriceSvc TokenPriceServiceConfig `yaml:"tokenPriceService"`
	Tokens        TokensConfig            `yaml:"tokens"`
	Chart         ChartConfig             `yaml:"chart"`
	Logging       LoggingConfig           `yaml:"logging"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string   `yaml:"port"`
	ReadTimeout  int      `yaml:"readTimeout"`
	WriteTimeout int      `yaml:"writeTimeout"`
	IdleTimeout  int      `yaml:"idleTimeout"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// SolanaConfig holds configuration for the Solana JSON-RPC client and the transaction fetcher.
type SolanaConfig struct {
	RPCURL               string `yaml:"rpcURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	SignaturePageLimit   int    `yaml:"signaturePageLimit"`
	TransactionBatchSize int    `yaml:"transactionBatchSize"`
	MaxConcurrentBatches int    `yaml:"maxConcurrentBatches"`
	RateLimit            int    `yaml:"rateLimit"`
	BurstLimit           int    `yaml:"burstLimit"`
	MaxRetries           int    `yaml:"maxRetries"`
	RetryDelayMs         int64  `yaml:"retryDelayMs"`
	MaxIdleConnsPerHost  int    `yaml:"maxIdleConnsPerHost"`
}

// CoinGeckoConfig holds the configuration for the CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL               string `yaml:"baseURL"`
	ApiKey                string `yaml:"apiKey"`
	RequestTimeoutMillis  int64  `yaml:"requestTimeoutMillis"`
	VsCurrency            string `yaml:"vsCurrency"`
	MaxConcurrentRequests int    `yaml:"maxConcurrentRequests"`
}

// JupiterConfig holds the configuration for the Jupiter quote client.
type JupiterConfig struct {
	BaseURL              string `yaml:"baseURL"`
	QuoteMint            string `yaml:"quoteMint"`
	QuoteDecimals        uint8  `yaml:"quoteDecimals"`
	SlippageBps          int    `yaml:"slippageBps"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds configuration for the live price cache.
type TokenPriceServiceConfig struct {
	CacheTTLMinutes        int `yaml:"cacheTTLMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// TokensConfig points at the mint registry (mint -> coingecko id, name, symbol).
type TokensConfig struct {
	RegistryFile string `yaml:"registryFile"`
}

// ChartConfig bounds chart requests.
type ChartConfig struct {
	MaxHourlyRange        int `yaml:"maxHourlyRange"`
	RequestTimeoutSeconds int `yaml:"requestTimeoutSeconds"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a YAML file, applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
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

	applyEnv(&cfg)
	applyDefaults(&cfg)

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if rpc, ok := os.LookupEnv(EnvRPC); ok && rpc != "" {
		cfg.Solana.RPCURL = rpc
		logrus.Infof("Solana.RPCURL overridden by %s", EnvRPC)
	}
	if key, ok := os.LookupEnv(EnvCoingeckoAPIKey); ok && key != "" {
		cfg.CoinGecko.ApiKey = key
		logrus.Infof("CoinGecko.ApiKey overridden by %s", EnvCoingeckoAPIKey)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		// chart requests walk the whole history, keep the write timeout above the chart timeout
		cfg.Server.WriteTimeout = 130
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Solana.RPCURL == "" {
		cfg.Solana.RPCURL = entity.DefaultRPCURL
		logrus.Infof("Solana.RPCURL not set, defaulting to %s", cfg.Solana.RPCURL)
	}
	if cfg.Solana.RequestTimeoutMillis == 0 {
		cfg.Solana.RequestTimeoutMillis = 30000
		logrus.Infof("Solana.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Solana.RequestTimeoutMillis)
	}
	if cfg.Solana.SignaturePageLimit == 0 {
		cfg.Solana.SignaturePageLimit = 1000
		logrus.Infof("Solana.SignaturePageLimit not set, defaulting to %d", cfg.Solana.SignaturePageLimit)
	}
	if cfg.Solana.TransactionBatchSize == 0 {
		cfg.Solana.TransactionBatchSize = 900
		logrus.Infof("Solana.TransactionBatchSize not set, defaulting to %d", cfg.Solana.TransactionBatchSize)
	}
	if cfg.Solana.MaxConcurrentBatches == 0 {
		cfg.Solana.MaxConcurrentBatches = 4
		logrus.Infof("Solana.MaxConcurrentBatches not set, defaulting to %d", cfg.Solana.MaxConcurrentBatches)
	}
	if cfg.Solana.RateLimit == 0 {
		cfg.Solana.RateLimit = 10
		logrus.Infof("Solana.RateLimit not set, defaulting to %d batches/s", cfg.Solana.RateLimit)
	}
	if cfg.Solana.BurstLimit == 0 {
		cfg.Solana.BurstLimit = cfg.Solana.MaxConcurrentBatches
		logrus.Infof("Solana.BurstLimit not set, defaulting to %d", cfg.Solana.BurstLimit)
	}
	if cfg.Solana.MaxRetries == 0 {
		cfg.Solana.MaxRetries = 3
		logrus.Infof("Solana.MaxRetries not set, defaulting to %d attempts", cfg.Solana.MaxRetries)
	}
	if cfg.Solana.RetryDelayMs == 0 {
		cfg.Solana.RetryDelayMs = 1000
	}
	if cfg.Solana.MaxIdleConnsPerHost == 0 {
		cfg.Solana.MaxIdleConnsPerHost = 64
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.RequestTimeoutMillis == 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
		logrus.Infof("CoinGecko.RequestTimeoutMillis not set, defaulting to %d ms", cfg.CoinGecko.RequestTimeoutMillis)
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}
	if cfg.CoinGecko.MaxConcurrentRequests == 0 {
		cfg.CoinGecko.MaxConcurrentRequests = 4
	}

	if cfg.Jupiter.BaseURL == "" {
		cfg.Jupiter.BaseURL = "https://quote-api.jup.ag/v6"
		logrus.Infof("Jupiter.BaseURL not set, defaulting to %s", cfg.Jupiter.BaseURL)
	}
	if cfg.Jupiter.QuoteMint == "" {
		cfg.Jupiter.QuoteMint = entity.USDCMint
		cfg.Jupiter.QuoteDecimals = 6
		logrus.Infof("Jupiter.QuoteMint not set, defaulting to USDC (%s)", cfg.Jupiter.QuoteMint)
	}
	if cfg.Jupiter.SlippageBps == 0 {
		cfg.Jupiter.SlippageBps = 50
	}
	if cfg.Jupiter.RequestTimeoutMillis == 0 {
		cfg.Jupiter.RequestTimeoutMillis = 10000
		logrus.Infof("Jupiter.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Jupiter.RequestTimeoutMillis)
	}

	if cfg.TokenPriceSvc.CacheTTLMinutes == 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 1
		logrus.Infof("CacheTTLMinutes for TokenPriceSvc not set, defaulting to %d minutes", cfg.TokenPriceSvc.CacheTTLMinutes)
	}
	if cfg.TokenPriceSvc.CleanupIntervalMinutes == 0 {
		cfg.TokenPriceSvc.CleanupIntervalMinutes = 10
	}

	if cfg.Tokens.RegistryFile == "" {
		cfg.Tokens.RegistryFile = "data/tokens/solana.json"
		logrus.Infof("Tokens.RegistryFile not set, defaulting to %s", cfg.Tokens.RegistryFile)
	}

	if cfg.Chart.MaxHourlyRange == 0 {
		cfg.Chart.MaxHourlyRange = 24 * 7
		logrus.Infof("Chart.MaxHourlyRange not set, defaulting to %d hours", cfg.Chart.MaxHourlyRange)
	}
	// chart ranges are parsed as uint8
	if cfg.Chart.MaxHourlyRange > math.MaxUint8 {
		logrus.Warnf("Chart.MaxHourlyRange %d exceeds %d, clamping", cfg.Chart.MaxHourlyRange, math.MaxUint8)
		cfg.Chart.MaxHourlyRange = math.MaxUint8
	}
	if cfg.Chart.RequestTimeoutSeconds == 0 {
		cfg.Chart.RequestTimeoutSeconds = 120
		logrus.Infof("Chart.RequestTimeoutSeconds not set, defaulting to %d s", cfg.Chart.RequestTimeoutSeconds)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
