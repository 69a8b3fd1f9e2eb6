package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/luxfi/safehash/pkg/common/pathutil"
	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/types"
)

// Config is the process configuration, read from config.yaml and
// SAFEHASH_* environment variables.
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	SafeAPI     SafeAPIConfig  `mapstructure:"safe_api"`
	Explorer    ExplorerConfig `mapstructure:"explorer"`
	Cache       CacheConfig    `mapstructure:"cache"`
	NATS        NATSConfig     `mapstructure:"nats"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
	// RateLimit is requests per minute per client IP.
	RateLimit      int      `mapstructure:"rate_limit"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SafeAPIConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts uint          `mapstructure:"attempts"`
	// RetryDelay is the first backoff interval; it doubles per attempt.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// TxServiceURLs overrides the Safe Transaction Service base URL per network.
	TxServiceURLs map[string]string `mapstructure:"tx_service_urls"`
}

type ExplorerConfig struct {
	// APIKeys holds the Etherscan-compatible API key per network.
	APIKeys map[string]string `mapstructure:"api_keys"`
}

type CacheConfig struct {
	// Path of the ABI cache; empty keeps it in memory.
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
	// BackupDir enables periodic cache snapshots when set.
	BackupDir    string        `mapstructure:"backup_dir"`
	BackupPeriod time.Duration `mapstructure:"backup_period"`
	BackupKeep   int           `mapstructure:"backup_keep"`
}

type NATSConfig struct {
	// URL is empty when result publishing is disabled.
	URL      string `mapstructure:"url"`
	Subject  string `mapstructure:"subject"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.rate_limit", 120)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("safe_api.timeout", "10s")
	viper.SetDefault("safe_api.attempts", 3)
	viper.SetDefault("safe_api.retry_delay", "250ms")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.backup_period", "1h")
	viper.SetDefault("cache.backup_keep", 24)
	viper.SetDefault("nats.subject", "safehash.results")
}

// InitViperConfig wires config file lookup, env overrides and defaults into
// the global viper instance. A missing config file is not an error.
func InitViperConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.safehash")
	viper.SetEnvPrefix("SAFEHASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Fatal("Failed to read config file", err)
		}
		logger.Debug("No config file found, using defaults and environment")
		return
	}
	logger.Debug("Loaded config file", "path", viper.ConfigFileUsed())
}

// Load decodes the current viper settings into a Config and validates it.
func Load() (*Config, error) {
	return decode(viper.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.SafeAPI.Attempts == 0 {
		return errors.New("safe_api.attempts must be at least 1")
	}
	if c.SafeAPI.Timeout <= 0 {
		return errors.New("safe_api.timeout must be positive")
	}
	for _, p := range []string{c.Cache.Path, c.Cache.BackupDir} {
		if err := pathutil.ValidateFilePath(p); err != nil {
			return err
		}
	}
	if c.Cache.BackupDir != "" && c.Cache.BackupPeriod <= 0 {
		return errors.New("cache.backup_period must be positive")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	for network := range c.SafeAPI.TxServiceURLs {
		if !types.IsNetworkSupported(network) {
			return fmt.Errorf("safe_api.tx_service_urls: unknown network %q", network)
		}
	}
	for network := range c.Explorer.APIKeys {
		if !types.IsNetworkSupported(network) {
			return fmt.Errorf("explorer.api_keys: unknown network %q", network)
		}
	}
	return nil
}
