package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// yahooFinanceKey is the FINANCIAL_DATASETS_API_KEY value that selects Yahoo
// Finance as the data source.
const yahooFinanceKey = "yahoo-finance-api"

type Config struct {
	Vendor struct {
		Provider       string `yaml:"provider"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		UserAgent      string `yaml:"user_agent"`
		BaseURL        string `yaml:"base_url"`
		Kite           struct {
			APIKeyEnv      string `yaml:"api_key_env"`
			AccessTokenEnv string `yaml:"access_token_env"`
			Exchange       string `yaml:"exchange"`
		} `yaml:"kite"`
	} `yaml:"vendor"`
	News struct {
		Source   string `yaml:"source"`
		MaxItems int    `yaml:"max_items"`
	} `yaml:"news"`
	Adapter struct {
		Policy       string `yaml:"policy"`
		DefaultLimit int    `yaml:"default_limit"`
	} `yaml:"adapter"`
	Cache struct {
		Backend        string        `yaml:"backend"`
		TTL            time.Duration `yaml:"ttl"`
		Dir            string        `yaml:"dir"`
		SQLitePath     string        `yaml:"sqlite_path"`
		RedisAddr      string        `yaml:"redis_addr"`
		RedisPassword  string        `yaml:"redis_password"`
		RedisDB        int           `yaml:"redis_db"`
		PostgresDSNEnv string        `yaml:"postgres_dsn_env"`
	} `yaml:"cache"`
	Server struct {
		Addr                string   `yaml:"addr"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		CORSOrigins         []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Scheduler struct {
		CleanupCron string `yaml:"cleanup_cron"`
	} `yaml:"scheduler"`
}

// DefaultConfig returns a config usable without a file: Yahoo over HTTP, an
// in-memory cache and the degrade policy.
func DefaultConfig() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Vendor.Provider == "" {
		c.Vendor.Provider = "yahoo"
	}
	if c.Vendor.TimeoutSeconds == 0 {
		c.Vendor.TimeoutSeconds = 30
	}
	if c.Vendor.Kite.APIKeyEnv == "" {
		c.Vendor.Kite.APIKeyEnv = "KITE_API_KEY"
	}
	if c.Vendor.Kite.AccessTokenEnv == "" {
		c.Vendor.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	}
	if c.Vendor.Kite.Exchange == "" {
		c.Vendor.Kite.Exchange = "NSE"
	}
	if c.News.Source == "" {
		c.News.Source = "vendor"
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 20
	}
	if c.Adapter.Policy == "" {
		c.Adapter.Policy = "degrade"
	}
	if c.Adapter.DefaultLimit == 0 {
		c.Adapter.DefaultLimit = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "cache/market_data.db"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.PostgresDSNEnv == "" {
		c.Cache.PostgresDSNEnv = "DATABASE_URL"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 90
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Scheduler.CleanupCron == "" {
		c.Scheduler.CleanupCron = "0 0 * * * *"
	}
}

func (c *Config) Validate() error {
	switch c.Vendor.Provider {
	case "yahoo", "yfinance", "kite":
	default:
		return fmt.Errorf("invalid vendor.provider '%s': must be 'yahoo', 'yfinance' or 'kite'", c.Vendor.Provider)
	}
	if c.Vendor.TimeoutSeconds < 0 {
		return fmt.Errorf("vendor.timeout_seconds must be positive, got %d", c.Vendor.TimeoutSeconds)
	}
	if c.News.Source != "vendor" && c.News.Source != "scrape" {
		return fmt.Errorf("invalid news.source '%s': must be 'vendor' or 'scrape'", c.News.Source)
	}
	if c.Adapter.Policy != "degrade" && c.Adapter.Policy != "propagate" {
		return fmt.Errorf("invalid adapter.policy '%s': must be 'degrade' or 'propagate'", c.Adapter.Policy)
	}
	if c.Adapter.DefaultLimit < 0 {
		return fmt.Errorf("adapter.default_limit must be positive, got %d", c.Adapter.DefaultLimit)
	}
	switch c.Cache.Backend {
	case "memory", "file", "sqlite", "redis", "postgres":
	default:
		return fmt.Errorf("invalid cache.backend '%s': must be 'memory', 'file', 'sqlite', 'redis' or 'postgres'", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.Backend == "postgres" && os.Getenv(c.Cache.PostgresDSNEnv) == "" {
		return fmt.Errorf("cache.backend 'postgres' requires %s to be set", c.Cache.PostgresDSNEnv)
	}
	if c.Scheduler.CleanupCron == "" {
		return errors.New("scheduler.cleanup_cron cannot be empty")
	}
	return nil
}

// UsingYahooFinance reports whether the environment selects Yahoo Finance as
// the data source.
func UsingYahooFinance() bool {
	return strings.TrimSpace(os.Getenv("FINANCIAL_DATASETS_API_KEY")) == yahooFinanceKey
}

// Timeout returns the vendor request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Vendor.TimeoutSeconds) * time.Second
}

// LoadConfig reads path and applies defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()

	if UsingYahooFinance() {
		c.Vendor.Provider = "yahoo"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
