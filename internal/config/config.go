// Package config defines the top-level configuration for the arbitrage bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SOLARB_* environment variables.
type Config struct {
	Bot      BotConfig      `toml:"bot"`
	Wallet   WalletConfig   `toml:"wallet"`
	Jupiter  JupiterConfig  `toml:"jupiter"`
	Solana   SolanaConfig   `toml:"solana"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// BotConfig holds the default trading pair and engine parameters. In "auto"
// mode the engine is started from this section at boot; in "server" mode it
// seeds the stored configuration the API exposes.
type BotConfig struct {
	Name            string  `toml:"name"`
	TokenASymbol    string  `toml:"token_a_symbol"`
	TokenAMint      string  `toml:"token_a_mint"`
	TokenADecimals  int     `toml:"token_a_decimals"`
	TokenBSymbol    string  `toml:"token_b_symbol"`
	TokenBMint      string  `toml:"token_b_mint"`
	TokenBDecimals  int     `toml:"token_b_decimals"`
	ProfitThreshold float64 `toml:"profit_threshold"`
	MaxTradeAmount  uint64  `toml:"max_trade_amount"`
	ScanIntervalSec int     `toml:"scan_interval_sec"`
	SlippageBps     int     `toml:"slippage_bps"`
	MockMode        bool    `toml:"mock_mode"`
}

// WalletConfig holds the Solana trading credential. PrivateKey accepts either
// a base58-encoded secret key or a bracketed JSON numeric array (the solana
// keygen file format).
type WalletConfig struct {
	PrivateKey string `toml:"private_key"`
}

// JupiterConfig holds the quote aggregator endpoints.
type JupiterConfig struct {
	Host           string `toml:"host"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SolanaConfig holds the RPC endpoint and confirmation parameters.
type SolanaConfig struct {
	RPCEndpoint       string `toml:"rpc_endpoint"`
	ConfirmTimeoutSec int    `toml:"confirm_timeout_sec"`
	ConfirmPollMs     int    `toml:"confirm_poll_ms"`
	SkipPreflight     bool   `toml:"skip_preflight"`
}

// DatabaseConfig holds the PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the signal bus.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the archiver.
// Leave Bucket empty to disable archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	RetentionDays  int    `toml:"retention_days"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Bot: BotConfig{
			Name:            "sol-usdc",
			TokenASymbol:    "SOL",
			TokenAMint:      "So11111111111111111111111111111111111111112",
			TokenADecimals:  9,
			TokenBSymbol:    "USDC",
			TokenBMint:      "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			TokenBDecimals:  6,
			ProfitThreshold: 0.5,
			MaxTradeAmount:  100_000_000, // 0.1 SOL
			ScanIntervalSec: 10,
			SlippageBps:     50,
			MockMode:        true,
		},
		Jupiter: JupiterConfig{
			Host:           "https://quote-api.jup.ag",
			TimeoutSeconds: 10,
		},
		Solana: SolanaConfig{
			RPCEndpoint:       "https://api.mainnet-beta.solana.com",
			ConfirmTimeoutSec: 60,
			ConfirmPollMs:     500,
			SkipPreflight:     false,
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "solarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Region:         "us-east-1",
			UseSSL:         true,
			ForcePathStyle: true,
			RetentionDays:  90,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"trade_completed", "trade_failed", "bot_stopped"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"auto":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, auto)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Bot pair parameters.
	if c.Bot.TokenAMint == "" {
		errs = append(errs, "bot: token_a_mint must not be empty")
	}
	if c.Bot.TokenBMint == "" {
		errs = append(errs, "bot: token_b_mint must not be empty")
	}
	if c.Bot.TokenAMint != "" && c.Bot.TokenAMint == c.Bot.TokenBMint {
		errs = append(errs, "bot: token_a_mint and token_b_mint must differ")
	}
	if c.Bot.TokenADecimals < 0 || c.Bot.TokenADecimals > 18 {
		errs = append(errs, fmt.Sprintf("bot: token_a_decimals must be 0-18, got %d", c.Bot.TokenADecimals))
	}
	if c.Bot.TokenBDecimals < 0 || c.Bot.TokenBDecimals > 18 {
		errs = append(errs, fmt.Sprintf("bot: token_b_decimals must be 0-18, got %d", c.Bot.TokenBDecimals))
	}
	if c.Bot.ProfitThreshold <= 0 {
		errs = append(errs, "bot: profit_threshold must be > 0")
	}
	if c.Bot.MaxTradeAmount == 0 {
		errs = append(errs, "bot: max_trade_amount must be > 0")
	}
	if c.Bot.ScanIntervalSec < 1 {
		errs = append(errs, fmt.Sprintf("bot: scan_interval_sec must be >= 1, got %d", c.Bot.ScanIntervalSec))
	}
	if c.Bot.SlippageBps < 0 || c.Bot.SlippageBps > 10_000 {
		errs = append(errs, fmt.Sprintf("bot: slippage_bps must be 0-10000, got %d", c.Bot.SlippageBps))
	}

	// Live trading needs a credential.
	if !c.Bot.MockMode && c.Wallet.PrivateKey == "" {
		errs = append(errs, "wallet: private_key is required when bot.mock_mode is false")
	}

	if c.Jupiter.Host == "" {
		errs = append(errs, "jupiter: host must not be empty")
	}
	if c.Solana.RPCEndpoint == "" {
		errs = append(errs, "solana: rpc_endpoint must not be empty")
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 || c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must be 0..pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 is optional, but when a bucket is configured the rest must be sane.
	if c.S3.Bucket != "" {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when bucket is set")
		}
		if c.S3.RetentionDays < 1 {
			errs = append(errs, "s3: retention_days must be >= 1 when bucket is set")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
