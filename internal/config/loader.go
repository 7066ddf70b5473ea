package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SOLARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SOLARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Bot ──
	setStr(&cfg.Bot.Name, "SOLARB_BOT_NAME")
	setStr(&cfg.Bot.TokenASymbol, "SOLARB_BOT_TOKEN_A_SYMBOL")
	setStr(&cfg.Bot.TokenAMint, "SOLARB_BOT_TOKEN_A_MINT")
	setInt(&cfg.Bot.TokenADecimals, "SOLARB_BOT_TOKEN_A_DECIMALS")
	setStr(&cfg.Bot.TokenBSymbol, "SOLARB_BOT_TOKEN_B_SYMBOL")
	setStr(&cfg.Bot.TokenBMint, "SOLARB_BOT_TOKEN_B_MINT")
	setInt(&cfg.Bot.TokenBDecimals, "SOLARB_BOT_TOKEN_B_DECIMALS")
	setFloat64(&cfg.Bot.ProfitThreshold, "SOLARB_BOT_PROFIT_THRESHOLD")
	setUint64(&cfg.Bot.MaxTradeAmount, "SOLARB_BOT_MAX_TRADE_AMOUNT")
	setInt(&cfg.Bot.ScanIntervalSec, "SOLARB_BOT_SCAN_INTERVAL_SEC")
	setInt(&cfg.Bot.SlippageBps, "SOLARB_BOT_SLIPPAGE_BPS")
	setBool(&cfg.Bot.MockMode, "SOLARB_BOT_MOCK_MODE")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "SOLARB_WALLET_PRIVATE_KEY")

	// ── Jupiter ──
	setStr(&cfg.Jupiter.Host, "SOLARB_JUPITER_HOST")
	setInt(&cfg.Jupiter.TimeoutSeconds, "SOLARB_JUPITER_TIMEOUT_SECONDS")

	// ── Solana ──
	setStr(&cfg.Solana.RPCEndpoint, "SOLARB_SOLANA_RPC_ENDPOINT")
	setInt(&cfg.Solana.ConfirmTimeoutSec, "SOLARB_SOLANA_CONFIRM_TIMEOUT_SEC")
	setInt(&cfg.Solana.ConfirmPollMs, "SOLARB_SOLANA_CONFIRM_POLL_MS")
	setBool(&cfg.Solana.SkipPreflight, "SOLARB_SOLANA_SKIP_PREFLIGHT")

	// ── Database ──
	setStr(&cfg.Database.DSN, "SOLARB_DATABASE_DSN")
	setStr(&cfg.Database.Host, "SOLARB_DATABASE_HOST")
	setInt(&cfg.Database.Port, "SOLARB_DATABASE_PORT")
	setStr(&cfg.Database.Database, "SOLARB_DATABASE_DATABASE")
	setStr(&cfg.Database.User, "SOLARB_DATABASE_USER")
	setStr(&cfg.Database.Password, "SOLARB_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "SOLARB_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "SOLARB_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "SOLARB_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "SOLARB_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SOLARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SOLARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SOLARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SOLARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SOLARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SOLARB_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SOLARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SOLARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "SOLARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SOLARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SOLARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SOLARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SOLARB_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "SOLARB_S3_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SOLARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SOLARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SOLARB_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SOLARB_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SOLARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SOLARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SOLARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SOLARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SOLARB_MODE")
	setStr(&cfg.LogLevel, "SOLARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
