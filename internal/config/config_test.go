package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("live mode requires a private key", func(t *testing.T) {
		cfg := Defaults()
		cfg.Bot.MockMode = false
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "private_key is required")
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := Defaults()
		cfg.Mode = "turbo"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown mode "turbo"`)
	})

	t.Run("identical mints", func(t *testing.T) {
		cfg := Defaults()
		cfg.Bot.TokenBMint = cfg.Bot.TokenAMint
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must differ")
	})

	t.Run("scan interval below one second", func(t *testing.T) {
		cfg := Defaults()
		cfg.Bot.ScanIntervalSec = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan_interval_sec")
	})

	t.Run("s3 bucket without retention", func(t *testing.T) {
		cfg := Defaults()
		cfg.S3.Bucket = "solarb-archive"
		cfg.S3.RetentionDays = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retention_days")
	})

	t.Run("all problems reported at once", func(t *testing.T) {
		cfg := Defaults()
		cfg.Mode = "turbo"
		cfg.Bot.MaxTradeAmount = 0
		cfg.Redis.Addr = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mode")
		assert.Contains(t, err.Error(), "max_trade_amount")
		assert.Contains(t, err.Error(), "redis: addr")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
mode = "auto"
log_level = "debug"

[bot]
name = "bonk-sol"
profit_threshold = 1.25
scan_interval_sec = 5

[server]
port = 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Explicit values win; everything else keeps its default.
	assert.Equal(t, "auto", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "bonk-sol", cfg.Bot.Name)
	assert.Equal(t, 1.25, cfg.Bot.ProfitThreshold)
	assert.Equal(t, 5, cfg.Bot.ScanIntervalSec)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, Defaults().Bot.TokenAMint, cfg.Bot.TokenAMint)
	assert.Equal(t, Defaults().Jupiter.Host, cfg.Jupiter.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SOLARB_BOT_MOCK_MODE", "false")
	t.Setenv("SOLARB_BOT_MAX_TRADE_AMOUNT", "250000000")
	t.Setenv("SOLARB_WALLET_PRIVATE_KEY", "env-secret")
	t.Setenv("SOLARB_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SOLARB_REDIS_DB", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.False(t, cfg.Bot.MockMode)
	assert.Equal(t, uint64(250_000_000), cfg.Bot.MaxTradeAmount)
	assert.Equal(t, "env-secret", cfg.Wallet.PrivateKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	// Unparseable values are ignored, not applied.
	assert.Equal(t, Defaults().Redis.DB, cfg.Redis.DB)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "secret-key"
	cfg.Database.Password = "db-pass"
	cfg.Redis.Password = "redis-pass"
	cfg.Server.APIKey = "api-key"

	red := RedactedConfig(&cfg)

	assert.NotContains(t, red.Wallet.PrivateKey, "secret-key")
	assert.NotContains(t, red.Database.Password, "db-pass")
	assert.NotContains(t, red.Redis.Password, "redis-pass")
	assert.NotContains(t, red.Server.APIKey, "api-key")
	// Non-secret fields pass through untouched.
	assert.Equal(t, cfg.Bot.Name, red.Bot.Name)
	assert.Equal(t, cfg.Jupiter.Host, red.Jupiter.Host)
}
