package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/soltalk_test")
	t.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 5*time.Minute, cfg.DomainCacheTTL)
	assert.Equal(t, 50, cfg.DefaultSlippageBps)
	assert.Equal(t, uint64(DefaultFeeFallbackLamports), cfg.FeeFallbackLamports)
	assert.Equal(t, uint64(DefaultATARentLamports), cfg.ATARentLamports)
	assert.Equal(t, DefaultIntentTTL, cfg.IntentTTL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("DOMAIN_CACHE_TTL", "10m")
	t.Setenv("INTENT_TTL", "90s")
	t.Setenv("FEE_FALLBACK_LAMPORTS", "7500")
	t.Setenv("DEFAULT_SLIPPAGE_BPS", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, 10*time.Minute, cfg.DomainCacheTTL)
	assert.Equal(t, 90*time.Second, cfg.IntentTTL)
	assert.Equal(t, uint64(7500), cfg.FeeFallbackLamports)
	assert.Equal(t, 100, cfg.DefaultSlippageBps)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SOLANA_RPC_URL", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "SOLANA_RPC_URL")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INTENT_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTENT_TTL")
}

func TestValidate(t *testing.T) {
	valid := &Config{
		DatabaseURL:        "postgres://localhost/db",
		SolanaRPCURL:       "https://rpc",
		GeminiAPIKey:       "key",
		SNSResolverURL:     "https://sns",
		JupiterBaseURL:     "https://jup",
		DefaultSlippageBps: 50,
		DomainCacheTTL:     5 * time.Minute,
		IntentTTL:          120 * time.Second,
	}
	require.NoError(t, valid.Validate())

	bad := *valid
	bad.DefaultSlippageBps = 20_000
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.IntentTTL = 500 * time.Millisecond
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.DomainCacheTTL = 0
	assert.Error(t, bad.Validate())
}
