package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Database configuration
	DatabaseURL string

	// NATS configuration
	NATSURL string

	// Solana configuration
	SolanaRPCURL string

	// Name service configuration
	SNSResolverURL string
	DomainCacheTTL time.Duration

	// Classifier configuration
	GeminiAPIKey string
	GeminiModel  string

	// Swap aggregator configuration
	JupiterBaseURL     string
	DefaultSlippageBps int

	// Transaction preparation configuration.
	// FeeFallbackLamports and ATARentLamports track current network economics
	// and drift over time; the defaults preserve behavioral parity.
	FeeFallbackLamports uint64
	ATARentLamports     uint64
	IntentTTL           time.Duration
}

const (
	// DefaultFeeFallbackLamports is used when fee estimation against the
	// constructed message fails. Matches the base per-signature fee.
	DefaultFeeFallbackLamports = 5000

	// DefaultATARentLamports is the rent-exempt minimum for a token account,
	// added to the fee estimate when the recipient's associated token
	// account must be created.
	DefaultATARentLamports = 2_039_280

	// DefaultIntentTTL bounds how long an unsigned transaction remains
	// usable. Tied to blockhash validity; do not raise casually.
	DefaultIntentTTL = 120 * time.Second
)

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Database configuration
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required"))
	}

	// NATS configuration
	cfg.NATSURL = getEnvOrDefault("NATS_URL", "nats://localhost:4222")

	// Solana configuration
	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	// Name service configuration
	cfg.SNSResolverURL = getEnvOrDefault("SNS_RESOLVER_URL", "https://sns-sdk-proxy.bonfida.workers.dev")
	domainTTL, err := parseDuration("DOMAIN_CACHE_TTL", "5m")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.DomainCacheTTL = domainTTL
	}

	// Classifier configuration
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required"))
	}
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash")

	// Swap aggregator configuration
	cfg.JupiterBaseURL = getEnvOrDefault("JUPITER_BASE_URL", "https://quote-api.jup.ag")
	slippage, err := parseInt("DEFAULT_SLIPPAGE_BPS", 50)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.DefaultSlippageBps = slippage
	}

	// Transaction preparation configuration
	feeFallback, err := parseUint64("FEE_FALLBACK_LAMPORTS", DefaultFeeFallbackLamports)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.FeeFallbackLamports = feeFallback
	}

	ataRent, err := parseUint64("ATA_RENT_LAMPORTS", DefaultATARentLamports)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ATARentLamports = ataRent
	}

	intentTTL, err := parseDuration("INTENT_TTL", "120s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.IntentTTL = intentTTL
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DatabaseURL is required"))
	}

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.GeminiAPIKey == "" {
		errs = append(errs, fmt.Errorf("GeminiAPIKey is required"))
	}

	if c.SNSResolverURL == "" {
		errs = append(errs, fmt.Errorf("SNSResolverURL is required"))
	}

	if c.JupiterBaseURL == "" {
		errs = append(errs, fmt.Errorf("JupiterBaseURL is required"))
	}

	if c.DefaultSlippageBps <= 0 || c.DefaultSlippageBps > 10_000 {
		errs = append(errs, fmt.Errorf("DefaultSlippageBps must be in (0, 10000]"))
	}

	if c.DomainCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("DomainCacheTTL must be positive"))
	}

	if c.IntentTTL < time.Second {
		errs = append(errs, fmt.Errorf("IntentTTL must be at least 1 second"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// parseUint64 parses an unsigned integer from an environment variable or uses a default.
func parseUint64(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid unsigned integer %q: %w", key, value, err)
	}
	return result, nil
}
