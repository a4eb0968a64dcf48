package solana

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/soltalk/soltalk/service/metrics"
)

// TokenConfig describes a fungible token: its mint and decimal precision.
// Decimals must match the on-chain mint exactly; a wrong value silently
// corrupts transferred amounts by orders of magnitude.
type TokenConfig struct {
	Mint     solana.PublicKey `json:"mint"`
	Symbol   string           `json:"symbol"`
	Decimals uint8            `json:"decimals"`
}

// knownTokens is the static symbol table for well-known mainnet tokens.
// Everything else falls through to an on-chain mint lookup.
var knownTokens = map[string]TokenConfig{
	"USDC": {Mint: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), Symbol: "USDC", Decimals: 6},
	"USDT": {Mint: solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"), Symbol: "USDT", Decimals: 6},
	"WSOL": {Mint: solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"), Symbol: "WSOL", Decimals: 9},
	"BONK": {Mint: solana.MustPublicKeyFromBase58("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"), Symbol: "BONK", Decimals: 5},
	"JUP":  {Mint: solana.MustPublicKeyFromBase58("JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"), Symbol: "JUP", Decimals: 6},
	"RAY":  {Mint: solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"), Symbol: "RAY", Decimals: 6},
}

// IsNativeToken reports whether the token identifier means native SOL.
// An absent token always means "use the native gas asset", never an error.
func IsNativeToken(symbol string) bool {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "", "SOL", "NATIVE":
		return true
	}
	return false
}

// Registry resolves token identifiers (symbols or raw mint addresses) to
// TokenConfig. Static table first, on-chain mint metadata as fallback.
type Registry struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string
}

// NewRegistry creates a token registry. The endpoint parameter labels RPC
// metrics. If m is nil, no metrics are recorded.
func NewRegistry(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Registry {
	return &Registry{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// GetTokenConfig resolves a token symbol or mint address to a TokenConfig.
// Known symbols return immediately with zero network calls. Unknown
// identifiers that parse as a mint address are looked up on-chain for their
// authoritative decimal count, with the symbol defaulted to the identifier
// itself. Anything else fails with *UnknownTokenError.
func (r *Registry) GetTokenConfig(ctx context.Context, identifier string) (*TokenConfig, error) {
	trimmed := strings.TrimSpace(identifier)

	if cfg, ok := knownTokens[strings.ToUpper(trimmed)]; ok {
		return &cfg, nil
	}

	mint, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return nil, &UnknownTokenError{Identifier: identifier}
	}

	start := time.Now()
	supply, err := r.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if r.metrics != nil {
		r.metrics.RecordRPCCall("GetTokenSupply", status, r.endpoint, duration)
	}

	if err != nil || supply == nil || supply.Value == nil {
		r.logger.WarnContext(ctx, "mint metadata lookup failed",
			"mint", mint.String(),
			"error", err,
		)
		return nil, &UnknownTokenError{Identifier: identifier}
	}

	r.logger.DebugContext(ctx, "resolved token from chain",
		"mint", mint.String(),
		"decimals", supply.Value.Decimals,
	)

	// No human-readable symbol is available on-chain; fall back to the
	// identifier the user supplied.
	return &TokenConfig{
		Mint:     mint,
		Symbol:   trimmed,
		Decimals: supply.Value.Decimals,
	}, nil
}
