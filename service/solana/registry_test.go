package solana

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(mock *mockRPCClient) *Registry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(mock, "test", nil, logger)
}

func TestIsNativeToken(t *testing.T) {
	for _, s := range []string{"", "SOL", "sol", " Sol ", "NATIVE", "native"} {
		assert.True(t, IsNativeToken(s), "input %q", s)
	}
	for _, s := range []string{"USDC", "WSOL", "So11111111111111111111111111111111111111112"} {
		assert.False(t, IsNativeToken(s), "input %q", s)
	}
}

func TestGetTokenConfig_KnownSymbol(t *testing.T) {
	// A lookup that reaches RPC fails the test: known symbols are static.
	mock := &mockRPCClient{err: assert.AnError}
	r := newTestRegistry(mock)

	cfg, err := r.GetTokenConfig(context.Background(), "usdc")
	require.NoError(t, err)
	assert.Equal(t, "USDC", cfg.Symbol)
	assert.Equal(t, uint8(6), cfg.Decimals)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", cfg.Mint.String())
}

func TestGetTokenConfig_MintAddressFallback(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs")
	mock := &mockRPCClient{
		tokenSupply: &rpc.GetTokenSupplyResult{
			Value: &rpc.UiTokenAmount{Amount: "1000", Decimals: 8},
		},
	}
	r := newTestRegistry(mock)

	cfg, err := r.GetTokenConfig(context.Background(), mint.String())
	require.NoError(t, err)
	assert.Equal(t, mint, cfg.Mint)
	assert.Equal(t, uint8(8), cfg.Decimals)
	// No symbol available on-chain; the identifier stands in.
	assert.Equal(t, mint.String(), cfg.Symbol)
}

func TestGetTokenConfig_UnknownSymbol(t *testing.T) {
	mock := &mockRPCClient{}
	r := newTestRegistry(mock)

	_, err := r.GetTokenConfig(context.Background(), "DOGECOIN")
	require.Error(t, err)

	var unknown *UnknownTokenError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "DOGECOIN", unknown.Identifier)
}

func TestGetTokenConfig_MintLookupFails(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs")
	mock := &mockRPCClient{err: assert.AnError}
	r := newTestRegistry(mock)

	_, err := r.GetTokenConfig(context.Background(), mint.String())
	require.Error(t, err)

	var unknown *UnknownTokenError
	assert.ErrorAs(t, err, &unknown)
}
