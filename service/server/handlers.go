package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/soltalk/soltalk/service/assistant"
	"github.com/soltalk/soltalk/service/config"
	"github.com/soltalk/soltalk/service/db"
	"github.com/soltalk/soltalk/service/solana"
	"github.com/soltalk/soltalk/service/swap"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB - plenty for a chat message
	maxMessageLength   = 4000    // characters of user text per turn
)

// handleChat returns a handler that runs one user message through the
// assistant pipeline.
// POST /api/v1/chat
func handleChat(a *assistant.Assistant, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Limit request body size to prevent memory exhaustion
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req struct {
			Message       string `json:"message"`
			WalletAddress string `json:"wallet_address"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Debug("failed to decode chat request", "error", err)
			if strings.Contains(err.Error(), "http: request body too large") {
				writeError(w, "request body too large: maximum size is 1MB", http.StatusBadRequest)
				return
			}
			writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			writeError(w, "message is required", http.StatusBadRequest)
			return
		}
		if len(req.Message) > maxMessageLength {
			writeError(w, "message too long", http.StatusBadRequest)
			return
		}

		if req.WalletAddress != "" && !solana.IsValidAddress(req.WalletAddress) {
			writeError(w, "wallet_address is not a valid Solana address", http.StatusBadRequest)
			return
		}

		resp, err := a.HandleMessage(r.Context(), req.Message, req.WalletAddress)
		if err != nil {
			// Unexpected failure: generic response, internal detail stays in
			// the logs.
			logger.Error("failed to process chat message", "error", err)
			writeJSON(w, resp, http.StatusInternalServerError)
			return
		}

		writeJSON(w, resp, http.StatusOK)
	})
}

// handleGetIntent returns a handler that retrieves a prepared intent by id.
// GET /api/v1/intents/{id}
func handleGetIntent(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		intentID := r.PathValue("id")
		if intentID == "" {
			writeError(w, "intent id is required", http.StatusBadRequest)
			return
		}

		rec, err := store.GetIntent(r.Context(), intentID)
		if err != nil {
			switch {
			case errors.Is(err, db.ErrIntentNotFound):
				writeError(w, "intent not found", http.StatusNotFound)
			case errors.Is(err, db.ErrIntentExpired):
				writeError(w, "intent expired: prepare a new transaction", http.StatusGone)
			default:
				logger.Error("failed to get intent", "intent_id", intentID, "error", err)
				writeError(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, map[string]interface{}{
			"intentId":    rec.IntentID,
			"wallet":      rec.Wallet,
			"txBase64":    rec.TxBase64,
			"preview":     rec.Preview,
			"feeLamports": rec.FeeLamports,
			"createdAt":   rec.CreatedAt.UnixMilli(),
			"expiresAt":   rec.ExpiresAt.UnixMilli(),
		}, http.StatusOK)
	})
}

// handleSwapQuote returns a handler that fetches a live quote for validated
// swap parameters. Token symbols are resolved through the registry and the
// amount scaled to input-token base units before hitting the aggregator.
// POST /api/v1/swaps/quote
func handleSwapQuote(aggregator swap.Aggregator, registry *solana.Registry, cfg *config.Config, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req struct {
			InputToken  string `json:"inputToken"`
			OutputToken string `json:"outputToken"`
			Amount      string `json:"amount"`
			SlippageBps int    `json:"slippageBps"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		if strings.EqualFold(req.InputToken, req.OutputToken) {
			writeError(w, "inputToken and outputToken must differ", http.StatusBadRequest)
			return
		}

		inputCfg, err := resolveSwapToken(r, registry, req.InputToken)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		outputCfg, err := resolveSwapToken(r, registry, req.OutputToken)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		baseUnits, err := solana.ParseAmountToBaseUnits(req.Amount, inputCfg.Decimals)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		slippage := req.SlippageBps
		if slippage <= 0 {
			slippage = cfg.DefaultSlippageBps
		}

		start := time.Now()
		quote, err := aggregator.Quote(r.Context(), inputCfg.Mint.String(), outputCfg.Mint.String(), baseUnits, slippage)
		if err != nil {
			logger.Error("quote fetch failed",
				"input", req.InputToken,
				"output", req.OutputToken,
				"error", err,
			)
			writeError(w, "failed to fetch quote from aggregator", http.StatusBadGateway)
			return
		}

		logger.Debug("quote fetched",
			"input", req.InputToken,
			"output", req.OutputToken,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		writeJSON(w, quote, http.StatusOK)
	})
}

// resolveSwapToken maps a swap-side token to its config, treating the
// native sentinel as wrapped SOL since aggregators quote against the mint.
func resolveSwapToken(r *http.Request, registry *solana.Registry, token string) (*solana.TokenConfig, error) {
	if solana.IsNativeToken(token) {
		token = "WSOL"
	}
	return registry.GetTokenConfig(r.Context(), token)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
