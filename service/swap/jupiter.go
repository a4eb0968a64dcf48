package swap

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Quote is a time-bounded, externally-computed exchange rate and route for
// converting one token amount into another. Freshness is the aggregator's
// responsibility; consumers track it via the Timestamp advisory field.
type Quote struct {
	InputMint            string      `json:"inputMint"`
	InAmount             string      `json:"inAmount"`
	OutputMint           string      `json:"outputMint"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RoutePlan `json:"routePlan"`
	Timestamp            time.Time   `json:"timestamp"`
}

// RoutePlan is one hop of a quoted route.
type RoutePlan struct {
	Percent  int `json:"percent"`
	SwapInfo struct {
		AmmKey     string `json:"ammKey"`
		Label      string `json:"label"`
		InputMint  string `json:"inputMint"`
		OutputMint string `json:"outputMint"`
		InAmount   string `json:"inAmount"`
		OutAmount  string `json:"outAmount"`
		FeeAmount  string `json:"feeAmount"`
		FeeMint    string `json:"feeMint"`
	} `json:"swapInfo"`
}

// Aggregator is the boundary to the external liquidity aggregator. Quote
// returns a route for swapping amountBaseUnits of inputMint into
// outputMint; Swap turns a quote into an unsigned transaction (base64) for
// the given user. Neither signs nor broadcasts anything.
type Aggregator interface {
	Quote(ctx context.Context, inputMint, outputMint string, amountBaseUnits uint64, slippageBps int) (*Quote, error)
	Swap(ctx context.Context, quote *Quote, userAddress string) (string, error)
}

// JupiterClient is an Aggregator backed by the Jupiter v6 API.
type JupiterClient struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewJupiterClient creates an aggregator client for the API at baseURL
// (e.g. https://quote-api.jup.ag).
func NewJupiterClient(baseURL string, logger *slog.Logger) *JupiterClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)
	return &JupiterClient{http: client, logger: logger}
}

// Quote fetches a swap route from Jupiter.
func (j *JupiterClient) Quote(ctx context.Context, inputMint, outputMint string, amountBaseUnits uint64, slippageBps int) (*Quote, error) {
	var quote Quote
	resp, err := j.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      strconv.FormatUint(amountBaseUnits, 10),
			"slippageBps": strconv.Itoa(slippageBps),
		}).
		SetResult(&quote).
		Get("/v6/quote")
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("aggregator returned status %d: %s", resp.StatusCode(), resp.String())
	}

	quote.Timestamp = time.Now()
	j.logger.DebugContext(ctx, "fetched swap quote",
		"input_mint", inputMint,
		"output_mint", outputMint,
		"in_amount", quote.InAmount,
		"out_amount", quote.OutAmount,
	)
	return &quote, nil
}

// swapRequest is the wire shape of Jupiter's /v6/swap request.
type swapRequest struct {
	QuoteResponse    *Quote `json:"quoteResponse"`
	UserPublicKey    string `json:"userPublicKey"`
	WrapAndUnwrapSol bool   `json:"wrapAndUnwrapSol"`
}

// swapResponse is the wire shape of Jupiter's /v6/swap response.
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// Swap exchanges a quote for an unsigned swap transaction.
func (j *JupiterClient) Swap(ctx context.Context, quote *Quote, userAddress string) (string, error) {
	var out swapResponse
	resp, err := j.http.R().
		SetContext(ctx).
		SetBody(swapRequest{
			QuoteResponse:    quote,
			UserPublicKey:    userAddress,
			WrapAndUnwrapSol: true,
		}).
		SetResult(&out).
		Post("/v6/swap")
	if err != nil {
		return "", fmt.Errorf("swap request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("aggregator returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.SwapTransaction == "" {
		return "", fmt.Errorf("aggregator returned empty swap transaction")
	}
	return out.SwapTransaction, nil
}
