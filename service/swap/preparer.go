package swap

import (
	"context"
	"log/slog"

	"github.com/soltalk/soltalk/service/intent"
	"github.com/soltalk/soltalk/service/solana"
)

// Preparer validates swap intents into SwapParams. Its responsibility ends
// at producing valid, correctly-scaled parameters; quote fetching and
// execution belong to the aggregator behind the Aggregator interface.
// Preparation outcomes are recorded by the caller, which also decides the
// wallet-connection branch.
type Preparer struct {
	logger *slog.Logger
}

// NewPreparer creates a swap preparer.
func NewPreparer(logger *slog.Logger) *Preparer {
	return &Preparer{logger: logger}
}

// PrepareSwap extracts (inputToken, outputToken, amount) from the raw user
// text and the classified params, then validates the amount and rejects
// self-swaps. Failures are typed so the caller can ask the right clarifying
// question.
func (p *Preparer) PrepareSwap(ctx context.Context, rawText string, params *intent.Params) (*SwapParams, error) {
	ext, err := extractSwap(rawText, params)
	if err != nil {
		return nil, err
	}

	amount, err := solana.ParseAmount(ext.amount)
	if err != nil {
		return nil, err
	}

	if ext.inputToken == ext.outputToken {
		return nil, &SelfSwapError{Token: ext.inputToken}
	}

	p.logger.DebugContext(ctx, "prepared swap params",
		"input_token", ext.inputToken,
		"output_token", ext.outputToken,
		"amount", amount.String(),
	)

	return &SwapParams{
		Type:        "swap",
		InputToken:  ext.inputToken,
		OutputToken: ext.outputToken,
		Amount:      amount.InexactFloat64(),
	}, nil
}
