// Package swap extracts and validates swap parameters from classified
// intents and defines the boundary to the external liquidity aggregator.
package swap

import (
	"fmt"
	"strings"
)

// SwapParams is the machine-readable swap payload embedded in composed
// responses. Amount is in human units of the input token.
type SwapParams struct {
	Type        string  `json:"type"` // always "swap"
	InputToken  string  `json:"inputToken"`
	OutputToken string  `json:"outputToken"`
	Amount      float64 `json:"amount"`
}

// MissingField identifies exactly which swap parameter could not be
// extracted, so each case drives its own clarifying question.
type MissingField string

const (
	MissingBothTokens  MissingField = "both_tokens"
	MissingOutputToken MissingField = "output_token"
	MissingInputToken  MissingField = "input_token"
	MissingAmount      MissingField = "amount"
)

// MissingSwapParamsError indicates extraction could not produce both tokens
// and an amount.
type MissingSwapParamsError struct {
	Missing MissingField
}

func (e *MissingSwapParamsError) Error() string {
	switch e.Missing {
	case MissingBothTokens:
		return "missing swap parameters: input and output tokens"
	case MissingOutputToken:
		return "missing swap parameters: output token"
	case MissingInputToken:
		return "missing swap parameters: input token"
	case MissingAmount:
		return "missing swap parameters: amount"
	}
	return "missing swap parameters"
}

// SelfSwapError indicates input and output tokens are the same
// (case-insensitive); a no-op swap is always rejected.
type SelfSwapError struct {
	Token string
}

func (e *SelfSwapError) Error() string {
	return fmt.Sprintf("cannot swap %s for itself", strings.ToUpper(e.Token))
}
