package swap

import (
	"regexp"
	"strings"

	"github.com/soltalk/soltalk/service/intent"
)

// extracted is the raw result of a successful extraction strategy, before
// amount and self-swap validation.
type extracted struct {
	inputToken  string
	outputToken string
	amount      string
}

var (
	// swapPhraseRe matches "swap <amount>? <TOKEN> (to|for) <TOKEN>".
	// The amount is optional in the phrase when present in structured params.
	swapPhraseRe = regexp.MustCompile(`(?i)\bswap\s+(?:([0-9]+(?:\.[0-9]+)?)\s+)?([A-Za-z0-9]{2,12})\s+(?:to|for)\s+([A-Za-z0-9]{2,12})\b`)

	// outputHintRe is the looser secondary match used to recover just the
	// output token from the raw text.
	outputHintRe = regexp.MustCompile(`(?i)\b(?:to|for)\s+([A-Za-z0-9]{2,12})\b`)
)

// extractSwap runs the ordered strategy list: a full natural-language
// pattern match on the raw text first, then structured intent params with a
// looser text match to recover the output token. If neither strategy yields
// both tokens and an amount, the error names exactly what is absent.
func extractSwap(rawText string, params *intent.Params) (*extracted, error) {
	// Strategy A: full phrase match.
	if m := swapPhraseRe.FindStringSubmatch(rawText); m != nil {
		out := &extracted{
			amount:      m[1],
			inputToken:  strings.ToUpper(m[2]),
			outputToken: strings.ToUpper(m[3]),
		}
		if out.amount == "" && params != nil {
			out.amount = strings.TrimSpace(params.Amount)
		}
		if out.amount == "" {
			return nil, &MissingSwapParamsError{Missing: MissingAmount}
		}
		return out, nil
	}

	// Strategy B: structured params, with text recovery for the output side.
	var inputToken, outputToken, amount string
	if params != nil {
		inputToken = strings.TrimSpace(params.InputToken)
		if inputToken == "" {
			inputToken = strings.TrimSpace(params.TokenOrEmpty())
		}
		outputToken = strings.TrimSpace(params.OutputToken)
		amount = strings.TrimSpace(params.Amount)
	}
	if outputToken == "" {
		if m := outputHintRe.FindStringSubmatch(rawText); m != nil {
			outputToken = m[1]
		}
	}

	switch {
	case inputToken == "" && outputToken == "":
		return nil, &MissingSwapParamsError{Missing: MissingBothTokens}
	case inputToken != "" && outputToken == "":
		return nil, &MissingSwapParamsError{Missing: MissingOutputToken}
	case inputToken == "":
		// An output hint alone does not say what to sell; asking for the
		// input side is a different question than asking for both tokens.
		return nil, &MissingSwapParamsError{Missing: MissingInputToken}
	case amount == "":
		return nil, &MissingSwapParamsError{Missing: MissingAmount}
	}

	return &extracted{
		inputToken:  strings.ToUpper(inputToken),
		outputToken: strings.ToUpper(outputToken),
		amount:      amount,
	}, nil
}
