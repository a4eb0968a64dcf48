// Package compose turns preparer output and errors into conversational
// replies with embedded, delimiter-tagged machine-readable payloads.
package compose

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/soltalk/soltalk/service/intent"
	"github.com/soltalk/soltalk/service/solana"
	"github.com/soltalk/soltalk/service/swap"
)

// Payload tags understood by the UI layer. Exactly one opening and one
// matching closing tag per payload; the JSON between them must parse.
const (
	TagTransaction = "TRANSACTION_DATA"
	TagSwap        = "SWAP_DATA"
	TagPortfolio   = "PORTFOLIO_DATA"
	TagHistory     = "TRANSACTION_HISTORY_DATA"
	TagNFT         = "NFT_DATA"
	TagMarket      = "MARKET_DATA"
)

// Response is one composed conversational reply. Reply includes any
// delimited payload; IntentID is set when an unsigned transaction was
// prepared.
type Response struct {
	Reply    string `json:"reply"`
	IntentID string `json:"intent_id,omitempty"`
}

// TransactionPayload is the JSON placed between TRANSACTION_DATA tags:
// the transfer parameters plus the unsigned-transaction artifact fields.
type TransactionPayload struct {
	*solana.TransferParams
	IntentID    string          `json:"intentId"`
	TxBase64    string          `json:"txBase64"`
	Preview     *solana.Preview `json:"preview"`
	FeeLamports uint64          `json:"feeLamports"`
	CreatedAt   int64           `json:"createdAt"`
	ExpiresAt   int64           `json:"expiresAt"`
}

// wrapPayload renders v as a delimited payload block.
func wrapPayload(tag string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Payload types are plain structs; this cannot fail for them.
		return ""
	}
	return fmt.Sprintf("[%s]%s[/%s]", tag, data, tag)
}

// ComposeTransfer wraps a prepared transfer into a confirmation reply with
// the embedded transaction payload.
func ComposeTransfer(ui *solana.UnsignedIntent) *Response {
	p := ui.Preview

	asset := "SOL"
	if p.Token != nil {
		asset = p.Token.Symbol
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I've prepared a transfer of %s %s to %s.", p.Amount, asset, displayRecipient(p))
	if p.CreatesTokenAccount {
		b.WriteString(" The recipient doesn't have a token account for this asset yet, so one will be created as part of the transaction (rent is included in the fee estimate).")
	}
	fmt.Fprintf(&b, " Estimated network fee: %d lamports.", ui.FeeLamports)
	b.WriteString(" Review the details and sign with your wallet within 2 minutes - after that the transaction expires and I'll need to prepare a fresh one.")
	b.WriteString("\n\n")
	b.WriteString(wrapPayload(TagTransaction, &TransactionPayload{
		TransferParams: ui.TransferParams(),
		IntentID:       ui.IntentID,
		TxBase64:       ui.TxBase64,
		Preview:        &ui.Preview,
		FeeLamports:    ui.FeeLamports,
		CreatedAt:      ui.CreatedAtMs,
		ExpiresAt:      ui.ExpiresAtMs,
	}))

	return &Response{Reply: b.String(), IntentID: ui.IntentID}
}

// displayRecipient shows the resolved domain alongside the address when the
// recipient came from a .sol lookup.
func displayRecipient(p solana.Preview) string {
	if p.DomainInfo != nil && p.DomainInfo.IsResolved {
		return fmt.Sprintf("%s (%s)", p.DomainInfo.Domain, p.Recipient)
	}
	return p.Recipient
}

// ComposeSwap wraps validated swap parameters into a confirmation reply
// with the embedded swap payload.
func ComposeSwap(params *swap.SwapParams) *Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Ready to swap %v %s for %s. I'll fetch a live quote - review the rate before you confirm.",
		params.Amount, params.InputToken, params.OutputToken)
	b.WriteString("\n\n")
	b.WriteString(wrapPayload(TagSwap, params))
	return &Response{Reply: b.String()}
}

// ComposeConnectWallet is the dedicated, non-error prompt for requests that
// need a connected wallet.
func ComposeConnectWallet() *Response {
	return &Response{Reply: "Please connect your wallet first - I need it to set the fee payer and sender on the transaction. Once it's connected, just ask again."}
}

// ComposeFallback is the generic conversational reply used when no intent
// could be classified.
func ComposeFallback() *Response {
	return &Response{Reply: "I can help you check balances, NFTs, transaction history and market data, or prepare token transfers and swaps. What would you like to do?"}
}

// ComposeQueryAck acknowledges a query intent whose handler lives outside
// this service.
func ComposeQueryAck(q intent.Query) *Response {
	return &Response{Reply: fmt.Sprintf("Let me pull up your %s data.", strings.ReplaceAll(string(q), "_", " "))}
}

// ComposeActionAck acknowledges an action this service does not prepare.
func ComposeActionAck(a intent.Action) *Response {
	return &Response{Reply: fmt.Sprintf("I understood that as a %s request, but I can't prepare those yet - transfers and swaps are what I can build for you today.", strings.ReplaceAll(string(a), "_", " "))}
}

// ComposeInternalError is the outermost-boundary reply for unexpected
// failures. It never leaks internal detail.
func ComposeInternalError() *Response {
	return &Response{Reply: "Sorry, I failed to process that request. Please try again."}
}

// ComposeError maps an expected preparation failure to a plain-language
// explanation with a corrective suggestion. Every branch keeps the
// conversation going; nothing here is fatal.
func ComposeError(err error) *Response {
	var (
		missingParams *solana.MissingParamsError
		missingSwap   *swap.MissingSwapParamsError
		invalidRecip  *solana.InvalidRecipientError
		resolution    *solana.ResolutionError
		unknownToken  *solana.UnknownTokenError
		invalidAmount *solana.InvalidAmountError
		selfSwap      *swap.SelfSwapError
	)

	switch {
	case errors.As(err, &missingParams):
		return &Response{Reply: fmt.Sprintf(
			"I need a bit more information to prepare that transfer. Could you tell me the %s?",
			strings.Join(missingParams.Missing, " and the "),
		)}

	case errors.As(err, &missingSwap):
		return composeSwapClarification(missingSwap)

	case errors.As(err, &invalidRecip):
		return &Response{Reply: fmt.Sprintf(
			"%q doesn't look like a valid recipient. Please give me a Solana wallet address or a .sol domain name.",
			invalidRecip.Input,
		)}

	case errors.As(err, &resolution):
		return composeResolutionFailure(resolution)

	case errors.As(err, &unknownToken):
		return &Response{Reply: fmt.Sprintf(
			"I don't recognize the token %q. Try a common symbol like USDC, or paste the token's mint address and I'll look it up on-chain.",
			unknownToken.Identifier,
		)}

	case errors.As(err, &invalidAmount):
		return &Response{Reply: fmt.Sprintf(
			"I couldn't read %q as an amount. Please use a plain positive number like 5 or 0.75.",
			invalidAmount.Raw,
		)}

	case errors.As(err, &selfSwap):
		return &Response{Reply: fmt.Sprintf(
			"Swapping %s for itself wouldn't do anything. Pick a different token to receive.",
			strings.ToUpper(selfSwap.Token),
		)}
	}

	// A construction failure (blockhash fetch, account lookup). Surface the
	// underlying message; these are recoverable by retrying.
	return &Response{Reply: fmt.Sprintf(
		"I couldn't prepare that transaction: %v. Nothing was sent - please try again.", err,
	)}
}

// composeSwapClarification asks a differently-worded question per missing
// swap parameter category.
func composeSwapClarification(e *swap.MissingSwapParamsError) *Response {
	switch e.Missing {
	case swap.MissingBothTokens:
		return &Response{Reply: "Which tokens would you like to swap between, and how much? For example: \"swap 10 SOL for USDC\"."}
	case swap.MissingOutputToken:
		return &Response{Reply: "Got the amount and the token you're selling - which token would you like to receive?"}
	case swap.MissingInputToken:
		return &Response{Reply: "I can see which token you want to receive, but not what you're swapping from or how much. What are you selling?"}
	case swap.MissingAmount:
		return &Response{Reply: "How much would you like to swap?"}
	}
	return &Response{Reply: "Could you restate the swap? I need the two tokens and an amount."}
}

// composeResolutionFailure explains a .sol lookup failure. An unregistered
// domain, a likely misspelling, and a transient lookup problem each get
// their own hint rather than one generic message.
func composeResolutionFailure(e *solana.ResolutionError) *Response {
	if e.NotRegistered() {
		return &Response{Reply: fmt.Sprintf(
			"The domain %s is not registered. Double-check the spelling, or send to the recipient's wallet address instead.",
			e.Domain,
		)}
	}
	return &Response{Reply: fmt.Sprintf(
		"I couldn't reach the name service to resolve %s just now. Try again in a moment, or use the recipient's wallet address directly.",
		e.Domain,
	)}
}
