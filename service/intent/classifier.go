package intent

import (
	"context"
	"encoding/json"
	"strings"
)

// Classifier turns one free-text user message into a ParsedIntent.
// A nil intent with a nil error means the message carried no classifiable
// intent (or the model produced non-conforming output); callers degrade to
// a generic conversational response. Implementations make exactly one
// model attempt per call and never retry internally.
type Classifier interface {
	Classify(ctx context.Context, text string) (*ParsedIntent, error)
}

// SystemInstruction is the fixed instruction given to the model. The
// output contract is strict: exactly one JSON object, no prose, no
// markdown fencing.
const SystemInstruction = `You classify a user's message about the Solana blockchain into a structured intent.

Output ONLY one JSON object matching this schema, with no prose and no markdown fencing:
{
  "type": "query" | "action",
  "query": "portfolio" | "balances" | "nfts" | "txn_history" | "fees" | "positions",
  "filters": {"from": str, "to": str, "collection": str, "token_mint": str, "limit": int},
  "action": "transfer" | "swap" | "stake" | "unstake" | "nft_transfer" | "nft_list",
  "params": {"amount": str, "token": str|null, "recipient": str, "input_token": str, "output_token": str, "validator": str}
}

Rules:
- "query" and "filters" only when type is "query"; "action" and "params" only when type is "action".
- "amount" is the decimal number exactly as the user wrote it.
- "token" is null when the user means native SOL.
- "recipient" is the address or .sol name verbatim.
- Omit any field you cannot determine.`

// ParseModelOutput applies the strict-output contract to raw model text.
// Non-JSON output, JSON that is not a single object, or an object that
// fails structural validation all yield nil: classification failed, the
// pipeline degrades, nothing crashes.
func ParseModelOutput(raw string) *ParsedIntent {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	// Models sometimes fence output despite instructions; tolerate exactly
	// that one deviation before strict parsing.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var parsed ParsedIntent
	if err := dec.Decode(&parsed); err != nil {
		return nil
	}
	// Trailing content after the object violates the one-object contract.
	if dec.More() {
		return nil
	}

	if err := parsed.Validate(); err != nil {
		return nil
	}
	return &parsed
}
