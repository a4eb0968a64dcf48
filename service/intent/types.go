// Package intent defines the structured representation of what a user
// wants to do, plus the classifier contract that produces it from free
// text.
package intent

import "fmt"

// Type discriminates read-only queries from state-changing actions.
type Type string

const (
	TypeQuery  Type = "query"
	TypeAction Type = "action"
)

// Query is the closed set of read-only intents.
type Query string

const (
	QueryPortfolio  Query = "portfolio"
	QueryBalances   Query = "balances"
	QueryNFTs       Query = "nfts"
	QueryTxnHistory Query = "txn_history"
	QueryFees       Query = "fees"
	QueryPositions  Query = "positions"
)

// Action is the closed set of state-changing intents. Only transfer and
// swap are implemented; the rest degrade to an acknowledgment response.
type Action string

const (
	ActionTransfer    Action = "transfer"
	ActionSwap        Action = "swap"
	ActionStake       Action = "stake"
	ActionUnstake     Action = "unstake"
	ActionNFTTransfer Action = "nft_transfer"
	ActionNFTList     Action = "nft_list"
)

// Filters narrow a query. All fields are optional and internal consistency
// (e.g. From <= To) is deliberately not enforced here.
type Filters struct {
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Collection string `json:"collection,omitempty"`
	TokenMint  string `json:"token_mint,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Params is the free-form parameter bag for actions. Amount is decimal
// text and is not guaranteed numeric-safe; Token nil means the native
// asset.
type Params struct {
	Amount      string  `json:"amount,omitempty"`
	Token       *string `json:"token,omitempty"`
	Recipient   string  `json:"recipient,omitempty"`
	InputToken  string  `json:"input_token,omitempty"`
	OutputToken string  `json:"output_token,omitempty"`
	Validator   string  `json:"validator,omitempty"`
}

// TokenOrEmpty returns the token symbol, treating a nil Token as the
// native-asset sentinel.
func (p *Params) TokenOrEmpty() string {
	if p == nil || p.Token == nil {
		return ""
	}
	return *p.Token
}

// ParsedIntent is the classifier's output: one per user message, immutable,
// discarded after the triggering response is produced.
type ParsedIntent struct {
	Type    Type     `json:"type"`
	Query   Query    `json:"query,omitempty"`
	Filters *Filters `json:"filters,omitempty"`
	Action  Action   `json:"action,omitempty"`
	Params  *Params  `json:"params,omitempty"`
}

var validQueries = map[Query]bool{
	QueryPortfolio:  true,
	QueryBalances:   true,
	QueryNFTs:       true,
	QueryTxnHistory: true,
	QueryFees:       true,
	QueryPositions:  true,
}

var validActions = map[Action]bool{
	ActionTransfer:    true,
	ActionSwap:        true,
	ActionStake:       true,
	ActionUnstake:     true,
	ActionNFTTransfer: true,
	ActionNFTList:     true,
}

// Validate checks the structural contract: Type is one of the two variants
// and any query/action value is drawn from its closed set. Model output
// that fails this check must be treated as no intent, not trusted
// downstream.
func (i *ParsedIntent) Validate() error {
	switch i.Type {
	case TypeQuery:
		if i.Query != "" && !validQueries[i.Query] {
			return fmt.Errorf("unknown query kind %q", i.Query)
		}
	case TypeAction:
		if i.Action != "" && !validActions[i.Action] {
			return fmt.Errorf("unknown action kind %q", i.Action)
		}
	default:
		return fmt.Errorf("unknown intent type %q", i.Type)
	}
	return nil
}
