package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelOutput_TransferAction(t *testing.T) {
	raw := `{"type":"action","action":"transfer","params":{"amount":"1.5","recipient":"alice.sol","token":null}}`

	parsed := ParseModelOutput(raw)
	require.NotNil(t, parsed)
	assert.Equal(t, TypeAction, parsed.Type)
	assert.Equal(t, ActionTransfer, parsed.Action)
	require.NotNil(t, parsed.Params)
	assert.Equal(t, "1.5", parsed.Params.Amount)
	assert.Equal(t, "alice.sol", parsed.Params.Recipient)
	assert.Nil(t, parsed.Params.Token, "null token means native SOL")
	assert.Empty(t, parsed.Params.TokenOrEmpty())
}

func TestParseModelOutput_Query(t *testing.T) {
	raw := `{"type":"query","query":"txn_history","filters":{"limit":10}}`

	parsed := ParseModelOutput(raw)
	require.NotNil(t, parsed)
	assert.Equal(t, TypeQuery, parsed.Type)
	assert.Equal(t, QueryTxnHistory, parsed.Query)
	require.NotNil(t, parsed.Filters)
	assert.Equal(t, 10, parsed.Filters.Limit)
}

func TestParseModelOutput_ToleratesMarkdownFencing(t *testing.T) {
	raw := "```json\n{\"type\":\"action\",\"action\":\"swap\"}\n```"

	parsed := ParseModelOutput(raw)
	require.NotNil(t, parsed)
	assert.Equal(t, ActionSwap, parsed.Action)
}

func TestParseModelOutput_NonConforming(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"whitespace":        "   \n",
		"prose":             "The user wants to send money.",
		"malformed json":    `{"type":"action",`,
		"json array":        `[{"type":"query"}]`,
		"unknown field":     `{"type":"query","confidence":0.9}`,
		"trailing content":  `{"type":"query"} extra`,
		"two objects":       `{"type":"query"}{"type":"action"}`,
		"unknown type":      `{"type":"chat"}`,
		"unknown query":     `{"type":"query","query":"weather"}`,
		"unknown action":    `{"type":"action","action":"teleport"}`,
		"prose then object": `Sure! {"type":"query"}`,
	}

	for name, raw := range cases {
		assert.Nil(t, ParseModelOutput(raw), "case %q must classify as no intent", name)
	}
}

func TestParseModelOutput_OmittedSubKindIsAccepted(t *testing.T) {
	// The model may be unable to pick a sub-kind; the type alone is still a
	// structurally valid intent.
	parsed := ParseModelOutput(`{"type":"action"}`)
	require.NotNil(t, parsed)
	assert.Equal(t, TypeAction, parsed.Type)
	assert.Empty(t, parsed.Action)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&ParsedIntent{Type: TypeQuery, Query: QueryBalances}).Validate())
	assert.NoError(t, (&ParsedIntent{Type: TypeAction, Action: ActionStake}).Validate())
	assert.Error(t, (&ParsedIntent{Type: "other"}).Validate())
	assert.Error(t, (&ParsedIntent{Type: TypeQuery, Query: "weather"}).Validate())
	assert.Error(t, (&ParsedIntent{Type: TypeAction, Action: "teleport"}).Validate())
}

func TestTokenOrEmpty(t *testing.T) {
	usdc := "USDC"
	assert.Equal(t, "USDC", (&Params{Token: &usdc}).TokenOrEmpty())
	assert.Empty(t, (&Params{}).TokenOrEmpty())

	var p *Params
	assert.Empty(t, p.TokenOrEmpty(), "nil receiver is the native sentinel")
}
