package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPayload_None(t *testing.T) {
	scan := ScanPayload("just a conversational reply")
	assert.Equal(t, StateNone, scan.State)
}

func TestScanPayload_Preparing(t *testing.T) {
	// Streaming cut off mid-payload: the open tag arrived, the close hasn't.
	scan := ScanPayload(`Here you go: [TRANSACTION_DATA]{"type":"tr`)
	assert.Equal(t, StatePreparing, scan.State)
	assert.Equal(t, TagTransaction, scan.Tag)
	assert.Nil(t, scan.Payload)
}

func TestScanPayload_Complete(t *testing.T) {
	scan := ScanPayload(`Done. [SWAP_DATA]{"type":"swap","amount":10}[/SWAP_DATA] Anything else?`)
	require.Equal(t, StateComplete, scan.State)
	assert.Equal(t, TagSwap, scan.Tag)
	assert.JSONEq(t, `{"type":"swap","amount":10}`, string(scan.Payload))
}

func TestScanPayload_Invalid(t *testing.T) {
	scan := ScanPayload(`[TRANSACTION_DATA]{"type":[/TRANSACTION_DATA]`)
	assert.Equal(t, StateInvalid, scan.State)
	assert.Equal(t, TagTransaction, scan.Tag)
}

func TestScanPayload_EmptyBodyIsInvalid(t *testing.T) {
	scan := ScanPayload(`[NFT_DATA][/NFT_DATA]`)
	assert.Equal(t, StateInvalid, scan.State)
}

func TestStripPayloads(t *testing.T) {
	text := `Prepared. [TRANSACTION_DATA]{"a":1}[/TRANSACTION_DATA] Sign within 2 minutes.`
	assert.Equal(t, "Prepared.  Sign within 2 minutes.", StripPayloads(text))
}

func TestStripPayloads_LeavesPartialBlocks(t *testing.T) {
	text := `Working on it [MARKET_DATA]{"partial":`
	assert.Equal(t, text, StripPayloads(text))
}

func TestStripPayloads_PlainText(t *testing.T) {
	assert.Equal(t, "hello", StripPayloads("  hello  "))
}
