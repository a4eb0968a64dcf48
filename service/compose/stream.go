package compose

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PayloadState models the consumer-side view of a streamed payload block.
// The wire format arrives token-by-token, so a tag that has opened but not
// yet closed means "still preparing", not an error.
type PayloadState int

const (
	// StateNone: no payload tag present in the text.
	StateNone PayloadState = iota
	// StatePreparing: an opening tag was seen but its closing tag has not
	// arrived yet.
	StatePreparing
	// StateComplete: a matched tag pair with valid JSON between.
	StateComplete
	// StateInvalid: a matched tag pair whose content does not parse.
	StateInvalid
)

// knownTags in scan order.
var knownTags = []string{
	TagTransaction,
	TagSwap,
	TagPortfolio,
	TagHistory,
	TagNFT,
	TagMarket,
}

// ScanResult is the outcome of scanning text for an embedded payload.
type ScanResult struct {
	State   PayloadState
	Tag     string
	Payload json.RawMessage
}

// ScanPayload finds the first payload block in text and reports its state.
// Partial content between an opening tag and end-of-text is tolerated as
// StatePreparing.
func ScanPayload(text string) ScanResult {
	for _, tag := range knownTags {
		open := fmt.Sprintf("[%s]", tag)
		start := strings.Index(text, open)
		if start < 0 {
			continue
		}

		closeTag := fmt.Sprintf("[/%s]", tag)
		rest := text[start+len(open):]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			return ScanResult{State: StatePreparing, Tag: tag}
		}

		body := rest[:end]
		if !json.Valid([]byte(body)) {
			return ScanResult{State: StateInvalid, Tag: tag}
		}
		return ScanResult{State: StateComplete, Tag: tag, Payload: json.RawMessage(body)}
	}
	return ScanResult{State: StateNone}
}

// StripPayloads removes all complete payload blocks from text, leaving the
// conversational reply for plain-text display.
func StripPayloads(text string) string {
	for _, tag := range knownTags {
		open := fmt.Sprintf("[%s]", tag)
		closeTag := fmt.Sprintf("[/%s]", tag)
		for {
			start := strings.Index(text, open)
			if start < 0 {
				break
			}
			end := strings.Index(text[start:], closeTag)
			if end < 0 {
				break
			}
			text = text[:start] + text[start+end+len(closeTag):]
		}
	}
	return strings.TrimSpace(text)
}
