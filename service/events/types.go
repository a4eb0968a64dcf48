package events

import (
	"time"
)

// IntentPreparedEvent is published to "intents.{wallet_address}" in
// JetStream whenever an unsigned transaction or swap has been prepared.
// Downstream consumers (audit, analytics, signing UIs) subscribe to it;
// nothing in the prepare path depends on delivery.
type IntentPreparedEvent struct {
	// Intent identifiers
	IntentID string `json:"intent_id"`
	Kind     string `json:"kind"` // "transfer" or "swap"

	// Wallet information
	WalletAddress string `json:"wallet_address"`

	// Preparation details
	Recipient   string `json:"recipient,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Token       string `json:"token,omitempty"`
	FeeLamports uint64 `json:"fee_lamports,omitempty"`

	// Timing information
	ExpiresAt   time.Time `json:"expires_at"`
	PublishedAt time.Time `json:"published_at"`
}
