package solana

import (
	"time"
)

// DomainInfo records how a recipient domain was resolved, for display in
// the transfer preview.
type DomainInfo struct {
	OriginalInput   string `json:"originalInput"`
	Domain          string `json:"domain"`
	ResolvedAddress string `json:"resolvedAddress"`
	IsResolved      bool   `json:"isResolved"`
}

// TransferParams is the machine-readable transfer payload embedded in
// composed responses. Amount is in human units; base-unit conversion
// happens only inside instruction construction.
type TransferParams struct {
	Type       string       `json:"type"` // always "transfer"
	Recipient  string       `json:"recipient"`
	Amount     string       `json:"amount"`
	Token      *TokenConfig `json:"token,omitempty"`
	DomainInfo *DomainInfo  `json:"domainInfo,omitempty"`
}

// Preview is the human-readable summary attached to an unsigned transaction.
type Preview struct {
	Kind                string       `json:"kind"` // "SOL_TRANSFER" or "SPL_TRANSFER"
	Sender              string       `json:"sender"`
	Recipient           string       `json:"recipient"`
	Amount              string       `json:"amount"`
	AmountBaseUnits     uint64       `json:"amountBaseUnits"`
	Token               *TokenConfig `json:"token,omitempty"`
	DomainInfo          *DomainInfo  `json:"domainInfo,omitempty"`
	CreatesTokenAccount bool         `json:"createsTokenAccount,omitempty"`
	PaymentURL          string       `json:"paymentUrl,omitempty"`
	QRCodeData          string       `json:"qrCodeData,omitempty"`
}

// UnsignedIntent is a structurally complete, zero-signature transaction
// ready for handoff to a signing UI. TxBase64 must not be used past
// ExpiresAtMs: the embedded blockhash will no longer be valid for broadcast.
type UnsignedIntent struct {
	IntentID    string  `json:"intentId"`
	TxBase64    string  `json:"txBase64"`
	Preview     Preview `json:"preview"`
	FeeLamports uint64  `json:"feeLamports"`
	CreatedAtMs int64   `json:"createdAt"`
	ExpiresAtMs int64   `json:"expiresAt"`
}

// TransferParams derives the embeddable transfer payload from the preview.
func (i *UnsignedIntent) TransferParams() *TransferParams {
	return &TransferParams{
		Type:       "transfer",
		Recipient:  i.Preview.Recipient,
		Amount:     i.Preview.Amount,
		Token:      i.Preview.Token,
		DomainInfo: i.Preview.DomainInfo,
	}
}

// IsExpired reports whether the intent's validity window has closed at the
// given instant. The window is half-open: an intent is already expired at
// exactly ExpiresAtMs.
func IsExpired(i *UnsignedIntent, now time.Time) bool {
	return now.UnixMilli() >= i.ExpiresAtMs
}
