package solana

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// BuildSolanaPayURL creates a Solana Pay-compatible URL for the prepared
// transfer, so wallet apps can render it directly.
// Format: solana:{recipient}?amount={amount}&spl-token={mint}&label={label}
func BuildSolanaPayURL(recipient, amount string, tokenCfg *TokenConfig) string {
	params := url.Values{}
	params.Set("amount", amount)
	params.Set("label", "Soltalk Transfer")

	if tokenCfg != nil {
		params.Set("spl-token", tokenCfg.Mint.String())
	}

	return fmt.Sprintf("solana:%s?%s", recipient, params.Encode())
}

// GenerateQRCode creates a QR code image from a payment URL and returns it
// as base64-encoded PNG for easy embedding in JSON responses.
func GenerateQRCode(data string) (string, error) {
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code as PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
