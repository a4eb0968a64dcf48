package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ChatResponse is one assistant turn. Reply may carry a delimited payload
// block; IntentID is set when the turn produced an unsigned transaction.
type ChatResponse struct {
	Reply    string `json:"reply"`
	IntentID string `json:"intent_id,omitempty"`
}

// Intent is a prepared unsigned transaction retrieved by id. Timestamps are
// Unix milliseconds, matching the payload embedded in chat replies.
type Intent struct {
	IntentID    string          `json:"intentId"`
	Wallet      string          `json:"wallet"`
	TxBase64    string          `json:"txBase64"`
	Preview     json.RawMessage `json:"preview"`
	FeeLamports uint64          `json:"feeLamports"`
	CreatedAt   int64           `json:"createdAt"`
	ExpiresAt   int64           `json:"expiresAt"`
}

// ExpiresAtTime returns the expiry as a time.Time.
func (i *Intent) ExpiresAtTime() time.Time {
	return time.UnixMilli(i.ExpiresAt)
}

// Client is the HTTP client for the soltalk assistant service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new assistant service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		// Chat turns wait on the classifier plus RPC, so allow more than
		// a typical API round trip.
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Chat sends one user message through the assistant pipeline. walletAddress
// may be empty when no wallet is connected; action requests will then come
// back as a connect-wallet prompt rather than an error.
func (c *Client) Chat(ctx context.Context, message, walletAddress string) (*ChatResponse, error) {
	reqBody := map[string]interface{}{
		"message": message,
	}
	if walletAddress != "" {
		reqBody["wallet_address"] = walletAddress
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("chat turn complete", "intent_id", chatResp.IntentID)
	return &chatResp, nil
}

// GetIntent retrieves a prepared intent by id. Expired intents return an
// error; callers should prepare a fresh transaction rather than retry.
func (c *Client) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	u := fmt.Sprintf("%s/api/v1/intents/%s", c.baseURL, url.PathEscape(intentID))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &intent, nil
}

// QuoteRequest describes a swap to be quoted. Amount is a plain decimal
// string in human units of the input token.
type QuoteRequest struct {
	InputToken  string `json:"inputToken"`
	OutputToken string `json:"outputToken"`
	Amount      string `json:"amount"`
	SlippageBps int    `json:"slippageBps,omitempty"`
}

// Quote fetches a live aggregator quote for a swap. The response is passed
// through as-is from the aggregator.
func (c *Client) Quote(ctx context.Context, qr QuoteRequest) (json.RawMessage, error) {
	body, err := json.Marshal(qr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/swaps/quote", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return json.RawMessage(raw), nil
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
