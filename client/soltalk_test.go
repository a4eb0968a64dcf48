package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/chat", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "send 1 SOL to alice.sol", req["message"])
		assert.Equal(t, "wallet123", req["wallet_address"])

		json.NewEncoder(w).Encode(ChatResponse{
			Reply:    "done",
			IntentID: "intent-1",
		})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	resp, err := cl.Chat(context.Background(), "send 1 SOL to alice.sol", "wallet123")
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Reply)
	assert.Equal(t, "intent-1", resp.IntentID)
}

func TestChat_OmitsEmptyWallet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, present := req["wallet_address"]
		assert.False(t, present, "no wallet means the field is absent, not empty")

		json.NewEncoder(w).Encode(ChatResponse{Reply: "please connect your wallet"})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	resp, err := cl.Chat(context.Background(), "send 1 SOL", "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Reply)
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "something broke"})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	_, err := cl.Chat(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")
}

func TestGetIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/intents/intent-1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"intentId":    "intent-1",
			"wallet":      "wallet123",
			"txBase64":    "AAAA",
			"feeLamports": 5000,
			"createdAt":   1700000000000,
			"expiresAt":   1700000120000,
		})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	intent, err := cl.GetIntent(context.Background(), "intent-1")
	require.NoError(t, err)
	assert.Equal(t, "intent-1", intent.IntentID)
	assert.Equal(t, "AAAA", intent.TxBase64)
	assert.Equal(t, uint64(5000), intent.FeeLamports)
	assert.Equal(t, int64(1700000120000), intent.ExpiresAt)
	assert.Equal(t, int64(1700000120000), intent.ExpiresAtTime().UnixMilli())
}

func TestGetIntent_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "intent not found"})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	_, err := cl.GetIntent(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetIntent_Expired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(map[string]string{"error": "intent expired: prepare a new transaction"})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	_, err := cl.GetIntent(context.Background(), "old")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/swaps/quote", r.URL.Path)

		var req QuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SOL", req.InputToken)

		json.NewEncoder(w).Encode(map[string]string{"outAmount": "123"})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	raw, err := cl.Quote(context.Background(), QuoteRequest{
		InputToken:  "SOL",
		OutputToken: "USDC",
		Amount:      "1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"outAmount":"123"}`, string(raw))
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, nil, nil)
	assert.NoError(t, cl.Health(context.Background()))
}
