package intent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/soltalk/soltalk/service/metrics"
)

// GeminiClassifier classifies messages with the Gemini API. It makes one
// generation attempt per message; retry policy belongs to the caller.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGeminiClassifier creates a classifier backed by the Gemini API.
// If m is nil, no metrics are recorded.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, m *metrics.Metrics, logger *slog.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClassifier{
		client:  client,
		model:   model,
		logger:  logger,
		metrics: m,
	}, nil
}

// Classify sends the message to the model with the fixed system instruction
// and applies the strict output contract. Non-conforming model output is a
// nil intent, not an error.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*ParsedIntent, error) {
	start := time.Now()

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0),
		},
	)
	duration := time.Since(start).Seconds()

	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordClassifierCall("error", c.model, duration)
		}
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}

	raw := result.Text()
	parsed := ParseModelOutput(raw)
	if parsed == nil {
		if c.metrics != nil {
			c.metrics.RecordClassifierCall("unparseable", c.model, duration)
		}
		c.logger.WarnContext(ctx, "classifier output did not conform to contract",
			"model", c.model,
			"output_len", len(raw),
		)
		return nil, nil
	}

	if c.metrics != nil {
		c.metrics.RecordClassifierCall("ok", c.model, duration)
	}
	c.logger.DebugContext(ctx, "classified message",
		"type", parsed.Type,
		"query", parsed.Query,
		"action", parsed.Action,
	)
	return parsed, nil
}
