package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soltalk/soltalk/service/metrics"
	"github.com/soltalk/soltalk/service/solana"
)

// ErrIntentNotFound is returned when no intent exists for the given id.
var ErrIntentNotFound = errors.New("intent not found")

// ErrIntentExpired is returned when the intent exists but its validity
// window has closed. The stored txBase64 must not be handed out past
// expiry: the embedded blockhash is no longer valid for broadcast.
var ErrIntentExpired = errors.New("intent expired")

// Store provides database operations for prepared intents.
// Persisting intents server-side with a TTL hardens the handoff to the
// signing UI; the client still receives the full payload inline, so a
// client that never calls back loses nothing.
type Store struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewStore creates a new Store with the given database connection pool.
// If m is nil, no metrics are recorded.
func NewStore(pool *pgxpool.Pool, m *metrics.Metrics) *Store {
	return &Store{pool: pool, metrics: m}
}

// IntentRecord is the persisted form of a prepared intent.
type IntentRecord struct {
	IntentID    string
	Wallet      string
	TxBase64    string
	Preview     solana.Preview
	FeeLamports uint64
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// SaveIntent persists a prepared unsigned intent. Saving opportunistically
// sweeps expired rows so the table never grows beyond live intents.
func (s *Store) SaveIntent(ctx context.Context, ui *solana.UnsignedIntent, wallet string) error {
	previewJSON, err := json.Marshal(ui.Preview)
	if err != nil {
		return fmt.Errorf("failed to marshal preview: %w", err)
	}

	start := time.Now()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO intents (intent_id, wallet, tx_base64, preview, fee_lamports, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ui.IntentID,
		wallet,
		ui.TxBase64,
		previewJSON,
		int64(ui.FeeLamports),
		time.UnixMilli(ui.CreatedAtMs).UTC(),
		time.UnixMilli(ui.ExpiresAtMs).UTC(),
	)
	if s.metrics != nil {
		s.metrics.RecordDBQuery("insert", "intents", time.Since(start).Seconds(), err)
	}
	if err != nil {
		return fmt.Errorf("failed to save intent: %w", err)
	}

	// Best-effort sweep; failure here never fails the save.
	_ = s.DeleteExpired(ctx)

	return nil
}

// GetIntent retrieves a prepared intent by id. Expired intents are reported
// as ErrIntentExpired, never returned.
func (s *Store) GetIntent(ctx context.Context, intentID string) (*IntentRecord, error) {
	start := time.Now()
	row := s.pool.QueryRow(ctx, `
		SELECT intent_id, wallet, tx_base64, preview, fee_lamports, created_at, expires_at
		FROM intents
		WHERE intent_id = $1`,
		intentID,
	)

	var (
		rec         IntentRecord
		previewJSON []byte
		feeLamports int64
	)
	err := row.Scan(&rec.IntentID, &rec.Wallet, &rec.TxBase64, &previewJSON, &feeLamports, &rec.CreatedAt, &rec.ExpiresAt)
	if s.metrics != nil {
		s.metrics.RecordDBQuery("select", "intents", time.Since(start).Seconds(), err)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get intent: %w", err)
	}

	if err := json.Unmarshal(previewJSON, &rec.Preview); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preview: %w", err)
	}
	rec.FeeLamports = uint64(feeLamports)

	if !time.Now().Before(rec.ExpiresAt) {
		return nil, ErrIntentExpired
	}

	return &rec, nil
}

// DeleteExpired removes all intents whose validity window has closed.
func (s *Store) DeleteExpired(ctx context.Context) error {
	start := time.Now()
	_, err := s.pool.Exec(ctx, `DELETE FROM intents WHERE expires_at <= now()`)
	if s.metrics != nil {
		s.metrics.RecordDBQuery("delete", "intents", time.Since(start).Seconds(), err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete expired intents: %w", err)
	}
	return nil
}
