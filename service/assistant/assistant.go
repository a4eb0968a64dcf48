// Package assistant orchestrates the intent-to-transaction pipeline:
// classify the message, prepare a transfer or swap, compose the reply.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/soltalk/soltalk/service/compose"
	"github.com/soltalk/soltalk/service/events"
	"github.com/soltalk/soltalk/service/intent"
	"github.com/soltalk/soltalk/service/metrics"
	"github.com/soltalk/soltalk/service/solana"
	"github.com/soltalk/soltalk/service/swap"
)

// IntentStore persists prepared intents for their validity window.
// Implemented by db.Store; nil-able for setups without a database.
type IntentStore interface {
	SaveIntent(ctx context.Context, ui *solana.UnsignedIntent, wallet string) error
}

// Assistant wires the classifier, the preparers, and the composer into one
// message handler. It is stateless across messages.
type Assistant struct {
	classifier intent.Classifier
	transfers  *solana.Preparer
	swaps      *swap.Preparer
	store      IntentStore      // optional
	publisher  events.Publisher // optional
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New creates an Assistant. store and publisher may be nil; persistence and
// event publishing are hardening around the pipeline, not part of it.
func New(classifier intent.Classifier, transfers *solana.Preparer, swaps *swap.Preparer, store IntentStore, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Assistant {
	return &Assistant{
		classifier: classifier,
		transfers:  transfers,
		swaps:      swaps,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		metrics:    m,
	}
}

// HandleMessage runs one user message through the pipeline and returns the
// composed reply. Expected failures (missing parameters, bad recipients,
// unknown tokens) become conversational replies with a nil error; a non-nil
// error marks the outermost unexpected-failure boundary and the returned
// response is safe to show alongside a non-200 status.
func (a *Assistant) HandleMessage(ctx context.Context, message, walletAddress string) (resp *compose.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "panic while handling message", "panic", r)
			resp = compose.ComposeInternalError()
			err = fmt.Errorf("panic while handling message: %v", r)
		}
	}()

	parsed, err := a.classifier.Classify(ctx, message)
	if err != nil {
		a.logger.ErrorContext(ctx, "classifier call failed", "error", err)
		return compose.ComposeInternalError(), err
	}
	if parsed == nil {
		// No classifiable intent. Degrade to conversation, never to an error.
		return compose.ComposeFallback(), nil
	}

	switch parsed.Type {
	case intent.TypeQuery:
		if parsed.Query == "" {
			return compose.ComposeFallback(), nil
		}
		return compose.ComposeQueryAck(parsed.Query), nil

	case intent.TypeAction:
		switch parsed.Action {
		case intent.ActionTransfer:
			return a.handleTransfer(ctx, parsed, walletAddress), nil
		case intent.ActionSwap:
			return a.handleSwap(ctx, message, parsed, walletAddress), nil
		case "":
			return compose.ComposeFallback(), nil
		default:
			return compose.ComposeActionAck(parsed.Action), nil
		}
	}

	// Validate() makes this unreachable; keep the boundary anyway.
	return compose.ComposeFallback(), nil
}

// handleTransfer applies the transfer precondition ladder and prepares the
// unsigned transaction.
func (a *Assistant) handleTransfer(ctx context.Context, parsed *intent.ParsedIntent, walletAddress string) *compose.Response {
	start := time.Now()

	var params intent.Params
	if parsed.Params != nil {
		params = *parsed.Params
	}

	// Missing parameters beat the wallet check: ask the clarifying question
	// first so the user isn't bounced twice.
	var missing []string
	if params.Recipient == "" {
		missing = append(missing, "recipient")
	}
	if params.Amount == "" {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		a.recordPreparation("transfer", "missing_params", start)
		return compose.ComposeError(&solana.MissingParamsError{Missing: missing})
	}

	if walletAddress == "" {
		a.recordPreparation("transfer", "wallet_not_connected", start)
		return compose.ComposeConnectWallet()
	}

	ui, err := a.transfers.PrepareTransfer(ctx, solana.TransferRequest{
		Wallet:    walletAddress,
		Recipient: params.Recipient,
		Amount:    params.Amount,
		Token:     params.TokenOrEmpty(),
	})
	if err != nil {
		a.recordPreparation("transfer", transferErrorStatus(err), start)
		a.logger.InfoContext(ctx, "transfer preparation failed",
			"wallet", walletAddress,
			"error", err,
		)
		return compose.ComposeError(err)
	}
	a.recordPreparation("transfer", "success", start)

	a.persistIntent(ctx, ui, walletAddress)
	a.publishIntent(ctx, &events.IntentPreparedEvent{
		IntentID:      ui.IntentID,
		Kind:          "transfer",
		WalletAddress: walletAddress,
		Recipient:     ui.Preview.Recipient,
		Amount:        ui.Preview.Amount,
		Token:         params.TokenOrEmpty(),
		FeeLamports:   ui.FeeLamports,
		ExpiresAt:     time.UnixMilli(ui.ExpiresAtMs).UTC(),
	})

	return compose.ComposeTransfer(ui)
}

// handleSwap extracts and validates swap parameters, then composes the
// handoff payload. Extraction runs before the wallet check so a user
// missing both gets the more specific question first.
func (a *Assistant) handleSwap(ctx context.Context, message string, parsed *intent.ParsedIntent, walletAddress string) *compose.Response {
	start := time.Now()

	params, err := a.swaps.PrepareSwap(ctx, message, parsed.Params)
	if err != nil {
		a.recordPreparation("swap", swapErrorStatus(err), start)
		a.logger.InfoContext(ctx, "swap preparation failed",
			"wallet", walletAddress,
			"error", err,
		)
		return compose.ComposeError(err)
	}

	if walletAddress == "" {
		a.recordPreparation("swap", "wallet_not_connected", start)
		return compose.ComposeConnectWallet()
	}
	a.recordPreparation("swap", "success", start)

	a.publishIntent(ctx, &events.IntentPreparedEvent{
		IntentID:      uuid.NewString(),
		Kind:          "swap",
		WalletAddress: walletAddress,
		Amount:        strconv.FormatFloat(params.Amount, 'f', -1, 64),
		Token:         params.InputToken,
	})

	return compose.ComposeSwap(params)
}

// persistIntent stores the intent server-side for its validity window.
// Storage is hardening; failure is logged and the reply still carries the
// full payload inline.
func (a *Assistant) persistIntent(ctx context.Context, ui *solana.UnsignedIntent, wallet string) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveIntent(ctx, ui, wallet); err != nil {
		a.logger.WarnContext(ctx, "failed to persist intent",
			"intent_id", ui.IntentID,
			"error", err,
		)
	}
}

// publishIntent emits the prepared-intent event. Delivery failures are
// logged, never surfaced.
func (a *Assistant) publishIntent(ctx context.Context, event *events.IntentPreparedEvent) {
	if a.publisher == nil {
		return
	}
	event.PublishedAt = time.Now().UTC()
	if err := a.publisher.PublishIntentPrepared(ctx, event); err != nil {
		a.logger.WarnContext(ctx, "failed to publish intent event",
			"intent_id", event.IntentID,
			"error", err,
		)
	}
}

func (a *Assistant) recordPreparation(kind, status string, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordPreparation(kind, status, time.Since(start).Seconds())
	}
}

// transferErrorStatus maps prepare errors to a metric label.
func transferErrorStatus(err error) string {
	switch err.(type) {
	case *solana.MissingParamsError:
		return "missing_params"
	case *solana.InvalidRecipientError:
		return "invalid_recipient"
	case *solana.ResolutionError:
		return "resolution_failed"
	case *solana.UnknownTokenError:
		return "unknown_token"
	case *solana.InvalidAmountError:
		return "invalid_amount"
	}
	return "construction_failed"
}

// swapErrorStatus maps swap extraction errors to a metric label.
func swapErrorStatus(err error) string {
	switch err.(type) {
	case *swap.MissingSwapParamsError:
		return "missing_params"
	case *swap.SelfSwapError:
		return "self_swap"
	case *solana.InvalidAmountError:
		return "invalid_amount"
	}
	return "error"
}
