package solana

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"

	"github.com/soltalk/soltalk/service/metrics"
)

// PreparerConfig carries the tunables of transfer preparation. The fee
// fallback and ATA rent values track current network economics; defaults
// live in the config package.
type PreparerConfig struct {
	FeeFallbackLamports uint64
	ATARentLamports     uint64
	IntentTTL           time.Duration
}

// TransferRequest is the validated-intent input to PrepareTransfer.
// Amount is decimal text in human units. An empty Token means native SOL.
type TransferRequest struct {
	Wallet    string
	Recipient string
	Amount    string
	Token     string
}

// Preparer builds unsigned transfer transactions. It is stateless across
// calls: every preparation fetches what it needs from scratch.
type Preparer struct {
	rpc      RPCClient
	resolver *Resolver
	registry *Registry
	cfg      PreparerConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string
	now      func() time.Time
}

// NewPreparer creates a transfer preparer. The endpoint parameter labels
// RPC metrics. If m is nil, no metrics are recorded.
func NewPreparer(rpcClient RPCClient, resolver *Resolver, registry *Registry, cfg PreparerConfig, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Preparer {
	return &Preparer{
		rpc:      rpcClient,
		resolver: resolver,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
		now:      time.Now,
	}
}

// WithClock overrides the preparer's time source. Tests use this to pin
// CreatedAt/ExpiresAt.
func (p *Preparer) WithClock(now func() time.Time) *Preparer {
	p.now = now
	return p
}

// PrepareTransfer validates the request, resolves the recipient and token,
// and builds a serialized unsigned transaction with a bounded validity
// window. Construction is all-or-nothing: a failure produces no artifact.
//
// It never signs and never broadcasts.
func (p *Preparer) PrepareTransfer(ctx context.Context, req TransferRequest) (*UnsignedIntent, error) {
	// Missing parameters come first so the caller can ask a clarifying
	// question instead of reporting a format error on an empty string.
	var missing []string
	if req.Recipient == "" {
		missing = append(missing, "recipient")
	}
	if req.Amount == "" {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, &MissingParamsError{Missing: missing}
	}

	sender, err := solana.PublicKeyFromBase58(req.Wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", req.Wallet, err)
	}

	if !IsValidRecipient(req.Recipient) {
		return nil, &InvalidRecipientError{Input: req.Recipient}
	}

	resolution, err := p.resolver.ResolveRecipient(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	var tokenCfg *TokenConfig
	if !IsNativeToken(req.Token) {
		tokenCfg, err = p.registry.GetTokenConfig(ctx, req.Token)
		if err != nil {
			return nil, err
		}
	}

	// All preconditions hold; everything below is construction.
	var (
		instructions []solana.Instruction
		baseUnits    uint64
		createsATA   bool
	)

	if tokenCfg == nil {
		baseUnits, err = ToBaseUnits(amount, NativeDecimals)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions,
			system.NewTransferInstruction(baseUnits, sender, resolution.Address).Build(),
		)
	} else {
		baseUnits, err = ToBaseUnits(amount, tokenCfg.Decimals)
		if err != nil {
			return nil, err
		}

		senderATA, _, err := solana.FindAssociatedTokenAddress(sender, tokenCfg.Mint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive sender token account: %w", err)
		}
		recipientATA, _, err := solana.FindAssociatedTokenAddress(resolution.Address, tokenCfg.Mint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive recipient token account: %w", err)
		}

		exists, err := p.recipientATAExists(ctx, recipientATA)
		if err != nil {
			return nil, fmt.Errorf("failed to check recipient token account: %w", err)
		}
		if !exists {
			createsATA = true
			instructions = append(instructions,
				associatedtokenaccount.NewCreateInstruction(sender, resolution.Address, tokenCfg.Mint).Build(),
			)
		}

		instructions = append(instructions,
			token.NewTransferCheckedInstruction(
				baseUnits,
				tokenCfg.Decimals,
				senderATA,
				tokenCfg.Mint,
				recipientATA,
				sender,
				nil,
			).Build(),
		)
	}

	blockhash, err := p.latestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(sender))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	txBase64, err := tx.ToBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	// Fee estimation is advisory and must never block preparation.
	fee := p.estimateFee(ctx, tx)
	if createsATA {
		fee += p.cfg.ATARentLamports
	}

	now := p.now()
	kind := "SOL_TRANSFER"
	if tokenCfg != nil {
		kind = "SPL_TRANSFER"
	}

	var domainInfo *DomainInfo
	if resolution.Resolved {
		domainInfo = &DomainInfo{
			OriginalInput:   req.Recipient,
			Domain:          resolution.Domain,
			ResolvedAddress: resolution.Address.String(),
			IsResolved:      true,
		}
	}

	paymentURL := BuildSolanaPayURL(resolution.Address.String(), amount.String(), tokenCfg)
	qrCode, err := GenerateQRCode(paymentURL)
	if err != nil {
		// QR code is display sugar; drop it rather than fail the prepare.
		p.logger.WarnContext(ctx, "failed to generate payment QR code", "error", err)
		qrCode = ""
	}

	intent := &UnsignedIntent{
		IntentID: uuid.New().String(),
		TxBase64: txBase64,
		Preview: Preview{
			Kind:                kind,
			Sender:              sender.String(),
			Recipient:           resolution.Address.String(),
			Amount:              amount.String(),
			AmountBaseUnits:     baseUnits,
			Token:               tokenCfg,
			DomainInfo:          domainInfo,
			CreatesTokenAccount: createsATA,
			PaymentURL:          paymentURL,
			QRCodeData:          qrCode,
		},
		FeeLamports: fee,
		CreatedAtMs: now.UnixMilli(),
		ExpiresAtMs: now.Add(p.cfg.IntentTTL).UnixMilli(),
	}

	p.logger.InfoContext(ctx, "prepared unsigned transfer",
		"intent_id", intent.IntentID,
		"kind", kind,
		"sender", sender.String(),
		"recipient", resolution.Address.String(),
		"base_units", baseUnits,
		"fee_lamports", fee,
		"creates_token_account", createsATA,
	)

	return intent, nil
}

// recipientATAExists checks on-chain whether the recipient's associated
// token account already exists.
func (p *Preparer) recipientATAExists(ctx context.Context, ata solana.PublicKey) (bool, error) {
	start := time.Now()
	exists, err := AccountExists(ctx, p.rpc, ata)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall("GetAccountInfo", status, p.endpoint, duration)
	}
	return exists, err
}

// latestBlockhash fetches the blockhash that bounds the transaction's
// validity window.
func (p *Preparer) latestBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	out, err := p.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall("GetLatestBlockhash", status, p.endpoint, duration)
	}

	if err != nil {
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("rpc returned empty blockhash result")
	}
	return out.Value.Blockhash, nil
}

// estimateFee asks the RPC node for the fee of the constructed message,
// falling back to the configured fixed estimate on any failure. Exactly one
// attempt; this is a soft-fallback, not a retry loop.
func (p *Preparer) estimateFee(ctx context.Context, tx *solana.Transaction) uint64 {
	msgBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		p.logger.WarnContext(ctx, "failed to marshal message for fee estimate", "error", err)
		if p.metrics != nil {
			p.metrics.RecordFeeEstimateFallback(p.endpoint)
		}
		return p.cfg.FeeFallbackLamports
	}
	msgBase64 := base64.StdEncoding.EncodeToString(msgBytes)

	start := time.Now()
	out, err := p.rpc.GetFeeForMessage(ctx, msgBase64, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall("GetFeeForMessage", status, p.endpoint, duration)
	}

	if err != nil || out == nil || out.Value == nil {
		p.logger.WarnContext(ctx, "fee estimation failed, using fallback",
			"error", err,
			"fallback_lamports", p.cfg.FeeFallbackLamports,
		)
		if p.metrics != nil {
			p.metrics.RecordFeeEstimateFallback(p.endpoint)
		}
		return p.cfg.FeeFallbackLamports
	}
	return *out.Value
}
