package solana

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-resty/resty/v2"

	"github.com/soltalk/soltalk/service/cache"
	"github.com/soltalk/soltalk/service/metrics"
)

// DomainSuffix is the name-service suffix accepted by the resolver.
const DomainSuffix = ".sol"

// DomainResolver performs the external name-service lookup for a .sol
// domain. Production uses the SNS resolver HTTP API; tests inject a stub.
type DomainResolver interface {
	Resolve(ctx context.Context, domain string) (solana.PublicKey, error)
}

// Resolution is the outcome of classifying and resolving a recipient string.
// If Resolved is true, Domain is the .sol name the address was looked up
// from; otherwise Address is the original input, already validated.
type Resolution struct {
	Domain   string
	Address  solana.PublicKey
	Resolved bool
}

// Resolver classifies recipient strings and resolves .sol domains.
// Successful lookups are cached by lowercased domain; failures are not.
type Resolver struct {
	domains DomainResolver
	cache   *cache.TTLStore[solana.PublicKey]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewResolver creates a Resolver. The cache is owned by the caller so tests
// can inject a fresh instance per case. If m is nil, no metrics are recorded.
func NewResolver(domains DomainResolver, c *cache.TTLStore[solana.PublicKey], m *metrics.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		domains: domains,
		cache:   c,
		logger:  logger,
		metrics: m,
	}
}

// IsValidAddress reports whether s parses as a well-formed Solana public
// key. Purely syntactic; never makes a network call.
func IsValidAddress(s string) bool {
	_, err := solana.PublicKeyFromBase58(s)
	return err == nil
}

// IsDomainName reports whether s looks like a .sol domain after trimming
// and dropping a leading "@". Purely syntactic; no registration check.
func IsDomainName(s string) bool {
	return strings.HasSuffix(strings.ToLower(normalizeRecipient(s)), DomainSuffix)
}

// IsValidRecipient reports whether s is acceptable recipient input: either
// a valid address or a domain-shaped name.
func IsValidRecipient(s string) bool {
	n := normalizeRecipient(s)
	return IsValidAddress(n) || IsDomainName(n)
}

// normalizeRecipient trims whitespace and strips one leading "@".
func normalizeRecipient(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

// ResolveRecipient classifies input as an address or a .sol domain and
// resolves it. A string that parses as an address is treated as one even if
// it happens to end in the domain suffix; this keeps the common case free
// of name-service calls.
func (r *Resolver) ResolveRecipient(ctx context.Context, input string) (*Resolution, error) {
	trimmed := normalizeRecipient(input)

	if pk, err := solana.PublicKeyFromBase58(trimmed); err == nil {
		return &Resolution{Address: pk, Resolved: false}, nil
	}

	if !IsDomainName(trimmed) {
		return nil, &InvalidRecipientError{Input: input}
	}

	domain := strings.ToLower(trimmed)

	if addr, ok := r.cache.Get(domain); ok {
		if r.metrics != nil {
			r.metrics.RecordDomainCache("hit")
		}
		r.logger.DebugContext(ctx, "domain resolved from cache", "domain", domain)
		return &Resolution{Domain: domain, Address: addr, Resolved: true}, nil
	}
	if r.metrics != nil {
		r.metrics.RecordDomainCache("miss")
	}

	addr, err := r.domains.Resolve(ctx, domain)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordDomainLookup("error")
		}
		r.logger.WarnContext(ctx, "domain resolution failed", "domain", domain, "error", err)
		// Failures are never cached; the next attempt gets a fresh lookup.
		return nil, &ResolutionError{Domain: domain, Err: err}
	}
	if r.metrics != nil {
		r.metrics.RecordDomainLookup("success")
	}

	r.cache.Set(domain, addr)
	r.logger.DebugContext(ctx, "domain resolved", "domain", domain, "address", addr.String())

	return &Resolution{Domain: domain, Address: addr, Resolved: true}, nil
}

// RecipientResult pairs one batch input with its resolution or error.
type RecipientResult struct {
	Input      string
	Resolution *Resolution
	Err        error
}

// ResolveRecipients resolves each input independently. A failure on one
// never aborts the others; results are positional.
func (r *Resolver) ResolveRecipients(ctx context.Context, inputs []string) []RecipientResult {
	results := make([]RecipientResult, len(inputs))
	for i, input := range inputs {
		res, err := r.ResolveRecipient(ctx, input)
		results[i] = RecipientResult{Input: input, Resolution: res, Err: err}
	}
	return results
}

// snsResolver resolves .sol domains via the public SNS resolver HTTP API.
type snsResolver struct {
	http *resty.Client
}

// NewSNSResolver creates a DomainResolver backed by the SNS resolver API at
// baseURL (e.g. https://sns-sdk-proxy.bonfida.workers.dev).
func NewSNSResolver(baseURL string) DomainResolver {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	return &snsResolver{http: client}
}

// snsResolveResponse is the wire shape of the SNS resolver's /resolve reply.
type snsResolveResponse struct {
	Status string `json:"s"`
	Result string `json:"result"`
}

func (s *snsResolver) Resolve(ctx context.Context, domain string) (solana.PublicKey, error) {
	name := strings.TrimSuffix(domain, DomainSuffix)

	var out snsResolveResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("domain", name).
		Get("/resolve/{domain}")
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("name service lookup failed: %w", err)
	}
	if resp.StatusCode() == 404 || (out.Status != "ok" && out.Status != "") {
		return solana.PublicKey{}, ErrDomainNotRegistered
	}
	if resp.IsError() {
		return solana.PublicKey{}, fmt.Errorf("name service returned status %d", resp.StatusCode())
	}

	pk, err := solana.PublicKeyFromBase58(out.Result)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("name service returned malformed address %q: %w", out.Result, err)
	}
	return pk, nil
}
