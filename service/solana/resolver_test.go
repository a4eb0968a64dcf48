package solana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltalk/soltalk/service/cache"
)

var (
	testAddr  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testAddr2 = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
)

// stubDomainResolver answers from a fixed table and counts lookups.
type stubDomainResolver struct {
	addresses map[string]solana.PublicKey
	err       error
	calls     int
}

func (s *stubDomainResolver) Resolve(ctx context.Context, domain string) (solana.PublicKey, error) {
	s.calls++
	if s.err != nil {
		return solana.PublicKey{}, s.err
	}
	addr, ok := s.addresses[domain]
	if !ok {
		return solana.PublicKey{}, ErrDomainNotRegistered
	}
	return addr, nil
}

func newTestResolver(stub *stubDomainResolver, clock func() time.Time) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []cache.Option[solana.PublicKey]{}
	if clock != nil {
		opts = append(opts, cache.WithClock[solana.PublicKey](clock))
	}
	c := cache.New[solana.PublicKey](5*time.Minute, opts...)
	return NewResolver(stub, c, nil, logger)
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress(testAddr.String()))
	assert.False(t, IsValidAddress("not-an-address"))
	assert.False(t, IsValidAddress(""))
	assert.False(t, IsValidAddress("alice.sol"))
}

func TestIsValidRecipient(t *testing.T) {
	assert.True(t, IsValidRecipient(testAddr.String()))
	assert.True(t, IsValidRecipient("alice.sol"))
	assert.True(t, IsValidRecipient("@alice.sol"))
	assert.True(t, IsValidRecipient("  Alice.SOL  "))
	assert.False(t, IsValidRecipient("alice"))
	assert.False(t, IsValidRecipient("alice.eth"))
	assert.False(t, IsValidRecipient(""))
}

func TestResolveRecipient_Address(t *testing.T) {
	stub := &stubDomainResolver{}
	r := newTestResolver(stub, nil)

	res, err := r.ResolveRecipient(context.Background(), testAddr.String())
	require.NoError(t, err)
	assert.Equal(t, testAddr, res.Address)
	assert.False(t, res.Resolved)
	assert.Zero(t, stub.calls, "addresses must never hit the name service")
}

func TestResolveRecipient_Domain(t *testing.T) {
	stub := &stubDomainResolver{addresses: map[string]solana.PublicKey{"alice.sol": testAddr}}
	r := newTestResolver(stub, nil)

	res, err := r.ResolveRecipient(context.Background(), "alice.sol")
	require.NoError(t, err)
	assert.Equal(t, testAddr, res.Address)
	assert.True(t, res.Resolved)
	assert.Equal(t, "alice.sol", res.Domain)
}

func TestResolveRecipient_NormalizesInput(t *testing.T) {
	stub := &stubDomainResolver{addresses: map[string]solana.PublicKey{"alice.sol": testAddr}}
	r := newTestResolver(stub, nil)

	// Leading @, surrounding whitespace, and case are all normalized away.
	for _, input := range []string{"@alice.sol", " alice.sol ", "Alice.SOL", "@ALICE.sol"} {
		res, err := r.ResolveRecipient(context.Background(), input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, testAddr, res.Address)
		assert.Equal(t, "alice.sol", res.Domain)
	}

	// All four variants share one cache entry: only the first one looked up.
	assert.Equal(t, 1, stub.calls)
}

func TestResolveRecipient_Invalid(t *testing.T) {
	stub := &stubDomainResolver{}
	r := newTestResolver(stub, nil)

	_, err := r.ResolveRecipient(context.Background(), "not a recipient")
	require.Error(t, err)

	var invalid *InvalidRecipientError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "not a recipient", invalid.Input)
	assert.Zero(t, stub.calls)
}

func TestResolveRecipient_CacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	stub := &stubDomainResolver{addresses: map[string]solana.PublicKey{"alice.sol": testAddr}}
	r := newTestResolver(stub, clock)

	_, err := r.ResolveRecipient(context.Background(), "alice.sol")
	require.NoError(t, err)
	require.Equal(t, 1, stub.calls)

	// Within the TTL: served from cache.
	now = now.Add(4 * time.Minute)
	_, err = r.ResolveRecipient(context.Background(), "alice.sol")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)

	// Past the TTL: fresh lookup.
	now = now.Add(2 * time.Minute)
	_, err = r.ResolveRecipient(context.Background(), "alice.sol")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestResolveRecipient_FailureNotCached(t *testing.T) {
	stub := &stubDomainResolver{err: errors.New("rpc timeout")}
	r := newTestResolver(stub, nil)

	_, err := r.ResolveRecipient(context.Background(), "alice.sol")
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "alice.sol", resErr.Domain)
	assert.False(t, resErr.NotRegistered())

	// Lookup succeeds once the name service recovers; the failure was not
	// pinned in the cache.
	stub.err = nil
	stub.addresses = map[string]solana.PublicKey{"alice.sol": testAddr}
	res, err := r.ResolveRecipient(context.Background(), "alice.sol")
	require.NoError(t, err)
	assert.Equal(t, testAddr, res.Address)
	assert.Equal(t, 2, stub.calls)
}

func TestResolveRecipient_NotRegistered(t *testing.T) {
	stub := &stubDomainResolver{}
	r := newTestResolver(stub, nil)

	_, err := r.ResolveRecipient(context.Background(), "nobody.sol")
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.True(t, resErr.NotRegistered())
}

func TestResolutionError_NotRegisteredMatchesSentinel(t *testing.T) {
	// Only the sentinel (possibly wrapped) counts as not-registered; a
	// transient error whose message happens to mention it does not.
	notRegistered := &ResolutionError{Domain: "a.sol", Err: ErrDomainNotRegistered}
	assert.True(t, notRegistered.NotRegistered())

	wrapped := &ResolutionError{Domain: "a.sol", Err: fmt.Errorf("lookup: %w", ErrDomainNotRegistered)}
	assert.True(t, wrapped.NotRegistered())

	collision := &ResolutionError{Domain: "a.sol", Err: errors.New("upstream said: domain is not registered (retrying)")}
	assert.False(t, collision.NotRegistered())
}

func TestSNSResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/resolve/alice":
			// The .sol suffix is stripped before the API call.
			fmt.Fprintf(w, `{"s":"ok","result":%q}`, testAddr.String())
		case "/resolve/broken":
			fmt.Fprint(w, `{"s":"ok","result":"not-base58"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"s":"error","result":"Domain not found"}`)
		}
	}))
	defer srv.Close()

	r := NewSNSResolver(srv.URL)

	addr, err := r.Resolve(context.Background(), "alice.sol")
	require.NoError(t, err)
	assert.Equal(t, testAddr, addr)

	_, err = r.Resolve(context.Background(), "nobody.sol")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomainNotRegistered)

	_, err = r.Resolve(context.Background(), "broken.sol")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDomainNotRegistered)
}

func TestResolveRecipients_Batch(t *testing.T) {
	stub := &stubDomainResolver{addresses: map[string]solana.PublicKey{"alice.sol": testAddr}}
	r := newTestResolver(stub, nil)

	inputs := []string{"alice.sol", "nobody.sol", testAddr2.String(), "garbage"}
	results := r.ResolveRecipients(context.Background(), inputs)
	require.Len(t, results, 4)

	// Results are positional and failures are independent.
	require.NoError(t, results[0].Err)
	assert.Equal(t, testAddr, results[0].Resolution.Address)

	require.Error(t, results[1].Err)
	assert.Nil(t, results[1].Resolution)

	require.NoError(t, results[2].Err)
	assert.Equal(t, testAddr2, results[2].Resolution.Address)
	assert.False(t, results[2].Resolution.Resolved)

	require.Error(t, results[3].Err)
	var invalid *InvalidRecipientError
	assert.ErrorAs(t, results[3].Err, &invalid)
}
