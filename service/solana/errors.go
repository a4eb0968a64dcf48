package solana

import (
	"errors"
	"fmt"
	"strings"
)

// The error types below model the expected, user-recoverable failure modes
// of transfer preparation. Handlers match on them to compose a specific
// conversational reply rather than a generic failure.

// InvalidRecipientError indicates the recipient string is neither a valid
// Solana address nor a domain-shaped name.
type InvalidRecipientError struct {
	Input string
}

func (e *InvalidRecipientError) Error() string {
	return fmt.Sprintf("invalid recipient %q: not a valid Solana address or .sol domain", e.Input)
}

// ResolutionError indicates a .sol domain could not be resolved to an
// address. The underlying cause distinguishes an unregistered domain from a
// transient lookup failure.
type ResolutionError struct {
	Domain string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve domain %q: %v", e.Domain, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NotRegistered reports whether the failure was a definitive "this domain
// does not exist" answer from the name service, as opposed to a transient
// network problem.
func (e *ResolutionError) NotRegistered() bool {
	return errors.Is(e.Err, ErrDomainNotRegistered)
}

// ErrDomainNotRegistered is the definitive not-found answer from the name
// service.
var ErrDomainNotRegistered = errors.New("domain is not registered")

// UnknownTokenError indicates a token identifier that is neither a known
// symbol nor a queryable mint address.
type UnknownTokenError struct {
	Identifier string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token %q: not a known symbol or valid mint address", e.Identifier)
}

// InvalidAmountError indicates the amount string did not parse as a plain,
// finite, positive decimal. The raw input is preserved so replies can echo
// it back.
type InvalidAmountError struct {
	Raw string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: must be a positive decimal number", e.Raw)
}

// MissingParamsError indicates required transfer parameters were absent
// from the classified intent. Missing names exactly which ones, so the
// clarifying question can list them.
type MissingParamsError struct {
	Missing []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("missing required parameters: %s", strings.Join(e.Missing, ", "))
}
