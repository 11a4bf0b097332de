package orderly

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for the failure classes every operation can surface.
// Call sites wrap these with context via errors.Wrap so callers can still
// match with errors.Is.
var (
	// ErrInvalidArgument indicates malformed or missing caller input. It is
	// always raised before any network I/O happens.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingNonce indicates a registration or withdrawal nonce was not
	// supplied to a message builder. Nonces are issued by the exchange and
	// must never be invented locally.
	ErrMissingNonce = errors.New("missing exchange nonce")

	// ErrInvalidAmount indicates a non-positive amount or one below the
	// protocol minimum.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds indicates the on-chain token balance does not
	// cover the requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAllowanceNotObserved indicates the vault allowance did not become
	// visible over RPC within the bounded polling window after a confirmed
	// approval. This is distinct from an on-chain revert.
	ErrAllowanceNotObserved = errors.New("allowance not observed after approval")

	// ErrConfirmationTimeout indicates a broadcast transaction was not mined
	// within the configured wait window. The transaction may still land.
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

	// ErrChainCallFailed indicates an RPC error or contract revert.
	ErrChainCallFailed = errors.New("chain call failed")
)

// ExchangeError carries an exchange rejection back to the caller. It covers
// both transport-level failures (non-2xx status) and payload-level failures
// (HTTP 200 with success=false); Status distinguishes the two. RawBody is
// kept verbatim for diagnostics and manual retry.
type ExchangeError struct {
	Status  int
	Code    int
	Message string
	RawBody []byte
}

func (e *ExchangeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("exchange rejected request (status=%d code=%d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("exchange rejected request (status=%d): %s", e.Status, e.RawBody)
}

// IsExchangeRejected reports whether err (or anything it wraps) is an
// exchange rejection, returning the rejection details when it is.
func IsExchangeRejected(err error) (*ExchangeError, bool) {
	var ee *ExchangeError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
