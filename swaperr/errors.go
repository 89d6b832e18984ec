// Package swaperr defines the typed error taxonomy shared by every
// component of the swap engine. Callers are expected to use errors.As
// to discriminate, never a bare string compare.
package swaperr

import (
	"fmt"

	"github.com/arkade-os/boltz-swap-go/swap"
)

// NetworkError is raised whenever the swap provider's HTTP transport
// fails, either because of a non-2xx response or a lower-level
// transport failure. StatusCode is 0 for transport-level failures
// (no response was ever received).
type NetworkError struct {
	StatusCode int
	ErrorData  map[string]interface{}
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("swap provider network error (status %d): %v",
			e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("swap provider network error (status %d): %v",
		e.StatusCode, e.ErrorData)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// SchemaError is raised when a provider response fails field-by-field
// validation. It is never retried: a malformed response indicates a
// protocol version mismatch, not a transient failure.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: field %q: %s", e.Field, e.Reason)
}

// ValidationError is raised for caller-supplied bad input: empty
// address, non-positive amount, wrong pubkey length, both or neither
// of senderLockAmount/receiverLockAmount set, an amount outside the
// provider's advertised fees+limits window, etc. Limits is set only
// for the last case, enumerating the window the caller must retry
// within (spec §8: "rejected client-side with enumerated limits in
// error body").
type ValidationError struct {
	Field  string
	Reason string
	Limits *swap.Limits
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Limits != nil {
		msg = fmt.Sprintf("%s (min %d sat, max %d sat)", msg, e.Limits.MinSat, e.Limits.MaxSat)
	}
	return fmt.Sprintf("validation error: %s", msg)
}

// InvoiceExpiredError is raised when a reverse or submarine swap's
// invoice passes its expiry before settlement.
type InvoiceExpiredError struct {
	SwapID string
}

func (e *InvoiceExpiredError) Error() string {
	return fmt.Sprintf("invoice expired for swap %s", e.SwapID)
}

// SwapExpiredError is raised when the swap itself (not its invoice)
// reaches the swap.expired terminal status.
type SwapExpiredError struct {
	SwapID string
}

func (e *SwapExpiredError) Error() string {
	return fmt.Sprintf("swap %s expired", e.SwapID)
}

// TransactionFailedError wraps the transaction.failed terminal status.
type TransactionFailedError struct {
	SwapID string
	Reason string
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction failed for swap %s: %s", e.SwapID, e.Reason)
}

// TransactionRefundedError wraps the transaction.refunded terminal
// status, surfaced to callers awaiting completion of a swap that ended
// up refunded instead of claimed/settled.
type TransactionRefundedError struct {
	SwapID string
}

func (e *TransactionRefundedError) Error() string {
	return fmt.Sprintf("transaction refunded for swap %s", e.SwapID)
}

// SecurityError indicates the locally rebuilt VHTLC does not match the
// provider's advertised lockup address (invariant I2). This is never
// retried and must be logged prominently by the caller: it indicates
// either a protocol bug or an adversarial counterparty.
type SecurityError struct {
	SwapID  string
	Message string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security error on swap %s: %s", e.SwapID, e.Message)
}

// PollingTimeoutError is raised by the monitor's polling fallback when
// consecutive poll attempts for a swap are exhausted without reaching
// a terminal or reconciled status.
type PollingTimeoutError struct {
	SwapID   string
	Attempts int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("polling timed out for swap %s after %d attempts",
		e.SwapID, e.Attempts)
}

// ErrStopped is returned by in-flight waits (waitForSwapCompletion,
// waitAndClaim, ...) when the monitor is stopped while they are
// pending.
var ErrStopped = fmt.Errorf("manager stopped")

// ErrUnknownSwap is returned when an operation references a swap id
// the monitor or repository has never seen.
var ErrUnknownSwap = fmt.Errorf("unknown swap id")
