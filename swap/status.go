package swap

// Status is the provider-defined status tag attached to every swap
// update, shared verbatim with the wire format so it can be compared
// without translation.
type Status string

// Non-final statuses. A swap sits in one of these between creation and
// its eventual terminal status.
const (
	StatusCreated                    Status = "swap.created"
	StatusInvoiceSet                 Status = "invoice.set"
	StatusTransactionMempool         Status = "transaction.mempool"
	StatusTransactionConfirmed       Status = "transaction.confirmed"
	StatusTransactionServerMempool   Status = "transaction.server.mempool"
	StatusTransactionServerConfirmed Status = "transaction.server.confirmed"
)

// Terminal statuses. Once reached, no further transitions occur for
// that swap (invariant I4: never re-subscribed to the monitor).
const (
	StatusInvoiceSettled          Status = "invoice.settled"
	StatusInvoiceExpired          Status = "invoice.expired"
	StatusInvoiceFailedToPay      Status = "invoice.failedToPay"
	StatusSwapExpired             Status = "swap.expired"
	StatusTransactionClaimed      Status = "transaction.claimed"
	StatusTransactionFailed       Status = "transaction.failed"
	StatusTransactionRefunded     Status = "transaction.refunded"
	StatusTransactionLockupFailed Status = "transaction.lockupFailed"
)

var terminalStatuses = map[Status]bool{
	StatusInvoiceSettled:          true,
	StatusInvoiceExpired:          true,
	StatusInvoiceFailedToPay:      true,
	StatusSwapExpired:             true,
	StatusTransactionClaimed:      true,
	StatusTransactionFailed:       true,
	StatusTransactionRefunded:     true,
	StatusTransactionLockupFailed: true,
}

// IsTerminal reports whether status is a terminal status from which no
// further transitions occur (spec §4.4).
func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

// ActionKind enumerates the autonomous actions the monitor may trigger
// for an actionable status. The monitor itself only distinguishes
// claim from refund; which concrete leg (Ark or BTC) a claim/refund
// resolves to is baked into the callback closure the engine registered
// for that swap at AddSwap time (spec §9, "callbacks injected at
// setCallbacks time").
type ActionKind string

const (
	ActionClaim  ActionKind = "claim"
	ActionRefund ActionKind = "refund"
)

// ActionForStatus returns the autonomous action triggered by status for
// a swap of the given type, and whether one applies at all. It does
// not check material availability (preimage/invoice presence) or the
// enableAutoActions switch -- callers (the monitor) apply those gates
// separately, matching spec §4.4 step 4's ordering.
func ActionForStatus(t Type, s Status) (ActionKind, bool) {
	switch t {
	case TypeReverse:
		switch s {
		case StatusTransactionMempool, StatusTransactionConfirmed:
			return ActionClaim, true
		}
	case TypeChain:
		switch s {
		case StatusTransactionServerMempool, StatusTransactionServerConfirmed:
			return ActionClaim, true
		case StatusTransactionLockupFailed:
			return ActionRefund, true
		}
	case TypeSubmarine:
		switch s {
		case StatusInvoiceFailedToPay, StatusSwapExpired:
			return ActionRefund, true
		}
	}
	return "", false
}
