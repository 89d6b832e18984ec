// Package swap holds the durable swap record, its tagged-union
// request/response payloads and the collaborator interfaces the
// engines and monitor depend on. This package owns no I/O: it is the
// shared vocabulary every other package imports.
package swap

// Type discriminates the three supported swap protocols.
type Type string

const (
	TypeSubmarine Type = "submarine"
	TypeReverse   Type = "reverse"
	TypeChain     Type = "chain"
)

// Direction further qualifies a chain swap: which side the user is
// locking funds on.
type Direction string

const (
	DirectionArkToBtc Direction = "arkToBtc"
	DirectionBtcToArk Direction = "btcToArk"
)

// Swap is the one durable record shared by all three protocols
// (spec §3, "tagged union by type"). Engines pattern-match on Type to
// recover the concrete Request/Response shape.
type Swap struct {
	ID        string
	Type      Type
	Status    Status
	CreatedAt int64

	// Preimage is the 32-byte secret for reverse/chain swaps where the
	// client generates it. Nil for submarine swaps (the client never
	// learns the preimage until the provider discloses it post-settle)
	// and for restored swaps whose preimage was never persisted.
	Preimage []byte

	Request  Request
	Response Response

	// EphemeralKey is a chain-swap-only, per-swap key the user
	// controls and never reuses.
	EphemeralKey []byte

	Direction      Direction
	FeeSatsPerByte float64
	ToAddress      string
}

// HasPreimage reports whether a usable 32-byte preimage is present.
// Restored swaps with an empty preimage must not attempt autonomous
// claim (invariant I5 / restoration rules in spec §4.4).
func (s *Swap) HasPreimage() bool {
	return len(s.Preimage) == 32
}

// Invoice returns the bolt11 invoice associated with this swap's
// request, if any (submarine requests always carry one; reverse
// responses carry one too, but that's read off Response, not here).
func (s *Swap) Invoice() string {
	if sub, ok := s.Request.(*SubmarineRequest); ok {
		return sub.Invoice
	}
	return ""
}
