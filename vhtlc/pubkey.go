package vhtlc

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// NormalizePubkey accepts either a 32-byte x-only pubkey or a 33-byte
// compressed pubkey and returns its 32-byte x-only form. Any other
// length is rejected, matching the teacher's strict key-size checks in
// genMultiSigScript (lnwallet/script_utils.go), generalized from
// compressed-only (33 bytes) to also accept an already x-only key.
func NormalizePubkey(raw []byte) ([32]byte, error) {
	var out [32]byte

	switch len(raw) {
	case 32:
		// Validate it's actually a point on the curve by parsing it as
		// a BIP340 x-only key.
		if _, err := schnorr.ParsePubKey(raw); err != nil {
			return out, &swaperr.ValidationError{
				Field:  "pubkey",
				Reason: "not a valid x-only point: " + err.Error(),
			}
		}
		copy(out[:], raw)
		return out, nil

	case 33:
		pk, err := btcec.ParsePubKey(raw)
		if err != nil {
			return out, &swaperr.ValidationError{
				Field:  "pubkey",
				Reason: "not a valid compressed point: " + err.Error(),
			}
		}
		xOnly := schnorr.SerializePubKey(pk)
		copy(out[:], xOnly)
		return out, nil

	default:
		return out, &swaperr.ValidationError{
			Field:  "pubkey",
			Reason: "must be 32 (x-only) or 33 (compressed) bytes",
		}
	}
}
