package vhtlc

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// Restored is the timeout/pubkey metadata recoverable from a single
// provider-returned leaf, without any other context. Reconstructing
// this from the tree leaves alone lets a restarted process recover
// enough to track (but not necessarily act on) a swap it only knows
// about via the repository (spec §4.1 "Restoration inspection").
type Restored struct {
	AbsoluteLocktime uint32
	RelativeDelay    uint32
	CounterpartyKey  [32]byte
}

// ExtractAbsoluteLocktime scans a refundWithoutReceiver leaf for its
// CHECKLOCKTIMEVERIFY opcode and decodes the push immediately
// preceding it as a little-endian script number (spec §4.1).
func ExtractAbsoluteLocktime(leafScript []byte) (uint32, error) {
	return extractTimelockBefore(leafScript, txscript.OP_CHECKLOCKTIMEVERIFY)
}

// ExtractRelativeDelay scans a unilateralX leaf for its
// CHECKSEQUENCEVERIFY opcode and decodes (and un-encodes from BIP68)
// the push immediately preceding it (spec §4.1).
func ExtractRelativeDelay(leafScript []byte) (uint32, error) {
	seq, err := extractTimelockBefore(leafScript, txscript.OP_CHECKSEQUENCEVERIFY)
	if err != nil {
		return 0, err
	}
	return decodeRelativeLock(seq), nil
}

// ExtractCounterpartyPubkey extracts the first 32-byte data push from
// a refund leaf: the sender's (counterparty's, from the claim side's
// perspective) pubkey (spec §4.1).
func ExtractCounterpartyPubkey(refundLeafScript []byte) ([32]byte, error) {
	var out [32]byte

	tok := txscript.MakeScriptTokenizer(0, refundLeafScript)
	for tok.Next() {
		data := tok.Data()
		if len(data) == 32 {
			copy(out[:], data)
			return out, nil
		}
	}
	if err := tok.Err(); err != nil {
		return out, err
	}
	return out, &swaperr.SchemaError{
		Field:  "refundLeaf",
		Reason: "no 32-byte pubkey push found",
	}
}

// extractTimelockBefore walks script looking for wantOp, and returns
// the numeric value of the data push immediately preceding it.
func extractTimelockBefore(script []byte, wantOp byte) (uint32, error) {
	tok := txscript.MakeScriptTokenizer(0, script)

	var lastValue int64
	var haveValue bool

	for tok.Next() {
		op := tok.Opcode()

		if op == wantOp {
			if !haveValue {
				return 0, &swaperr.SchemaError{
					Field:  "leaf",
					Reason: "timelock opcode has no preceding push",
				}
			}
			if lastValue < 0 {
				return 0, &swaperr.SchemaError{
					Field:  "leaf",
					Reason: "timelock value is negative",
				}
			}
			return uint32(lastValue), nil
		}

		switch {
		case op == txscript.OP_0:
			lastValue, haveValue = 0, true
		case op >= txscript.OP_1 && op <= txscript.OP_16:
			lastValue, haveValue = int64(op-(txscript.OP_1-1)), true
		case len(tok.Data()) > 0:
			n, err := txscript.MakeScriptNum(tok.Data(), false, 5)
			if err != nil {
				return 0, &swaperr.SchemaError{
					Field:  "leaf",
					Reason: "malformed script number push: " + err.Error(),
				}
			}
			lastValue, haveValue = int64(n), true
		default:
			haveValue = false
		}
	}
	if err := tok.Err(); err != nil {
		return 0, err
	}
	return 0, &swaperr.SchemaError{
		Field:  "leaf",
		Reason: "timelock opcode not found in leaf script",
	}
}
