// Package vhtlc builds and inspects the Virtual HTLC: the taproot
// contract shared by all three swap protocols. A VHTLC has exactly
// six spending leaves (spec §4.1); this file constructs them the way
// the teacher builds its own HTLC scripts in
// lnwallet/script_utils.go (senderHTLCScript, receiverHTLCScript):
// one unexported constructor per leaf, an ASCII script diagram in the
// doc comment, opcode-by-opcode via txscript.ScriptBuilder.
package vhtlc

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// Options parameterizes a VHTLC instance (spec §3: "derived
// deterministically from {preimageHash, senderPubkey, receiverPubkey,
// serverPubkey, refundLocktime, three delay values}").
type Options struct {
	PreimageHash [32]byte
	Sender       [32]byte
	Receiver     [32]byte
	Server       [32]byte
	Timeouts     swap.Timeouts
}

// Validate checks the timeout ordering invariant (I6) before any
// script is built.
func (o Options) Validate() error {
	if err := o.Timeouts.Validate(); err != nil {
		return &swaperr.ValidationError{Field: "timeouts", Reason: err.Error()}
	}
	return nil
}

// claimScript: preimage preimage-hash check + receiver sig + server sig.
//
// OP_SHA256 <preimageHash> OP_EQUALVERIFY
// <receiver> OP_CHECKSIGVERIFY
// <server>   OP_CHECKSIG
//
// Witness: [serverSig, receiverSig, preimage].
func claimScript(o Options) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_SHA256)
	b.AddData(o.PreimageHash[:])
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddData(o.Receiver[:])
	b.AddOp(txscript.OP_CHECKSIGVERIFY)
	b.AddData(o.Server[:])
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// refundScript: cooperative refund, sender + receiver + server sign.
//
// <sender>   OP_CHECKSIGVERIFY
// <receiver> OP_CHECKSIGVERIFY
// <server>   OP_CHECKSIG
//
// Witness: [serverSig, receiverSig, senderSig].
func refundScript(o Options) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddData(o.Sender[:])
	b.AddOp(txscript.OP_CHECKSIGVERIFY)
	b.AddData(o.Receiver[:])
	b.AddOp(txscript.OP_CHECKSIGVERIFY)
	b.AddData(o.Server[:])
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// refundWithoutReceiverScript: after the absolute refund locktime,
// sender + server sign without the receiver's cooperation.
//
// <refundLocktime> OP_CHECKLOCKTIMEVERIFY OP_DROP
// <sender> OP_CHECKSIGVERIFY
// <server> OP_CHECKSIG
//
// Witness: [serverSig, senderSig].
func refundWithoutReceiverScript(o Options) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddInt64(int64(o.Timeouts.RefundLocktime))
	b.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddData(o.Sender[:])
	b.AddOp(txscript.OP_CHECKSIGVERIFY)
	b.AddData(o.Server[:])
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// unilateralClaimScript: after a relative delay, the receiver alone
// can claim with the preimage -- used when the server is
// non-cooperative.
//
// <unilateralClaimDelay> OP_CHECKSEQUENCEVERIFY OP_DROP
// OP_SHA256 <preimageHash> OP_EQUALVERIFY
// <receiver> OP_CHECKSIG
//
// Witness: [receiverSig, preimage].
func unilateralClaimScript(o Options) ([]byte, error) {
	seq, err := encodeRelativeLock(o.Timeouts.UnilateralClaimDelay)
	if err != nil {
		return nil, err
	}
	b := txscript.NewScriptBuilder()
	b.AddInt64(int64(seq))
	b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddOp(txscript.OP_SHA256)
	b.AddData(o.PreimageHash[:])
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddData(o.Receiver[:])
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// unilateralRefundScript: after a relative delay, sender + receiver
// can refund together without the server.
//
// <unilateralRefundDelay> OP_CHECKSEQUENCEVERIFY OP_DROP
// <sender>   OP_CHECKSIGVERIFY
// <receiver> OP_CHECKSIG
//
// Witness: [receiverSig, senderSig].
func unilateralRefundScript(o Options) ([]byte, error) {
	seq, err := encodeRelativeLock(o.Timeouts.UnilateralRefundDelay)
	if err != nil {
		return nil, err
	}
	b := txscript.NewScriptBuilder()
	b.AddInt64(int64(seq))
	b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddData(o.Sender[:])
	b.AddOp(txscript.OP_CHECKSIGVERIFY)
	b.AddData(o.Receiver[:])
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// unilateralRefundWithoutReceiverScript: the ultimate escape hatch --
// after the longest relative delay, the sender alone reclaims funds.
//
// <unilateralRefundWithoutReceiverDelay> OP_CHECKSEQUENCEVERIFY OP_DROP
// <sender> OP_CHECKSIG
//
// Witness: [senderSig].
func unilateralRefundWithoutReceiverScript(o Options) ([]byte, error) {
	seq, err := encodeRelativeLock(o.Timeouts.UnilateralRefundWithoutReceiverDelay)
	if err != nil {
		return nil, err
	}
	b := txscript.NewScriptBuilder()
	b.AddInt64(int64(seq))
	b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddData(o.Sender[:])
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// Leaves are the raw script bytes of the six VHTLC spending
// conditions (spec §4.1's table), in the order the taproot tree is
// assembled.
type Leaves struct {
	Claim                           []byte
	Refund                          []byte
	RefundWithoutReceiver           []byte
	UnilateralClaim                 []byte
	UnilateralRefund                []byte
	UnilateralRefundWithoutReceiver []byte
}

// BuildLeaves constructs all six VHTLC leaf scripts from o.
func BuildLeaves(o Options) (*Leaves, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	claim, err := claimScript(o)
	if err != nil {
		return nil, err
	}
	refund, err := refundScript(o)
	if err != nil {
		return nil, err
	}
	refundNoRecv, err := refundWithoutReceiverScript(o)
	if err != nil {
		return nil, err
	}
	uniClaim, err := unilateralClaimScript(o)
	if err != nil {
		return nil, err
	}
	uniRefund, err := unilateralRefundScript(o)
	if err != nil {
		return nil, err
	}
	uniRefundNoRecv, err := unilateralRefundWithoutReceiverScript(o)
	if err != nil {
		return nil, err
	}

	return &Leaves{
		Claim:                           claim,
		Refund:                          refund,
		RefundWithoutReceiver:           refundNoRecv,
		UnilateralClaim:                 uniClaim,
		UnilateralRefund:                uniRefund,
		UnilateralRefundWithoutReceiver: uniRefundNoRecv,
	}, nil
}

// relativeLockBlockSecondsBoundary is the BIP68 threshold below which
// a relative delay is interpreted as a block count, and at or above
// which it's interpreted as a 512-second-granularity time delay
// (spec §4.1).
const relativeLockBlockSecondsBoundary = 512

// sequenceLockTimeSeconds mirrors the teacher's
// lnwallet.SequenceLockTimeSeconds: the bit flagging a BIP68 sequence
// value as encoding time, not a block count.
const sequenceLockTimeSeconds = uint32(1 << 22)

// sequenceLockTimeMask mirrors the teacher's
// lnwallet.SequenceLockTimeMask: the 16 low bits actually carrying the
// granularity value.
const sequenceLockTimeMask = uint32(0x0000ffff)

// encodeRelativeLock converts a delay value (blocks if < 512, seconds
// if >= 512) into the BIP68-encoded value pushed onto the script
// before OP_CHECKSEQUENCEVERIFY, mirroring the teacher's
// lockTimeToSequence (lnwallet/script_utils.go) generalized to pick
// its own isSeconds flag from the value's magnitude instead of taking
// it as a parameter.
func encodeRelativeLock(delay uint32) (uint32, error) {
	if delay == 0 {
		return 0, &swaperr.ValidationError{
			Field:  "timeouts",
			Reason: "relative delay must be strictly positive",
		}
	}
	if delay < relativeLockBlockSecondsBoundary {
		return delay & sequenceLockTimeMask, nil
	}
	return sequenceLockTimeSeconds | ((delay) >> 9), nil
}

// decodeRelativeLock reverses encodeRelativeLock, recovering the
// original delay (in blocks or seconds) from a BIP68-encoded sequence
// value. Used by the restoration path (restore.go) to recover timeout
// metadata from a provider-returned leaf alone.
func decodeRelativeLock(seq uint32) uint32 {
	if seq&sequenceLockTimeSeconds != 0 {
		return (seq & sequenceLockTimeMask) << 9
	}
	return seq & sequenceLockTimeMask
}
