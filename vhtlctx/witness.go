package vhtlctx

import (
	"github.com/btcsuite/btcd/wire"
)

// LeafWitness generalizes the teacher's WitnessGenerator
// (lnwallet/witnessgen.go) from a p2wsh commitment-output witness to a
// taproot script-path witness: the same "function that hides the
// script details behind a signature" abstraction, now returning a
// full wire.TxWitness including the leaf script and control block.
type LeafWitness func() (wire.TxWitness, error)

// claimWitness builds [serverSig, receiverSig, preimage, leafScript,
// controlBlock] per the claim leaf's execution order (spec §4.1).
func claimWitness(preimage, receiverSig, serverSig, leafScript, controlBlock []byte) wire.TxWitness {
	return wire.TxWitness{serverSig, receiverSig, preimage, leafScript, controlBlock}
}

// refundWitness builds [serverSig, receiverSig, senderSig, leafScript,
// controlBlock] for the cooperative refund leaf.
func refundWitness(senderSig, receiverSig, serverSig, leafScript, controlBlock []byte) wire.TxWitness {
	return wire.TxWitness{serverSig, receiverSig, senderSig, leafScript, controlBlock}
}

// refundWithoutReceiverWitness builds [serverSig, senderSig,
// leafScript, controlBlock].
func refundWithoutReceiverWitness(senderSig, serverSig, leafScript, controlBlock []byte) wire.TxWitness {
	return wire.TxWitness{serverSig, senderSig, leafScript, controlBlock}
}

// unilateralClaimWitness builds [receiverSig, preimage, leafScript,
// controlBlock].
func unilateralClaimWitness(preimage, receiverSig, leafScript, controlBlock []byte) wire.TxWitness {
	return wire.TxWitness{receiverSig, preimage, leafScript, controlBlock}
}

// unilateralRefundWitness builds [receiverSig, senderSig, leafScript,
// controlBlock].
func unilateralRefundWitness(senderSig, receiverSig, leafScript, controlBlock []byte) wire.TxWitness {
	return wire.TxWitness{receiverSig, senderSig, leafScript, controlBlock}
}

// unilateralRefundWithoutReceiverWitness builds [senderSig,
// leafScript, controlBlock]: the ultimate escape hatch, sender alone.
func unilateralRefundWithoutReceiverWitness(senderSig, leafScript, controlBlock []byte) wire.TxWitness {
	return wire.TxWitness{senderSig, leafScript, controlBlock}
}

// ClaimWitnessComponents exposes the claim leaf's witness stack
// ordering to callers outside this package that need the same
// preimage+signature+leaf+control-block bundle but aren't assembling
// an Ark PSBT -- namely the chain engine's BTC-side claim, which hands
// this to a swap.ChainClaimHelper instead of a wire.TxWitness (spec
// §4.5 "this core constructs witness data and hands it to the
// provider-supplied claim helper").
func ClaimWitnessComponents(preimage, receiverSig, serverSig, leafScript, controlBlock []byte) [][]byte {
	return claimWitness(preimage, receiverSig, serverSig, leafScript, controlBlock)
}
