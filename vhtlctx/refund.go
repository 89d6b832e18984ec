package vhtlctx

import (
	"context"
	"errors"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/vhtlc"
)

// RefundPath selects which of the three refund leaves a RefundJob
// attempts, in the escalating order spec §4.5 describes: cooperative
// first, then the two unilateral escape hatches as their respective
// timeouts elapse.
type RefundPath int

const (
	// RefundCooperative spends the refund leaf: sender, receiver and
	// server all sign. Always tried first.
	RefundCooperative RefundPath = iota
	// RefundWithoutReceiver spends refundWithoutReceiver once the
	// absolute refund locktime has passed, when the receiver (the
	// provider) is uncooperative.
	RefundWithoutReceiver
	// RefundUnilateralWithoutReceiver spends
	// unilateralRefundWithoutReceiver once its relative delay has
	// elapsed, when the server itself is uncooperative too.
	RefundUnilateralWithoutReceiver
)

// RefundJob builds and submits the transaction that reclaims a
// VHTLC's locked funds, generalizing contractcourt/htlc_timeout_resolver.go's
// claimCleanUp fallback-to-timeout behavior to the VHTLC's three-tier
// refund ladder.
type RefundJob struct {
	SwapID       string
	Wallet       swap.Wallet
	Tree         *vhtlc.Tree
	SenderKey    [32]byte
	DestAddress  string
	FeeSatsVByte float64
}

// Execute attempts path against lockupAddress's VTXOs and returns the
// resulting Ark txid. The caller picks path; ExecuteWithEscalation
// picks it by advancing along the ladder on rejection errors. This job
// doesn't inspect the chain itself, matching its collaborators being
// out of scope (spec §1, no chain-info provider).
func (j *RefundJob) Execute(ctx context.Context, path RefundPath, lockupAddress string, dustSat int64) (string, error) {
	vtxos, err := j.Wallet.VtxosAt(ctx, lockupAddress)
	if err != nil {
		return "", &swaperr.NetworkError{Cause: err}
	}

	selected, netAmount, err := SelectVtxos(vtxos, dustSat, estimateFeeSat(len(vtxos), j.FeeSatsVByte))
	if err != nil {
		return "", err
	}

	tx, err := buildSpendingTx(selected, j.DestAddress, netAmount)
	if err != nil {
		return "", err
	}

	leafScript, needsServer, err := j.leafForPath(path)
	if err != nil {
		return "", err
	}

	controlBlock, err := j.Tree.ControlBlock(leafScript)
	if err != nil {
		return "", err
	}

	for i := range tx.TxIn {
		senderSig, err := j.Wallet.SignTaprootScriptSpend(ctx, j.SenderKey,
			serializeTx(tx), i, leafScript)
		if err != nil {
			return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
		}

		switch path {
		case RefundCooperative:
			// serverSig and receiverSig are filled in by the Ark
			// server/provider during the submit/cosign round trip
			// below; the client only ever produces its own signature.
			tx.TxIn[i].Witness = refundWitness(senderSig, nil, nil, leafScript, controlBlock)
		case RefundWithoutReceiver:
			tx.TxIn[i].Witness = refundWithoutReceiverWitness(senderSig, nil, leafScript, controlBlock)
		case RefundUnilateralWithoutReceiver:
			tx.TxIn[i].Witness = unilateralRefundWithoutReceiverWitness(senderSig, leafScript, controlBlock)
		}
	}

	packet, err := toPsbt(tx)
	if err != nil {
		return "", err
	}

	if !needsServer {
		return j.Wallet.BroadcastArkTransaction(ctx, packet)
	}

	submitted, err := j.Wallet.SubmitArkTransaction(ctx, packet)
	if err != nil {
		return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
	}
	cosigned, err := j.Wallet.CosignArkTransaction(ctx, submitted)
	if err != nil {
		return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
	}
	return j.Wallet.BroadcastArkTransaction(ctx, cosigned)
}

// refundEscalation orders the ladder ExecuteWithEscalation works
// through, most to least cooperative.
var refundEscalation = []RefundPath{
	RefundCooperative,
	RefundWithoutReceiver,
	RefundUnilateralWithoutReceiver,
}

// ExecuteWithEscalation runs the refund ladder starting at
// RefundCooperative, advancing to the next path only when the current
// one comes back rejected by the submit/cosign round trip
// (*swaperr.TransactionFailedError): that rejection is the signal this
// job has to work with, since it has no chain tip to read
// RefundLocktime/UnilateralRefundWithoutReceiverDelay against directly
// (spec §4.5, §1's "no chain-info provider"). Any other error aborts
// immediately instead of retrying a path that would fail identically.
func (j *RefundJob) ExecuteWithEscalation(ctx context.Context, lockupAddress string, dustSat int64) (string, error) {
	var lastErr error
	for _, path := range refundEscalation {
		txid, err := j.Execute(ctx, path, lockupAddress, dustSat)
		if err == nil {
			return txid, nil
		}
		lastErr = err
		var rejected *swaperr.TransactionFailedError
		if !errors.As(err, &rejected) {
			return "", err
		}
	}
	return "", lastErr
}

// leafForPath resolves path to its leaf script and whether the Ark
// server's cosignature is still required: only the cooperative and
// refundWithoutReceiver leaves need it (both check the server's key),
// the final unilateralRefundWithoutReceiver leaf checks the sender
// alone.
func (j *RefundJob) leafForPath(path RefundPath) ([]byte, bool, error) {
	switch path {
	case RefundCooperative:
		return j.Tree.Leaves.Refund, true, nil
	case RefundWithoutReceiver:
		return j.Tree.Leaves.RefundWithoutReceiver, true, nil
	case RefundUnilateralWithoutReceiver:
		return j.Tree.Leaves.UnilateralRefundWithoutReceiver, false, nil
	default:
		return nil, false, &swaperr.ValidationError{Field: "path", Reason: "unknown refund path"}
	}
}
