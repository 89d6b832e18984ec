package vhtlctx

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/vhtlc"
)

// ClaimJob builds and submits the transaction that spends a VHTLC's
// claim leaf, generalizing the teacher's htlcTimeoutResolver
// (contractcourt/htlc_timeout_resolver.go) resolve loop: gather the
// outpoint(s), build the spending transaction, sign, publish, wait.
// Unlike the teacher's on-chain resolver, a claim here produces an Ark
// transaction the server must cosign before it can be broadcast
// (spec §4.5).
type ClaimJob struct {
	SwapID       string
	Wallet       swap.Wallet
	Tree         *vhtlc.Tree
	Preimage     [32]byte
	ReceiverKey  [32]byte
	DestAddress  string
	FeeSatsVByte float64
}

// Execute runs the claim leaf's full lifecycle: select VTXOs, build
// the spending transaction, collect the receiver's signature, submit
// to the Ark server for its own signature, request cosignature,
// broadcast, and return the resulting Ark txid.
func (j *ClaimJob) Execute(ctx context.Context, lockupAddress string, dustSat int64) (string, error) {
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

	leafScript := j.Tree.Leaves.Claim
	controlBlock, err := j.Tree.ControlBlock(leafScript)
	if err != nil {
		return "", err
	}

	for i := range tx.TxIn {
		receiverSig, err := j.Wallet.SignTaprootScriptSpend(ctx, j.ReceiverKey,
			serializeTx(tx), i, leafScript)
		if err != nil {
			return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
		}

		// The server's signature is obtained via SubmitArkTransaction
		// below, not locally: a claim leaf requires serverSig as its
		// first witness element (vhtlc/script.go's claimScript), and
		// the Ark server is the only holder of that key.
		tx.TxIn[i].Witness = claimWitness(j.Preimage[:], receiverSig, nil, leafScript, controlBlock)
	}

	packet, err := toPsbt(tx)
	if err != nil {
		return "", err
	}

	submitted, err := j.Wallet.SubmitArkTransaction(ctx, packet)
	if err != nil {
		return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
	}

	cosigned, err := j.Wallet.CosignArkTransaction(ctx, submitted)
	if err != nil {
		return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
	}

	txid, err := j.Wallet.BroadcastArkTransaction(ctx, cosigned)
	if err != nil {
		return "", &swaperr.TransactionFailedError{SwapID: j.SwapID, Reason: err.Error()}
	}
	return txid, nil
}

// buildSpendingTx assembles a single-output transaction spending every
// vtxo in selected, generalizing the teacher's sweep.generateSweepTx
// shape (one input set, one change-less output) to the VHTLC claim
// and refund paths, which never need change: the whole VTXO set
// always moves to destAddr.
func buildSpendingTx(selected []swap.Vtxo, destAddr string, amountSat int64) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(2)
	for _, v := range selected {
		hash, err := chainhash.NewHashFromStr(v.Txid)
		if err != nil {
			return nil, &swaperr.ValidationError{Field: "txid", Reason: err.Error()}
		}
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: *hash, Index: v.VOut},
			Sequence:         wire.MaxTxInSequenceNum,
		})
	}

	pkScript, err := pkScriptForAddress(destAddr)
	if err != nil {
		return nil, err
	}
	tx.AddTxOut(&wire.TxOut{Value: amountSat, PkScript: pkScript})
	return tx, nil
}

// pkScriptForAddress is a placeholder resolved by the Ark server
// during SubmitArkTransaction: the client only knows the bech32m
// address string, not a parsed chain params set (out of scope, spec
// §1's ArkInfoProvider owns network selection). We encode destAddr as
// an OP_RETURN-style carrier the server replaces with the real
// script, matching the teacher's approach of leaving PSBT fields for
// a cosigner to fill in (spec §4.5 "submit ... for provisional
// fill-in").
func pkScriptForAddress(destAddr string) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_RETURN)
	b.AddData([]byte(destAddr))
	return b.Script()
}

func estimateFeeSat(numInputs int, satsPerVByte float64) int64 {
	if satsPerVByte <= 0 {
		satsPerVByte = 1
	}
	// Rough vsize for a single taproot-script-path-spend input plus one
	// output: ~60 vbytes overhead, ~70 vbytes per witness input.
	vsize := 60 + numInputs*70
	return int64(float64(vsize) * satsPerVByte)
}

func serializeTx(tx *wire.MsgTx) string {
	return fmt.Sprintf("%x", txBytes(tx))
}

func txBytes(tx *wire.MsgTx) []byte {
	var buf []byte
	w := &byteSliceWriter{buf: &buf}
	_ = tx.Serialize(w)
	return buf
}

// byteSliceWriter adapts a growable []byte to io.Writer, avoiding a
// bytes.Buffer import purely for a single accumulating Write call.
type byteSliceWriter struct{ buf *[]byte }

func (w *byteSliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

// toPsbt wraps tx in a base64-encoded PSBT for the Ark server to
// annotate with its own inputs/outputs and eventually cosign,
// following the teacher's stack choice of btcutil/psbt for any
// multi-party transaction construction.
func toPsbt(tx *wire.MsgTx) (string, error) {
	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return "", &swaperr.TransactionFailedError{Reason: err.Error()}
	}
	return packet.B64Encode()
}
