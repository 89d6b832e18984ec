package vhtlctx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimWitnessOrder(t *testing.T) {
	preimage, receiverSig, serverSig := []byte("p"), []byte("r"), []byte("s")
	leaf, cb := []byte("leaf"), []byte("cb")

	w := claimWitness(preimage, receiverSig, serverSig, leaf, cb)
	require.Equal(t, [][]byte{serverSig, receiverSig, preimage, leaf, cb}, [][]byte(w))
}

func TestRefundWitnessOrder(t *testing.T) {
	senderSig, receiverSig, serverSig := []byte("se"), []byte("r"), []byte("sv")
	leaf, cb := []byte("leaf"), []byte("cb")

	w := refundWitness(senderSig, receiverSig, serverSig, leaf, cb)
	require.Equal(t, [][]byte{serverSig, receiverSig, senderSig, leaf, cb}, [][]byte(w))
}

func TestRefundWithoutReceiverWitnessOrder(t *testing.T) {
	senderSig, serverSig := []byte("se"), []byte("sv")
	leaf, cb := []byte("leaf"), []byte("cb")

	w := refundWithoutReceiverWitness(senderSig, serverSig, leaf, cb)
	require.Equal(t, [][]byte{serverSig, senderSig, leaf, cb}, [][]byte(w))
}

func TestUnilateralClaimWitnessOrder(t *testing.T) {
	preimage, receiverSig := []byte("p"), []byte("r")
	leaf, cb := []byte("leaf"), []byte("cb")

	w := unilateralClaimWitness(preimage, receiverSig, leaf, cb)
	require.Equal(t, [][]byte{receiverSig, preimage, leaf, cb}, [][]byte(w))
}

func TestUnilateralRefundWitnessOrder(t *testing.T) {
	senderSig, receiverSig := []byte("se"), []byte("r")
	leaf, cb := []byte("leaf"), []byte("cb")

	w := unilateralRefundWitness(senderSig, receiverSig, leaf, cb)
	require.Equal(t, [][]byte{receiverSig, senderSig, leaf, cb}, [][]byte(w))
}

func TestUnilateralRefundWithoutReceiverWitnessOrder(t *testing.T) {
	senderSig := []byte("se")
	leaf, cb := []byte("leaf"), []byte("cb")

	w := unilateralRefundWithoutReceiverWitness(senderSig, leaf, cb)
	require.Equal(t, [][]byte{senderSig, leaf, cb}, [][]byte(w))
}
