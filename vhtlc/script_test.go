package vhtlc

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkade-os/boltz-swap-go/swap"
)

func testOptions(t *testing.T) Options {
	t.Helper()

	hash := sha256.Sum256([]byte("preimage"))

	return Options{
		PreimageHash: hash,
		Sender:       fill32(0x01),
		Receiver:     fill32(0x02),
		Server:       fill32(0x03),
		Timeouts: swap.Timeouts{
			RefundLocktime:                       100,
			UnilateralClaimDelay:                 200,
			UnilateralRefundDelay:                300,
			UnilateralRefundWithoutReceiverDelay:  400,
		},
	}
}

func fill32(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func TestBuildLeavesProducesSixDistinctLeaves(t *testing.T) {
	leaves, err := BuildLeaves(testOptions(t))
	require.NoError(t, err)

	all := [][]byte{
		leaves.Claim, leaves.Refund, leaves.RefundWithoutReceiver,
		leaves.UnilateralClaim, leaves.UnilateralRefund,
		leaves.UnilateralRefundWithoutReceiver,
	}
	seen := map[string]bool{}
	for _, l := range all {
		require.NotEmpty(t, l)
		require.False(t, seen[string(l)], "leaves must be distinct")
		seen[string(l)] = true
	}
}

func TestBuildLeavesRejectsBadTimeoutOrdering(t *testing.T) {
	opts := testOptions(t)
	opts.Timeouts.UnilateralClaimDelay = opts.Timeouts.RefundLocktime // violates I6
	_, err := BuildLeaves(opts)
	require.Error(t, err)
}

func TestBuildLeavesRejectsZeroTimeout(t *testing.T) {
	opts := testOptions(t)
	opts.Timeouts.RefundLocktime = 0
	_, err := BuildLeaves(opts)
	require.Error(t, err)
}

func TestBuildAndAddressRoundTrip(t *testing.T) {
	tree, err := Build(testOptions(t))
	require.NoError(t, err)
	require.NotNil(t, tree.OutputKey)

	addr, err := tree.Address(MainnetHRP)
	require.NoError(t, err)
	require.Contains(t, addr, "ark1")

	addrOther, err := tree.Address(OtherNetworkHRP)
	require.NoError(t, err)
	require.Contains(t, addrOther, "tark1")
}

func TestBuildDeterministic(t *testing.T) {
	opts := testOptions(t)
	t1, err := Build(opts)
	require.NoError(t, err)
	t2, err := Build(opts)
	require.NoError(t, err)

	require.Equal(t, t1.OutputKey.SerializeCompressed(), t2.OutputKey.SerializeCompressed())
}

func TestControlBlockForEachLeaf(t *testing.T) {
	opts := testOptions(t)
	tree, err := Build(opts)
	require.NoError(t, err)

	for _, leaf := range [][]byte{
		tree.Leaves.Claim, tree.Leaves.Refund, tree.Leaves.RefundWithoutReceiver,
		tree.Leaves.UnilateralClaim, tree.Leaves.UnilateralRefund,
		tree.Leaves.UnilateralRefundWithoutReceiver,
	} {
		cb, err := tree.ControlBlock(leaf)
		require.NoError(t, err)
		require.NotEmpty(t, cb)
	}
}

func TestControlBlockRejectsForeignScript(t *testing.T) {
	tree, err := Build(testOptions(t))
	require.NoError(t, err)

	_, err = tree.ControlBlock([]byte{0x51, 0x52, 0x53})
	require.Error(t, err)
}
