package vhtlc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractAbsoluteLocktimeRoundTrip(t *testing.T) {
	opts := testOptions(t)
	leaves, err := BuildLeaves(opts)
	require.NoError(t, err)

	got, err := ExtractAbsoluteLocktime(leaves.RefundWithoutReceiver)
	require.NoError(t, err)
	require.Equal(t, opts.Timeouts.RefundLocktime, got)
}

func TestExtractRelativeDelayRoundTripBlocks(t *testing.T) {
	opts := testOptions(t)
	opts.Timeouts.UnilateralClaimDelay = 150 // < 512, block encoding
	leaves, err := BuildLeaves(opts)
	require.NoError(t, err)

	got, err := ExtractRelativeDelay(leaves.UnilateralClaim)
	require.NoError(t, err)
	require.Equal(t, opts.Timeouts.UnilateralClaimDelay, got)
}

func TestExtractRelativeDelayRoundTripSeconds(t *testing.T) {
	opts := testOptions(t)
	// Above the 512 boundary: seconds encoding, granularity 512s means
	// values must be multiples of 512 to round-trip exactly.
	opts.Timeouts.RefundLocktime = 50
	opts.Timeouts.UnilateralClaimDelay = 1024
	opts.Timeouts.UnilateralRefundDelay = 2048
	opts.Timeouts.UnilateralRefundWithoutReceiverDelay = 4096
	leaves, err := BuildLeaves(opts)
	require.NoError(t, err)

	got, err := ExtractRelativeDelay(leaves.UnilateralClaim)
	require.NoError(t, err)
	require.Equal(t, uint32(1024), got)

	got, err = ExtractRelativeDelay(leaves.UnilateralRefund)
	require.NoError(t, err)
	require.Equal(t, uint32(2048), got)
}

func TestEncodeRelativeLockBoundary(t *testing.T) {
	blocks, err := encodeRelativeLock(511)
	require.NoError(t, err)
	require.Equal(t, uint32(511), decodeRelativeLock(blocks))

	seconds, err := encodeRelativeLock(512)
	require.NoError(t, err)
	require.Equal(t, uint32(512), decodeRelativeLock(seconds))
}

func TestExtractCounterpartyPubkey(t *testing.T) {
	opts := testOptions(t)
	leaves, err := BuildLeaves(opts)
	require.NoError(t, err)

	got, err := ExtractCounterpartyPubkey(leaves.Refund)
	require.NoError(t, err)
	require.Equal(t, opts.Sender, got)
}

func TestExtractAbsoluteLocktimeRejectsWrongLeaf(t *testing.T) {
	opts := testOptions(t)
	leaves, err := BuildLeaves(opts)
	require.NoError(t, err)

	_, err = ExtractAbsoluteLocktime(leaves.Claim)
	require.Error(t, err)
}
