package vhtlc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractInvoiceAmountBasic(t *testing.T) {
	// onchain=49600, fees 100+100, percentFee=1%.
	got, err := ExtractInvoiceAmount(49600, 100, 100, 1)
	require.NoError(t, err)

	want := int64(math.Ceil(float64(49600-100-100) / 0.99))
	require.Equal(t, want, got)
}

func TestExtractInvoiceAmountGuardsZeroDenominator(t *testing.T) {
	_, err := ExtractInvoiceAmount(100000, 0, 0, 100)
	require.Error(t, err)
}

func TestExtractInvoiceAmountGuardsNegativeDenominator(t *testing.T) {
	_, err := ExtractInvoiceAmount(100000, 0, 0, 150)
	require.Error(t, err)
}

func TestExtractInvoiceAmountGuardsNonPositiveNumerator(t *testing.T) {
	_, err := ExtractInvoiceAmount(100, 60, 60, 1)
	require.Error(t, err)
}

func TestExtractInvoiceAmountMonotonicInOnchainAmount(t *testing.T) {
	prev := int64(0)
	for _, x := range []int64{1000, 50000, 1_000_000} {
		got, err := ExtractInvoiceAmount(x, 100, 100, 2)
		require.NoError(t, err)
		require.Greater(t, got, prev)
		prev = got
	}
}

func TestExtractInvoiceAmountExceedsOnchainAmount(t *testing.T) {
	// With a 1% provider fee and 200 sat of miner fees, the percentage
	// uplift on (49600-200) outweighs the subtracted miner fees, so the
	// invoice (49899) exceeds the on-chain amount the provider locks up.
	got, err := ExtractInvoiceAmount(49600, 100, 100, 1)
	require.NoError(t, err)
	require.Greater(t, got, int64(49600))
}
