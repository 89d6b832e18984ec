// Package vhtlctx assembles the Ark-side claim and refund
// transactions that spend a VHTLC (spec §4.5). Grounded on
// contractcourt/htlc_timeout_resolver.go for the job/step shape and
// on sweep/txgenerator.go for coin-selection and its dust guard.
package vhtlctx

import (
	"sort"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// dustLimitSat is the fallback floor used when no ArkInfoProvider
// figure is available. Real callers should always supply the
// provider's own dust figure (spec §1's ArkInfoProvider).
const dustLimitSat = 330

// SelectVtxos picks every VTXO at the VHTLC address to spend in a
// single claim/refund transaction: unlike the teacher's
// generateInputPartitionings (which splits a large sweepable set
// across multiple transactions once it exceeds DefaultMaxInputsPerTx),
// a VHTLC claim/refund always spends its own address's entire VTXO
// set in one transaction, so partitioning collapses to a single set.
// The dust-threshold guard is preserved: a resulting output below
// dustSat is rejected rather than silently broadcast as
// unspendable/unrelayable.
func SelectVtxos(vtxos []swap.Vtxo, dustSat, feeSat int64) ([]swap.Vtxo, int64, error) {
	if len(vtxos) == 0 {
		return nil, 0, &swaperr.ValidationError{
			Field:  "vtxos",
			Reason: "no virtual UTXOs found at VHTLC address",
		}
	}
	if dustSat <= 0 {
		dustSat = dustLimitSat
	}

	// Sort by amount descending purely for deterministic output
	// ordering across calls with the same input set (spec §4.5
	// "Determinism").
	sorted := make([]swap.Vtxo, len(vtxos))
	copy(sorted, vtxos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AmountSat > sorted[j].AmountSat
	})

	var total int64
	for _, v := range sorted {
		total += v.AmountSat
	}

	net := total - feeSat
	if net < dustSat {
		return nil, 0, &swaperr.ValidationError{
			Field: "amount",
			Reason: "claim/refund output would be below the dust " +
				"threshold after fees",
		}
	}

	return sorted, net, nil
}
