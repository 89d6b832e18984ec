package vhtlc

import (
	"math"

	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// ExtractInvoiceAmount recovers the Lightning invoice amount a reverse
// swap must request given the on-chain amount the provider will lock
// up, the two miner fees already netted out of it, and the provider's
// percentage fee (spec §4.1):
//
//	invoice = ceil((onchain - lockupMinerFee - claimMinerFee) / (1 - percentFee/100))
//
// A percentFee of 100 or more makes the denominator non-positive,
// which is rejected rather than silently producing a nonsensical (or
// infinite) invoice amount.
func ExtractInvoiceAmount(onchainSat, lockupMinerFeeSat, claimMinerFeeSat int64,
	percentFee float64) (int64, error) {

	denominator := 1 - percentFee/100
	if denominator <= 0 {
		return 0, &swaperr.ValidationError{
			Field:  "percentFee",
			Reason: "percent fee must be less than 100",
		}
	}

	numerator := float64(onchainSat - lockupMinerFeeSat - claimMinerFeeSat)
	if numerator <= 0 {
		return 0, &swaperr.ValidationError{
			Field:  "onchainAmount",
			Reason: "on-chain amount must exceed the combined miner fees",
		}
	}

	return int64(math.Ceil(numerator / denominator)), nil
}
