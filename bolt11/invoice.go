// Package bolt11 decodes Lightning BOLT-11 payment request strings
// far enough to verify the piece of them the swap engines actually
// care about: the payment hash (and, incidentally, amount/expiry).
// It never encodes or signs an invoice -- the provider is the one
// issuing invoices; this package only ever reads one back. Grounded
// on the teacher's zpay32/invoice.go: same manual field-by-field
// bech32 tagged-field decode loop, same constant names for the
// relevant field types and group lengths, narrowed to what's needed.
package bolt11

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// timestampBase32Len is the number of 5-bit groups encoding the
	// 35-bit creation timestamp.
	timestampBase32Len = 7

	// signatureBase32Len is the number of 5-bit groups encoding the
	// 512-bit signature plus its 8-bit recovery id.
	signatureBase32Len = 104

	// hashBase32Len is the number of 5-bit groups encoding a 256-bit
	// hash (the last group is zero-padded).
	hashBase32Len = 52

	// pubKeyBase32Len is the number of 5-bit groups encoding a
	// 33-byte compressed pubkey.
	pubKeyBase32Len = 53

	fieldTypeP = 1  // payment hash
	fieldTypeD = 13 // description
	fieldTypeN = 19 // destination pubkey
	fieldTypeX = 6  // expiry seconds
)

// Invoice is the subset of a decoded BOLT-11 invoice the swap engines
// consume.
type Invoice struct {
	MilliSat    *int64
	Timestamp   time.Time
	PaymentHash [32]byte
	Destination *btcec.PublicKey
	Description string
	Expiry      time.Duration
}

// defaultExpiry is used when the invoice carries no explicit 'x'
// field, per BOLT-11.
const defaultExpiry = time.Hour

// Decode parses a BOLT-11 invoice string.
func Decode(invoice string) (*Invoice, error) {
	invoice = strings.ToLower(strings.TrimSpace(invoice))

	// BOLT-11 invoices routinely exceed bech32's BIP-173 90-character
	// advisory length, so this uses the same unlimited decode zpay32
	// relies on rather than the length-checked bech32.Decode.
	hrp, data, err := bech32.DecodeNoLimit(invoice)
	if err != nil {
		return nil, fmt.Errorf("bolt11: invalid bech32 encoding: %w", err)
	}

	if len(data) < timestampBase32Len+signatureBase32Len {
		return nil, errors.New("bolt11: invoice too short")
	}

	milliSat, err := parseAmount(hrp)
	if err != nil {
		return nil, err
	}

	timestampWords := data[:timestampBase32Len]
	timestamp := time.Unix(int64(wordsToUint64(timestampWords)), 0)

	fieldWords := data[timestampBase32Len : len(data)-signatureBase32Len]

	inv := &Invoice{
		MilliSat:  milliSat,
		Timestamp: timestamp,
		Expiry:    defaultExpiry,
	}

	var sawPaymentHash bool

	for len(fieldWords) > 0 {
		if len(fieldWords) < 3 {
			return nil, errors.New("bolt11: truncated tagged field header")
		}

		fieldType := fieldWords[0]
		length := int(fieldWords[1])*32 + int(fieldWords[2])
		fieldWords = fieldWords[3:]

		if len(fieldWords) < length {
			return nil, errors.New("bolt11: truncated tagged field data")
		}
		fieldData := fieldWords[:length]
		fieldWords = fieldWords[length:]

		switch fieldType {
		case fieldTypeP:
			if length != hashBase32Len {
				continue
			}
			raw, err := bech32.ConvertBits(fieldData, 5, 8, false)
			if err != nil || len(raw) < 32 {
				return nil, fmt.Errorf("bolt11: malformed payment hash: %w", err)
			}
			copy(inv.PaymentHash[:], raw[:32])
			sawPaymentHash = true

		case fieldTypeD:
			raw, err := bech32.ConvertBits(fieldData, 5, 8, false)
			if err != nil {
				return nil, fmt.Errorf("bolt11: malformed description: %w", err)
			}
			inv.Description = string(raw)

		case fieldTypeN:
			if length != pubKeyBase32Len {
				continue
			}
			raw, err := bech32.ConvertBits(fieldData, 5, 8, false)
			if err != nil || len(raw) < 33 {
				return nil, fmt.Errorf("bolt11: malformed destination pubkey: %w", err)
			}
			pk, err := btcec.ParsePubKey(raw[:33])
			if err != nil {
				return nil, fmt.Errorf("bolt11: invalid destination pubkey: %w", err)
			}
			inv.Destination = pk

		case fieldTypeX:
			inv.Expiry = time.Duration(wordsToUint64(fieldData)) * time.Second
		}
	}

	if !sawPaymentHash {
		return nil, errors.New("bolt11: invoice has no payment hash field")
	}

	return inv, nil
}

// parseAmount parses the optional amount+multiplier suffix of the HRP
// ("lnbc2500u" -> 2500 * 100 msat, etc), returning nil if the invoice
// carries no amount (amountless invoice).
func parseAmount(hrp string) (*int64, error) {
	i := 0
	for i < len(hrp) && !(hrp[i] >= '0' && hrp[i] <= '9') {
		i++
	}
	if i == len(hrp) {
		return nil, nil
	}

	j := i
	for j < len(hrp) && hrp[j] >= '0' && hrp[j] <= '9' {
		j++
	}
	value, err := strconv.ParseInt(hrp[i:j], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bolt11: invalid amount: %w", err)
	}

	var multiplier int64 = 100000000000 // bare BTC, in msat
	if j < len(hrp) {
		switch hrp[j] {
		case 'm':
			multiplier = 100000000
		case 'u':
			multiplier = 100000
		case 'n':
			multiplier = 100
		case 'p':
			multiplier = 1
			value /= 10
		default:
			return nil, fmt.Errorf("bolt11: unknown amount multiplier %q", hrp[j])
		}
	}

	msat := value * multiplier
	return &msat, nil
}

// wordsToUint64 interprets words as a big-endian base-32 integer, the
// encoding BOLT-11 uses for its timestamp and expiry tagged fields.
func wordsToUint64(words []byte) uint64 {
	var v uint64
	for _, w := range words {
		v = v<<5 | uint64(w)
	}
	return v
}
