package swaptest

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Field type tags and group lengths mirrored from bolt11.Decode's
// tagged-field layout (bolt11/invoice.go), duplicated here because
// they're unexported there: this package needs to produce fixture
// invoices, not just parse real ones.
const (
	timestampBase32Len = 7
	signatureBase32Len = 104

	fieldTypeP = 1
	fieldTypeD = 13
	fieldTypeX = 6
)

// EncodeTestInvoice builds a minimal BOLT-11 string decodable by
// bolt11.Decode, carrying exactly the fields the swap engines read:
// payment hash, an optional description, and an optional expiry.
// There is no real signature -- the zero-filled 104 groups decode fine
// since bolt11.Decode never verifies it.
func EncodeTestInvoice(hrp string, timestamp int64, paymentHash [32]byte,
	description string, expirySeconds uint64) (string, error) {

	var words []byte
	words = append(words, uint64ToWords(uint64(timestamp), timestampBase32Len)...)

	hashWords, err := bech32.ConvertBits(paymentHash[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	words = append(words, fieldTypeP, byte(len(hashWords)/32), byte(len(hashWords)%32))
	words = append(words, hashWords...)

	if description != "" {
		descWords, err := bech32.ConvertBits([]byte(description), 8, 5, true)
		if err != nil {
			return "", err
		}
		words = append(words, fieldTypeD, byte(len(descWords)/32), byte(len(descWords)%32))
		words = append(words, descWords...)
	}

	if expirySeconds > 0 {
		expWords := uint64ToWords(expirySeconds, 1)
		words = append(words, fieldTypeX, byte(len(expWords)/32), byte(len(expWords)%32))
		words = append(words, expWords...)
	}

	words = append(words, make([]byte, signatureBase32Len)...)

	return bech32.Encode(hrp, words)
}

func uint64ToWords(v uint64, minWords int) []byte {
	var words []byte
	for v > 0 {
		words = append([]byte{byte(v & 0x1f)}, words...)
		v >>= 5
	}
	for len(words) < minWords {
		words = append([]byte{0}, words...)
	}
	return words
}
