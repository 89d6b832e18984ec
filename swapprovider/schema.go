// Package swapprovider implements the HTTP+WebSocket client for a
// Boltz-compatible swap provider (spec §4.2). Grounded on the
// teacher's outbound-call style (plain net/http, no generic REST
// client dependency in this pack) and on zpay32/invoice.go's
// field-by-field manual decode loop for schema validation.
package swapprovider

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/vhtlc"
)

// wireTimeouts is the provider's JSON encoding of swap.Timeouts.
type wireTimeouts struct {
	RefundLocktime                       *uint32 `json:"refundLocktime"`
	UnilateralClaimDelay                 *uint32 `json:"unilateralClaimDelay"`
	UnilateralRefundDelay                *uint32 `json:"unilateralRefundDelay"`
	UnilateralRefundWithoutReceiverDelay *uint32 `json:"unilateralRefundWithoutReceiverDelay"`
}

func (w *wireTimeouts) decode(field string) (swap.Timeouts, error) {
	if w == nil {
		return swap.Timeouts{}, &swaperr.SchemaError{Field: field, Reason: "missing timeouts object"}
	}
	required := map[string]*uint32{
		field + ".refundLocktime":                       w.RefundLocktime,
		field + ".unilateralClaimDelay":                 w.UnilateralClaimDelay,
		field + ".unilateralRefundDelay":                w.UnilateralRefundDelay,
		field + ".unilateralRefundWithoutReceiverDelay":  w.UnilateralRefundWithoutReceiverDelay,
	}
	for name, v := range required {
		if v == nil {
			return swap.Timeouts{}, &swaperr.SchemaError{Field: name, Reason: "missing field"}
		}
	}
	return swap.Timeouts{
		RefundLocktime:                       *w.RefundLocktime,
		UnilateralClaimDelay:                 *w.UnilateralClaimDelay,
		UnilateralRefundDelay:                *w.UnilateralRefundDelay,
		UnilateralRefundWithoutReceiverDelay: *w.UnilateralRefundWithoutReceiverDelay,
	}, nil
}

// wireTree is the provider's JSON encoding of swap.TaprootTree: each
// leaf is a hex-encoded script.
type wireTree struct {
	ClaimLeaf                           string `json:"claimLeaf"`
	RefundLeaf                          string `json:"refundLeaf"`
	RefundWithoutReceiverLeaf           string `json:"refundWithoutReceiverLeaf"`
	UnilateralClaimLeaf                 string `json:"unilateralClaimLeaf"`
	UnilateralRefundLeaf                string `json:"unilateralRefundLeaf"`
	UnilateralRefundWithoutReceiverLeaf string `json:"unilateralRefundWithoutReceiverLeaf"`
}

func (w *wireTree) decode(field string) (swap.TaprootTree, error) {
	if w == nil {
		return swap.TaprootTree{}, &swaperr.SchemaError{Field: field, Reason: "missing tree object"}
	}
	leaves := map[string]string{
		field + ".claimLeaf":                           w.ClaimLeaf,
		field + ".refundLeaf":                          w.RefundLeaf,
		field + ".refundWithoutReceiverLeaf":            w.RefundWithoutReceiverLeaf,
		field + ".unilateralClaimLeaf":                  w.UnilateralClaimLeaf,
		field + ".unilateralRefundLeaf":                 w.UnilateralRefundLeaf,
		field + ".unilateralRefundWithoutReceiverLeaf":  w.UnilateralRefundWithoutReceiverLeaf,
	}
	decoded := make(map[string][]byte, len(leaves))
	for name, hexStr := range leaves {
		if hexStr == "" {
			return swap.TaprootTree{}, &swaperr.SchemaError{Field: name, Reason: "missing field"}
		}
		b, err := hex.DecodeString(hexStr)
		if err != nil {
			return swap.TaprootTree{}, &swaperr.SchemaError{Field: name, Reason: "not valid hex"}
		}
		decoded[name] = b
	}
	return swap.TaprootTree{
		ClaimLeaf:                           decoded[field+".claimLeaf"],
		RefundLeaf:                          decoded[field+".refundLeaf"],
		RefundWithoutReceiverLeaf:           decoded[field+".refundWithoutReceiverLeaf"],
		UnilateralClaimLeaf:                 decoded[field+".unilateralClaimLeaf"],
		UnilateralRefundLeaf:                decoded[field+".unilateralRefundLeaf"],
		UnilateralRefundWithoutReceiverLeaf: decoded[field+".unilateralRefundWithoutReceiverLeaf"],
	}, nil
}

func decodePubkey(field, hexStr string) ([32]byte, error) {
	if hexStr == "" {
		return [32]byte{}, &swaperr.SchemaError{Field: field, Reason: "missing field"}
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return [32]byte{}, &swaperr.SchemaError{Field: field, Reason: "not valid hex"}
	}
	key, err := vhtlc.NormalizePubkey(b)
	if err != nil {
		return [32]byte{}, &swaperr.SchemaError{Field: field, Reason: err.Error()}
	}
	return key, nil
}

// wireSubmarineResponse is the create-submarine-swap response body.
type wireSubmarineResponse struct {
	ID                string        `json:"id"`
	Address           string        `json:"address"`
	ExpectedAmountSat *int64        `json:"expectedAmount"`
	ServerPublicKey   string        `json:"serverPublicKey"`
	Timeouts          *wireTimeouts `json:"timeoutBlockHeights"`
	SwapTree          *wireTree     `json:"swapTree"`
}

func (w *wireSubmarineResponse) decode() (string, *swap.SubmarineResponse, error) {
	if w.ID == "" {
		return "", nil, &swaperr.SchemaError{Field: "id", Reason: "missing field"}
	}
	if w.Address == "" {
		return "", nil, &swaperr.SchemaError{Field: "address", Reason: "missing field"}
	}
	if w.ExpectedAmountSat == nil {
		return "", nil, &swaperr.SchemaError{Field: "expectedAmount", Reason: "missing field"}
	}
	serverKey, err := decodePubkey("serverPublicKey", w.ServerPublicKey)
	if err != nil {
		return "", nil, err
	}
	timeouts, err := w.Timeouts.decode("timeoutBlockHeights")
	if err != nil {
		return "", nil, err
	}
	tree, err := w.SwapTree.decode("swapTree")
	if err != nil {
		return "", nil, err
	}
	return w.ID, &swap.SubmarineResponse{
		LockupAddress:     w.Address,
		ExpectedAmountSat: *w.ExpectedAmountSat,
		ServerPubkey:      serverKey,
		Timeouts:          timeouts,
		Tree:              tree,
	}, nil
}

// wireReverseResponse is the create-reverse-swap response body.
type wireReverseResponse struct {
	ID               string        `json:"id"`
	Invoice          string        `json:"invoice"`
	LockupAddress    string        `json:"lockupAddress"`
	OnchainAmountSat *int64        `json:"onchainAmount"`
	ServerPublicKey  string        `json:"serverPublicKey"`
	Timeouts         *wireTimeouts `json:"timeoutBlockHeights"`
	SwapTree         *wireTree     `json:"swapTree"`
}

func (w *wireReverseResponse) decode() (string, *swap.ReverseResponse, error) {
	if w.ID == "" {
		return "", nil, &swaperr.SchemaError{Field: "id", Reason: "missing field"}
	}
	if w.Invoice == "" {
		return "", nil, &swaperr.SchemaError{Field: "invoice", Reason: "missing field"}
	}
	if w.LockupAddress == "" {
		return "", nil, &swaperr.SchemaError{Field: "lockupAddress", Reason: "missing field"}
	}
	if w.OnchainAmountSat == nil {
		return "", nil, &swaperr.SchemaError{Field: "onchainAmount", Reason: "missing field"}
	}
	serverKey, err := decodePubkey("serverPublicKey", w.ServerPublicKey)
	if err != nil {
		return "", nil, err
	}
	timeouts, err := w.Timeouts.decode("timeoutBlockHeights")
	if err != nil {
		return "", nil, err
	}
	tree, err := w.SwapTree.decode("swapTree")
	if err != nil {
		return "", nil, err
	}
	return w.ID, &swap.ReverseResponse{
		Invoice:          w.Invoice,
		LockupAddress:    w.LockupAddress,
		OnchainAmountSat: *w.OnchainAmountSat,
		ServerPubkey:     serverKey,
		Timeouts:         timeouts,
		Tree:             tree,
	}, nil
}

// wireChainResponse is the create-chain-swap response body, carrying
// both the lockup and claim side VHTLC data (spec §4.8).
type wireChainResponse struct {
	ID                string        `json:"id"`
	LockupAddress     string        `json:"lockupAddress"`
	ClaimAddress      string        `json:"claimAddress"`
	ExpectedAmountSat *int64        `json:"expectedAmount"`
	ServerPublicKey   string        `json:"serverPublicKey"`
	LockupTimeouts    *wireTimeouts `json:"lockupTimeoutBlockHeights"`
	ClaimTimeouts     *wireTimeouts `json:"claimTimeoutBlockHeights"`
	LockupTree        *wireTree     `json:"lockupSwapTree"`
	ClaimTree         *wireTree     `json:"claimSwapTree"`
}

func (w *wireChainResponse) decode() (string, *swap.ChainResponse, error) {
	if w.ID == "" {
		return "", nil, &swaperr.SchemaError{Field: "id", Reason: "missing field"}
	}
	if w.LockupAddress == "" {
		return "", nil, &swaperr.SchemaError{Field: "lockupAddress", Reason: "missing field"}
	}
	if w.ClaimAddress == "" {
		return "", nil, &swaperr.SchemaError{Field: "claimAddress", Reason: "missing field"}
	}
	if w.ExpectedAmountSat == nil {
		return "", nil, &swaperr.SchemaError{Field: "expectedAmount", Reason: "missing field"}
	}
	serverKey, err := decodePubkey("serverPublicKey", w.ServerPublicKey)
	if err != nil {
		return "", nil, err
	}
	lockupTimeouts, err := w.LockupTimeouts.decode("lockupTimeoutBlockHeights")
	if err != nil {
		return "", nil, err
	}
	claimTimeouts, err := w.ClaimTimeouts.decode("claimTimeoutBlockHeights")
	if err != nil {
		return "", nil, err
	}
	lockupTree, err := w.LockupTree.decode("lockupSwapTree")
	if err != nil {
		return "", nil, err
	}
	claimTree, err := w.ClaimTree.decode("claimSwapTree")
	if err != nil {
		return "", nil, err
	}
	return w.ID, &swap.ChainResponse{
		LockupAddress:     w.LockupAddress,
		ClaimAddress:      w.ClaimAddress,
		ExpectedAmountSat: *w.ExpectedAmountSat,
		ServerPubkey:      serverKey,
		LockupTimeouts:    lockupTimeouts,
		ClaimTimeouts:     claimTimeouts,
		LockupTree:        lockupTree,
		ClaimTree:         claimTree,
	}, nil
}

// wireLimits is the GET /v2/swap/{submarine,reverse,chain} fees+limits
// response (spec §4.2): the amount window the provider currently
// accepts for that swap type's create call.
type wireLimits struct {
	Minimal *int64 `json:"minimal"`
	Maximal *int64 `json:"maximal"`
}

func (w *wireLimits) decode() (*swap.Limits, error) {
	if w.Minimal == nil {
		return nil, &swaperr.SchemaError{Field: "minimal", Reason: "missing field"}
	}
	if w.Maximal == nil {
		return nil, &swaperr.SchemaError{Field: "maximal", Reason: "missing field"}
	}
	return &swap.Limits{MinSat: *w.Minimal, MaxSat: *w.Maximal}, nil
}

// wireStatus is the GET /v2/swap/{id} poll response and the shape of
// each element of a WebSocket update's "args" array (spec §6.3).
type wireStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Transaction string `json:"transaction,omitempty"`
}

func (w *wireStatus) decode() (string, swap.Status, error) {
	if w.ID == "" {
		return "", "", &swaperr.SchemaError{Field: "id", Reason: "missing field"}
	}
	if w.Status == "" {
		return "", "", &swaperr.SchemaError{Field: "status", Reason: "missing field"}
	}
	return w.ID, swap.Status(w.Status), nil
}

// wireErrorBody is the shape of a non-2xx JSON error response, kept
// loose (map[string]interface{}) since provider error bodies vary by
// endpoint -- the caller only needs the raw structured data preserved
// in NetworkError.ErrorData.
type wireErrorBody map[string]interface{}

func parseErrorBody(raw []byte) map[string]interface{} {
	var body wireErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return map[string]interface{}{"raw": string(raw)}
	}
	return body
}

// wirePreimage is the GET .../preimage response.
type wirePreimage struct {
	Preimage string `json:"preimage"`
}

func (w *wirePreimage) decode() ([]byte, error) {
	if w.Preimage == "" {
		return nil, &swaperr.SchemaError{Field: "preimage", Reason: "missing field"}
	}
	b, err := hex.DecodeString(w.Preimage)
	if err != nil {
		return nil, &swaperr.SchemaError{Field: "preimage", Reason: "not valid hex"}
	}
	if len(b) != 32 {
		return nil, &swaperr.SchemaError{Field: "preimage", Reason: fmt.Sprintf("expected 32 bytes, got %d", len(b))}
	}
	return b, nil
}

// wireTransaction is the GET .../transaction response.
type wireTransaction struct {
	TxID string `json:"id"`
}

func (w *wireTransaction) decode() (string, error) {
	if w.TxID == "" {
		return "", &swaperr.SchemaError{Field: "id", Reason: "missing field"}
	}
	return w.TxID, nil
}

// wireQuote is the chain-swap (re)quote response.
type wireQuote struct {
	AmountSat *int64 `json:"amount"`
}

func (w *wireQuote) decode() (int64, error) {
	if w.AmountSat == nil {
		return 0, &swaperr.SchemaError{Field: "amount", Reason: "missing field"}
	}
	return *w.AmountSat, nil
}
