package swap

import "context"

// Vtxo is a virtual UTXO as reported by the Ark indexer: enough to
// build a spending input for the claim/refund transaction.
type Vtxo struct {
	Txid      string
	VOut      uint32
	AmountSat int64
	Script    []byte
}

// Wallet is the signing identity and Ark wallet. Out of scope for this
// module (spec §1): address derivation, VTXO discovery, Ark-network
// send/settle and the signing oracle are all supplied by the host
// application.
type Wallet interface {
	// NewPubkey returns a fresh 32-byte x-only pubkey the wallet
	// controls, used as the sender/receiver/refund key of a swap.
	NewPubkey(ctx context.Context) ([32]byte, error)

	// VtxosAt returns the VTXOs currently sitting at an Ark address.
	VtxosAt(ctx context.Context, addr string) ([]Vtxo, error)

	// SendToArkAddress moves amountSat from the wallet's own VTXOs to
	// addr, returning the Ark txid. Used to fund a submarine/chain
	// lockup.
	SendToArkAddress(ctx context.Context, addr string, amountSat int64) (string, error)

	// SignTaprootScriptSpend produces a taproot script-path signature
	// over tx's input at inputIndex, spending leafScript, under the
	// key identified by pubkey.
	SignTaprootScriptSpend(ctx context.Context, pubkey [32]byte,
		txHex string, inputIndex int, leafScript []byte) ([]byte, error)

	// SubmitArkTransaction hands a partially-signed Ark transaction
	// (base64 PSBT) to the Ark server for its provisional fill-in
	// (e.g. fee output, additional inputs) and returns the updated
	// PSBT for the caller to finish signing.
	SubmitArkTransaction(ctx context.Context, psbtBase64 string) (string, error)

	// CosignArkTransaction requests the Ark server's countersignature
	// on a fully-signed-by-us PSBT and returns the finalized PSBT.
	CosignArkTransaction(ctx context.Context, psbtBase64 string) (string, error)

	// BroadcastArkTransaction submits a finalized PSBT to the Ark
	// network and returns its txid.
	BroadcastArkTransaction(ctx context.Context, psbtBase64 string) (string, error)
}

// ArkInfoProvider answers chain-wide configuration questions: dust
// limit, network HRP, the Ark server's own pubkey and its configured
// exit delays. Out of scope for this module (spec §1).
type ArkInfoProvider interface {
	DustSat(ctx context.Context) (int64, error)
	NetworkHRP(ctx context.Context) (string, error)
	ServerPubkey(ctx context.Context) ([32]byte, error)
	UnilateralExitDelay(ctx context.Context) (uint32, error)
}

// KeyValueStore is the persistence primitive the repository is built
// on. Must tolerate concurrent readers; writes are serialized by the
// monitor's event loop (spec §5).
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys returns every key currently stored with the given prefix,
	// used by the one-time migration to discover legacy
	// "collection:*" entries.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ChainClaimHelper delegates the BTC-side claim of a chain swap to the
// provider's native BTC claim flow (spec §4.5: "this core constructs
// witness data and hands it to the provider-supplied claim helper").
// This module never broadcasts mainchain transactions itself.
type ChainClaimHelper interface {
	ClaimBtc(ctx context.Context, swapID string, witness [][]byte) (string, error)
}
