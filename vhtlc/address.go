package vhtlc

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/btcutil"

	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// MainnetHRP and OtherNetworkHRP are the two bech32m human-readable
// parts a VHTLC address may use (spec §6.4): "ark" on mainnet,
// "tark" everywhere else (testnet, signet, mutinynet, regtest).
const (
	MainnetHRP      = "ark"
	OtherNetworkHRP = "tark"
)

// numsPointHex is the standard BIP341 NUMS ("nothing up my sleeve")
// point, used as the unspendable taproot internal key so a VHTLC can
// only be spent via one of its six script-path leaves, never a key
// path.
const numsPointHex = "0250929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac"

func internalKey() (*btcec.PublicKey, error) {
	b, err := hex.DecodeString(numsPointHex)
	if err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(b)
}

// Tree is a built VHTLC: its six leaves plus the resulting taproot
// output key, from which the address and the per-leaf control blocks
// for witness assembly are derived.
type Tree struct {
	Leaves    *Leaves
	OutputKey *btcec.PublicKey

	tapLeaves []txscript.TapLeaf
	tapTree   *txscript.IndexedTapScriptTree
}

// Build assembles the six leaves into a taproot script tree and
// computes the resulting output key (spec §3: "the VHTLC address ...
// is the verification hash of the whole entity").
func Build(o Options) (*Tree, error) {
	leaves, err := BuildLeaves(o)
	if err != nil {
		return nil, err
	}

	ordered := []([]byte){
		leaves.Claim,
		leaves.Refund,
		leaves.RefundWithoutReceiver,
		leaves.UnilateralClaim,
		leaves.UnilateralRefund,
		leaves.UnilateralRefundWithoutReceiver,
	}

	tapLeaves := make([]txscript.TapLeaf, len(ordered))
	for i, script := range ordered {
		tapLeaves[i] = txscript.NewBaseTapLeaf(script)
	}

	tapTree := txscript.AssembleTaprootScriptTree(tapLeaves...)
	rootHash := tapTree.RootNode.TapHash()

	internal, err := internalKey()
	if err != nil {
		return nil, err
	}

	outputKey := txscript.ComputeTaprootOutputKey(internal, rootHash[:])

	return &Tree{
		Leaves:    leaves,
		OutputKey: outputKey,
		tapLeaves: tapLeaves,
		tapTree:   tapTree,
	}, nil
}

// Address encodes the tree's output key as a bech32m VHTLC address
// under hrp ("ark" or "tark", spec §6.4).
func (t *Tree) Address(hrp string) (string, error) {
	params := &chaincfg.Params{Bech32HRPSegwit: hrp}

	xOnly := schnorr.SerializePubKey(t.OutputKey)
	addr, err := btcutil.NewAddressTaproot(xOnly, params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// HRPForNetwork returns the VHTLC bech32m HRP for network (spec §6.4:
// "ark" on mainnet, "tark" otherwise).
func HRPForNetwork(network string) string {
	if network == "mainnet" {
		return MainnetHRP
	}
	return OtherNetworkHRP
}

// ControlBlock returns the taproot control block proving leafScript is
// part of t's tree, required as the final witness element of a
// script-path spend.
func (t *Tree) ControlBlock(leafScript []byte) ([]byte, error) {
	internal, err := internalKey()
	if err != nil {
		return nil, err
	}

	idx, ok := t.tapTree.LeafProofIndex[txscript.NewBaseTapLeaf(leafScript).TapHash()]
	if !ok {
		return nil, &swaperr.ValidationError{
			Field:  "leafScript",
			Reason: "not a member of this VHTLC's tree",
		}
	}

	proof := t.tapTree.LeafMerkleProofs[idx]
	cb := proof.ToControlBlock(internal)
	return cb.ToBytes()
}
