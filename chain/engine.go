// Package chain implements the bidirectional Ark<->BTC atomic swap
// protocol (spec §4.8): one leg is a lockup VHTLC the user funds, the
// other a claim VHTLC the user claims with the preimage, on whichever
// chain Direction puts them. Grounded, like submarine and reverse, on
// peer.go's collaborator-struct + thin orchestration-method shape.
package chain

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"time"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swapconfig"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/swapmonitor"
	"github.com/arkade-os/boltz-swap-go/swaprepo"
	"github.com/arkade-os/boltz-swap-go/swapprovider"
	"github.com/arkade-os/boltz-swap-go/vhtlc"
	"github.com/arkade-os/boltz-swap-go/vhtlctx"
)

const defaultFeeSatsPerByte = 1.0

// btcHRP mirrors vhtlc.HRPForNetwork but for the Bitcoin-mainchain
// leg's bech32m HRP rather than Ark's: the claim/lockup VHTLC script
// is chain-agnostic, only the address encoding's HRP differs by which
// network the leg actually lives on (spec §6.4 covers only the Ark
// side; this table is this package's own, for the mainchain side
// invariant I2 also demands be checked).
func btcHRP(network swapconfig.Network) string {
	switch network {
	case swapconfig.Mainnet:
		return "bc"
	case swapconfig.Regtest:
		return "bcrt"
	default:
		return "tb"
	}
}

// Engine runs the chain-swap protocol for one provider/wallet pairing.
type Engine struct {
	provider    *swapprovider.Client
	repo        *swaprepo.Repository
	monitor     *swapmonitor.Monitor
	wallet      swap.Wallet
	arkInfo     swap.ArkInfoProvider
	claimHelper swap.ChainClaimHelper
	cfg         *swapconfig.Config
}

// New constructs a chain Engine from its collaborators.
func New(cfg *swapconfig.Config, provider *swapprovider.Client, repo *swaprepo.Repository,
	monitor *swapmonitor.Monitor, wallet swap.Wallet, arkInfo swap.ArkInfoProvider,
	claimHelper swap.ChainClaimHelper) *Engine {
	return &Engine{
		cfg: cfg, provider: provider, repo: repo, monitor: monitor,
		wallet: wallet, arkInfo: arkInfo, claimHelper: claimHelper,
	}
}

// ArkToBtc creates a chain swap where the user locks Ark funds and
// claims BTC on the mainchain leg.
func (e *Engine) ArkToBtc(ctx context.Context, btcAddress string, senderLockAmountSat, receiverLockAmountSat int64) (*swap.Swap, error) {
	return e.CreateChainSwap(ctx, swap.DirectionArkToBtc, senderLockAmountSat, receiverLockAmountSat, btcAddress)
}

// BtcToArk creates a chain swap where the user locks BTC on the
// mainchain leg (funding it is the host application's responsibility,
// spec §1) and claims Ark funds.
func (e *Engine) BtcToArk(ctx context.Context, senderLockAmountSat, receiverLockAmountSat int64) (*swap.Swap, error) {
	return e.CreateChainSwap(ctx, swap.DirectionBtcToArk, senderLockAmountSat, receiverLockAmountSat, "")
}

// CreateChainSwap is the low-level constructor both ArkToBtc and
// BtcToArk funnel through: picks fresh claim/refund keys, submits,
// persists. It neither verifies the returned addresses nor registers
// with the monitor -- callers run VerifyChainSwap and
// WaitAndClaimArk/WaitAndClaimBtc explicitly (spec §4.8 "directly
// returns a PendingChainSwap without auto-claim").
func (e *Engine) CreateChainSwap(ctx context.Context, direction swap.Direction,
	senderLockAmountSat, receiverLockAmountSat int64, btcAddress string) (*swap.Swap, error) {

	if (senderLockAmountSat > 0) == (receiverLockAmountSat > 0) {
		return nil, &swaperr.ValidationError{
			Field:  "amount",
			Reason: "exactly one of senderLockAmount or receiverLockAmount must be set",
		}
	}
	if direction == swap.DirectionArkToBtc && btcAddress == "" {
		return nil, &swaperr.ValidationError{Field: "btcAddress", Reason: "required for an arkToBtc swap"}
	}

	amountSat := senderLockAmountSat
	if receiverLockAmountSat > 0 {
		amountSat = receiverLockAmountSat
	}
	limits, err := e.provider.GetChainLimits(ctx)
	if err != nil {
		return nil, err
	}
	if !limits.InRange(amountSat) {
		return nil, &swaperr.ValidationError{
			Field:  "amount",
			Reason: "amount outside the provider's accepted range",
			Limits: limits,
		}
	}

	var preimage [32]byte
	if _, err := rand.Read(preimage[:]); err != nil {
		return nil, err
	}
	hash := sha256.Sum256(preimage[:])

	claimPubkey, err := e.wallet.NewPubkey(ctx)
	if err != nil {
		return nil, err
	}
	refundPubkey, err := e.wallet.NewPubkey(ctx)
	if err != nil {
		return nil, err
	}

	req := &swap.ChainRequest{
		Direction:             direction,
		SenderLockAmountSat:   senderLockAmountSat,
		ReceiverLockAmountSat: receiverLockAmountSat,
		PreimageHash:          hash,
		ClaimPubkey:           claimPubkey,
		RefundPubkey:          refundPubkey,
		BtcAddress:            btcAddress,
	}
	id, resp, err := e.provider.CreateChain(ctx, req)
	if err != nil {
		return nil, err
	}

	s := &swap.Swap{
		ID:             id,
		Type:           swap.TypeChain,
		Status:         swap.StatusCreated,
		CreatedAt:      time.Now().Unix(),
		Preimage:       preimage[:],
		Request:        req,
		Response:       resp,
		Direction:      direction,
		EphemeralKey:   ephemeralKeyFor(direction, claimPubkey, refundPubkey),
		FeeSatsPerByte: defaultFeeSatsPerByte,
	}
	if err := e.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ephemeralKeyFor picks which of the two fresh keys the caller will
// need again later: the Ark-side key, since that's the one a future
// claim/refund on this library's own VHTLC builder signs with. Both
// keys also stay on the ChainRequest; claimBtc reads the BTC-side
// claim key from there.
func ephemeralKeyFor(direction swap.Direction, claimPubkey, refundPubkey [32]byte) []byte {
	if direction == swap.DirectionBtcToArk {
		return claimPubkey[:]
	}
	return refundPubkey[:]
}

// buildLegTrees rebuilds both the lockup-side and claim-side VHTLCs
// from s's persisted request/response, following the fixed role
// assignment that holds regardless of Direction: the lockup leg's
// sender is the user (refund key) and its receiver is the provider;
// the claim leg's sender is the provider and its receiver is the user
// (claim key). Only which chain each leg lives on varies by
// Direction.
func buildLegTrees(req *swap.ChainRequest, resp *swap.ChainResponse) (lockup, claim *vhtlc.Tree, err error) {
	lockup, err = vhtlc.Build(vhtlc.Options{
		PreimageHash: req.PreimageHash,
		Sender:       req.RefundPubkey,
		Receiver:     resp.ServerPubkey,
		Server:       resp.ServerPubkey,
		Timeouts:     resp.LockupTimeouts,
	})
	if err != nil {
		return nil, nil, err
	}
	claim, err = vhtlc.Build(vhtlc.Options{
		PreimageHash: req.PreimageHash,
		Sender:       resp.ServerPubkey,
		Receiver:     req.ClaimPubkey,
		Server:       resp.ServerPubkey,
		Timeouts:     resp.ClaimTimeouts,
	})
	if err != nil {
		return nil, nil, err
	}
	return lockup, claim, nil
}

// VerifyChainSwap rebuilds both the lockup-side and claim-side VHTLCs
// and checks both addresses against the provider's response
// (invariant I2): whichever leg Direction puts on the Ark network is
// checked under the Ark HRP, the other under the Bitcoin-mainchain
// HRP for the configured network.
func (e *Engine) VerifyChainSwap(s *swap.Swap) error {
	req, ok := s.Request.(*swap.ChainRequest)
	if !ok {
		return &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	resp, ok := s.Response.(*swap.ChainResponse)
	if !ok {
		return &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}

	lockupTree, claimTree, err := buildLegTrees(req, resp)
	if err != nil {
		return err
	}

	arkHRP := e.cfg.HRP()
	bitcoinHRP := btcHRP(e.cfg.Network)

	lockupHRP, claimHRP := arkHRP, bitcoinHRP
	if req.Direction == swap.DirectionBtcToArk {
		lockupHRP, claimHRP = bitcoinHRP, arkHRP
	}

	if err := verifyAddress(s.ID, lockupTree, lockupHRP, resp.LockupAddress); err != nil {
		return err
	}
	return verifyAddress(s.ID, claimTree, claimHRP, resp.ClaimAddress)
}

func verifyAddress(swapID string, tree *vhtlc.Tree, hrp, want string) error {
	got, err := tree.Address(hrp)
	if err != nil {
		return err
	}
	if got != want {
		return &swaperr.SecurityError{
			SwapID:  swapID,
			Message: "Boltz is trying to scam us (invalid address)",
		}
	}
	return nil
}

// WaitAndClaimArk registers s with the monitor for autonomous Ark-side
// claim (btcToArk direction: the user claims Ark funds once the
// provider's Ark-side lockup confirms) and blocks until terminal.
func (e *Engine) WaitAndClaimArk(ctx context.Context, s *swap.Swap) (*swap.Swap, error) {
	if s.Direction != swap.DirectionBtcToArk {
		return nil, &swaperr.ValidationError{Field: "swap", Reason: "WaitAndClaimArk only applies to btcToArk swaps"}
	}
	if !e.monitor.HasSwap(s.ID) {
		cb := swapmonitor.Callbacks{
			Claim: func() error {
				_, err := e.claimArk(context.Background(), s)
				return err
			},
		}
		if err := e.monitor.AddSwap(ctx, s, cb); err != nil {
			return nil, err
		}
	}
	return e.monitor.WaitForSwapCompletion(ctx, s.ID)
}

// WaitAndClaimBtc registers s with the monitor for autonomous BTC-side
// claim (arkToBtc direction: the user claims BTC funds once the
// provider's BTC-side lockup confirms), delegating the mainchain
// broadcast to the ChainClaimHelper collaborator.
func (e *Engine) WaitAndClaimBtc(ctx context.Context, s *swap.Swap) (*swap.Swap, error) {
	if s.Direction != swap.DirectionArkToBtc {
		return nil, &swaperr.ValidationError{Field: "swap", Reason: "WaitAndClaimBtc only applies to arkToBtc swaps"}
	}
	if !e.monitor.HasSwap(s.ID) {
		cb := swapmonitor.Callbacks{
			Claim: func() error {
				_, err := e.claimBtc(context.Background(), s)
				return err
			},
		}
		if err := e.monitor.AddSwap(ctx, s, cb); err != nil {
			return nil, err
		}
	}
	return e.monitor.WaitForSwapCompletion(ctx, s.ID)
}

// claimArk runs the VHTLC claim path (spec §4.5) against the Ark-side
// claim VHTLC.
func (e *Engine) claimArk(ctx context.Context, s *swap.Swap) (string, error) {
	req, ok := s.Request.(*swap.ChainRequest)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	resp, ok := s.Response.(*swap.ChainResponse)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	if !s.HasPreimage() {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "preimage not available, cannot claim"}
	}

	_, claimTree, err := buildLegTrees(req, resp)
	if err != nil {
		return "", err
	}

	dustSat, err := e.arkInfo.DustSat(ctx)
	if err != nil {
		return "", err
	}

	var preimage [32]byte
	copy(preimage[:], s.Preimage)

	feeRate := s.FeeSatsPerByte
	if feeRate <= 0 {
		feeRate = defaultFeeSatsPerByte
	}

	job := &vhtlctx.ClaimJob{
		SwapID:       s.ID,
		Wallet:       e.wallet,
		Tree:         claimTree,
		Preimage:     preimage,
		ReceiverKey:  req.ClaimPubkey,
		DestAddress:  s.ToAddress,
		FeeSatsVByte: feeRate,
	}
	txid, err := job.Execute(ctx, resp.ClaimAddress, dustSat)
	if err != nil {
		return "", err
	}
	return txid, nil
}

// claimBtc builds the claim leaf's witness data locally (this core
// owns the preimage and the user's own signing key) and hands it to
// the ChainClaimHelper for the mainchain-specific transaction assembly
// and broadcast (spec §4.5: "this core constructs witness data and
// hands it to the provider-supplied claim helper. No mainchain
// broadcasting is done by this library"). The server's own signature
// isn't ours to produce; like the Ark-side cooperative paths, that
// witness slot travels as nil and is filled in downstream, mirroring
// vhtlctx.RefundJob's serverSig placeholder before the Ark server's
// cosign round trip.
func (e *Engine) claimBtc(ctx context.Context, s *swap.Swap) (string, error) {
	req, ok := s.Request.(*swap.ChainRequest)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	resp, ok := s.Response.(*swap.ChainResponse)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	if !s.HasPreimage() {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "preimage not available, cannot claim"}
	}

	_, claimTree, err := buildLegTrees(req, resp)
	if err != nil {
		return "", err
	}

	leafScript := claimTree.Leaves.Claim
	controlBlock, err := claimTree.ControlBlock(leafScript)
	if err != nil {
		return "", err
	}

	var preimage [32]byte
	copy(preimage[:], s.Preimage)

	receiverSig, err := e.wallet.SignTaprootScriptSpend(ctx, req.ClaimPubkey, "", 0, leafScript)
	if err != nil {
		return "", &swaperr.TransactionFailedError{SwapID: s.ID, Reason: err.Error()}
	}

	witness := vhtlctx.ClaimWitnessComponents(preimage[:], receiverSig, nil, leafScript, controlBlock)
	return e.claimHelper.ClaimBtc(ctx, s.ID, witness)
}

// RefundArk reclaims the Ark-side lockup once the provider reports
// transaction.lockupFailed, using the same cooperative-first ladder
// submarine's refund uses.
func (e *Engine) RefundArk(ctx context.Context, s *swap.Swap) (string, error) {
	req, ok := s.Request.(*swap.ChainRequest)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	resp, ok := s.Response.(*swap.ChainResponse)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a chain swap"}
	}
	if req.Direction != swap.DirectionArkToBtc {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "only the Ark-side lockup of an arkToBtc swap can be refunded here"}
	}

	lockupTree, _, err := buildLegTrees(req, resp)
	if err != nil {
		return "", err
	}

	dustSat, err := e.arkInfo.DustSat(ctx)
	if err != nil {
		return "", err
	}

	feeRate := s.FeeSatsPerByte
	if feeRate <= 0 {
		feeRate = defaultFeeSatsPerByte
	}

	job := &vhtlctx.RefundJob{
		SwapID:       s.ID,
		Wallet:       e.wallet,
		Tree:         lockupTree,
		SenderKey:    req.RefundPubkey,
		DestAddress:  s.ToAddress,
		FeeSatsVByte: feeRate,
	}
	txid, err := job.ExecuteWithEscalation(ctx, resp.LockupAddress, dustSat)
	if err != nil {
		return "", err
	}

	s.Status = swap.StatusTransactionRefunded
	if saveErr := e.repo.Save(ctx, s); saveErr != nil {
		return txid, saveErr
	}
	return txid, nil
}

// QuoteSwap re-quotes s when the amount actually sent differs from
// expectedAmount, fetching the provider's adjusted amount and
// confirming it in the same round trip: the provider only adjusts
// once told the caller accepts (spec §4.8 "provider adjusts and
// caller re-locks"), so accepting is folded into this single
// operation rather than left as a second exported step.
func (e *Engine) QuoteSwap(ctx context.Context, s *swap.Swap) (int64, error) {
	amount, err := e.provider.GetChainQuote(ctx, s.ID)
	if err != nil {
		return 0, err
	}
	if err := e.provider.PostChainQuote(ctx, s.ID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}
