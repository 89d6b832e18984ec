// Package submarine implements the pay-Lightning-via-Ark protocol
// (spec §4.6): the user locks funds in a VHTLC on Ark, the provider
// pays a Lightning invoice and claims those funds with the resulting
// preimage. Grounded on peer.go's collaborator-struct + thin
// orchestration-method shape.
package submarine

import (
	"context"
	"time"

	"github.com/arkade-os/boltz-swap-go/bolt11"
	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swapconfig"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/swapmonitor"
	"github.com/arkade-os/boltz-swap-go/swaprepo"
	"github.com/arkade-os/boltz-swap-go/swapprovider"
	"github.com/arkade-os/boltz-swap-go/vhtlc"
	"github.com/arkade-os/boltz-swap-go/vhtlctx"
)

// defaultFeeSatsPerByte is used for claim/refund fee estimation when a
// swap carries no explicit FeeSatsPerByte.
const defaultFeeSatsPerByte = 1.0

// Engine runs the submarine protocol for one provider/wallet pairing.
// One Engine is shared across every submarine swap the host creates.
type Engine struct {
	provider *swapprovider.Client
	repo     *swaprepo.Repository
	monitor  *swapmonitor.Monitor
	wallet   swap.Wallet
	arkInfo  swap.ArkInfoProvider
	cfg      *swapconfig.Config
}

// New constructs a submarine Engine from its collaborators.
func New(cfg *swapconfig.Config, provider *swapprovider.Client, repo *swaprepo.Repository,
	monitor *swapmonitor.Monitor, wallet swap.Wallet, arkInfo swap.ArkInfoProvider) *Engine {
	return &Engine{cfg: cfg, provider: provider, repo: repo, monitor: monitor, wallet: wallet, arkInfo: arkInfo}
}

// CreateSubmarineSwap submits invoice to the provider, picks a fresh
// refund pubkey from the wallet identity, verifies the returned lockup
// address against the locally-built VHTLC (invariant I2) and persists
// the swap. refundToAddress is where a later refund sends the Ark
// funds back to; the wallet collaborator has no address-derivation
// method of its own (spec §1 keeps that out of scope), so the caller
// supplies it up front.
func (e *Engine) CreateSubmarineSwap(ctx context.Context, invoice, refundToAddress string) (*swap.Swap, error) {
	if invoice == "" {
		return nil, &swaperr.ValidationError{Field: "invoice", Reason: "must not be empty"}
	}
	decoded, err := bolt11.Decode(invoice)
	if err != nil {
		return nil, &swaperr.ValidationError{Field: "invoice", Reason: err.Error()}
	}

	if decoded.MilliSat != nil {
		if err := e.checkAmountWithinLimits(ctx, *decoded.MilliSat/1000); err != nil {
			return nil, err
		}
	}

	refundPubkey, err := e.wallet.NewPubkey(ctx)
	if err != nil {
		return nil, err
	}

	req := &swap.SubmarineRequest{Invoice: invoice, RefundPubkey: refundPubkey}
	id, resp, err := e.provider.CreateSubmarine(ctx, req)
	if err != nil {
		return nil, err
	}

	// Submarine's receiver is the provider itself: it both claims (with
	// the preimage it learns by paying the invoice) and cosigns as the
	// Ark server. The schema carries one pubkey for that party, so
	// receiver and server coincide in the VHTLC options.
	tree, err := vhtlc.Build(vhtlc.Options{
		PreimageHash: decoded.PaymentHash,
		Sender:       refundPubkey,
		Receiver:     resp.ServerPubkey,
		Server:       resp.ServerPubkey,
		Timeouts:     resp.Timeouts,
	})
	if err != nil {
		return nil, err
	}
	if err := verifyAddress(id, tree, e.cfg.HRP(), resp.LockupAddress); err != nil {
		return nil, err
	}

	s := &swap.Swap{
		ID:             id,
		Type:           swap.TypeSubmarine,
		Status:         swap.StatusCreated,
		CreatedAt:      time.Now().Unix(),
		Request:        req,
		Response:       resp,
		ToAddress:      refundToAddress,
		FeeSatsPerByte: defaultFeeSatsPerByte,
	}
	if err := e.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// PayLightning funds s's lockup address from the wallet's own VTXOs,
// registers s with the monitor (autonomous refund on
// invoice.failedToPay/swap.expired), and blocks until the swap reaches
// a terminal status.
func (e *Engine) PayLightning(ctx context.Context, s *swap.Swap) (*swap.Swap, error) {
	resp, ok := s.Response.(*swap.SubmarineResponse)
	if !ok {
		return nil, &swaperr.ValidationError{Field: "swap", Reason: "not a submarine swap"}
	}

	if _, err := e.wallet.SendToArkAddress(ctx, resp.LockupAddress, resp.ExpectedAmountSat); err != nil {
		return nil, &swaperr.TransactionFailedError{SwapID: s.ID, Reason: err.Error()}
	}

	if !e.monitor.HasSwap(s.ID) {
		cb := swapmonitor.Callbacks{
			Refund: func() error {
				_, err := e.RefundSubmarineSwap(context.Background(), s)
				return err
			},
		}
		if err := e.monitor.AddSwap(ctx, s, cb); err != nil {
			return nil, err
		}
	}

	final, err := e.monitor.WaitForSwapCompletion(ctx, s.ID)
	if err != nil {
		return final, err
	}
	return final, nil
}

// RefundSubmarineSwap reclaims s's locked Ark funds, callable either
// automatically (monitor-triggered) or manually when autonomous refund
// couldn't run. It rebuilds the VHTLC from the payment hash of the
// swap's recorded invoice, so a swap without its original invoice
// (the restored case for which the monitor skips the autonomous
// trigger) fails here with a ValidationError and is not refunded.
func (e *Engine) RefundSubmarineSwap(ctx context.Context, s *swap.Swap) (string, error) {
	req, ok := s.Request.(*swap.SubmarineRequest)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a submarine swap"}
	}
	resp, ok := s.Response.(*swap.SubmarineResponse)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a submarine swap"}
	}

	decoded, err := bolt11.Decode(req.Invoice)
	if err != nil {
		return "", &swaperr.ValidationError{Field: "invoice", Reason: err.Error()}
	}
	tree, err := vhtlc.Build(vhtlc.Options{
		PreimageHash: decoded.PaymentHash,
		Sender:       req.RefundPubkey,
		Receiver:     resp.ServerPubkey,
		Server:       resp.ServerPubkey,
		Timeouts:     resp.Timeouts,
	})
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
		Tree:         tree,
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

// checkAmountWithinLimits fetches the provider's current submarine
// fees+limits window and rejects locally when amountSat falls outside
// it, enumerating the window in the error (spec §8: "Amount =
// limits.min succeeds; limits.min-1 rejected client-side with
// enumerated limits in error body").
func (e *Engine) checkAmountWithinLimits(ctx context.Context, amountSat int64) error {
	limits, err := e.provider.GetSubmarineLimits(ctx)
	if err != nil {
		return err
	}
	if !limits.InRange(amountSat) {
		return &swaperr.ValidationError{
			Field:  "invoice",
			Reason: "amount outside the provider's accepted range",
			Limits: limits,
		}
	}
	return nil
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
