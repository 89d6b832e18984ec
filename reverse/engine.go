// Package reverse implements the receive-Lightning-into-Ark protocol
// (spec §4.7): the engine generates a preimage, the provider issues a
// hold invoice against its hash, and once the counterparty pays it and
// locks Ark funds for the user, this engine claims them with the
// preimage. Grounded, like submarine, on peer.go's collaborator-struct
// + thin orchestration-method shape.
package reverse

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"strings"
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

// defaultFeeSatsPerByte mirrors submarine's fallback fee rate.
const defaultFeeSatsPerByte = 1.0

// Engine runs the reverse protocol for one provider/wallet pairing.
type Engine struct {
	provider *swapprovider.Client
	repo     *swaprepo.Repository
	monitor  *swapmonitor.Monitor
	wallet   swap.Wallet
	arkInfo  swap.ArkInfoProvider
	cfg      *swapconfig.Config
}

// New constructs a reverse Engine from its collaborators.
func New(cfg *swapconfig.Config, provider *swapprovider.Client, repo *swaprepo.Repository,
	monitor *swapmonitor.Monitor, wallet swap.Wallet, arkInfo swap.ArkInfoProvider) *Engine {
	return &Engine{cfg: cfg, provider: provider, repo: repo, monitor: monitor, wallet: wallet, arkInfo: arkInfo}
}

// CreateLightningInvoice generates a fresh 32-byte preimage, submits
// its SHA-256 hash to the provider, verifies the returned invoice's
// payment hash matches before trusting it, verifies the lockup address
// against the locally-built VHTLC (invariant I2) and persists the
// swap with its preimage attached. A whitespace-only description is
// treated as absent, per spec §4.7.
func (e *Engine) CreateLightningInvoice(ctx context.Context, amountSat int64, description, claimToAddress string) (*swap.Swap, error) {
	if amountSat <= 0 {
		return nil, &swaperr.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	limits, err := e.provider.GetReverseLimits(ctx)
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

	if strings.TrimSpace(description) == "" {
		description = ""
	}

	req := &swap.ReverseRequest{
		InvoiceAmountSat: amountSat,
		PreimageHash:     hash,
		ClaimPubkey:      claimPubkey,
		Description:      description,
	}
	id, resp, err := e.provider.CreateReverse(ctx, req)
	if err != nil {
		return nil, err
	}

	decoded, err := bolt11.Decode(resp.Invoice)
	if err != nil {
		return nil, &swaperr.ValidationError{Field: "invoice", Reason: err.Error()}
	}
	if decoded.PaymentHash != hash {
		return nil, &swaperr.SecurityError{
			SwapID:  id,
			Message: "Boltz is trying to scam us (invalid address)",
		}
	}

	// Reverse's single provider-side pubkey both funds the Ark-side
	// lockup (sender) and cosigns as the Ark server, the same
	// collapse submarine applies to its own sole counterparty key.
	tree, err := vhtlc.Build(vhtlc.Options{
		PreimageHash: hash,
		Sender:       resp.ServerPubkey,
		Receiver:     claimPubkey,
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
		Type:           swap.TypeReverse,
		Status:         swap.StatusCreated,
		CreatedAt:      time.Now().Unix(),
		Preimage:       preimage[:],
		Request:        req,
		Response:       resp,
		ToAddress:      claimToAddress,
		FeeSatsPerByte: defaultFeeSatsPerByte,
	}
	if err := e.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// WaitAndClaim registers s with the monitor (autonomous claim on
// transaction.mempool/transaction.confirmed) and blocks until it
// reaches a terminal status, returning the claim txid alongside the
// final swap record.
func (e *Engine) WaitAndClaim(ctx context.Context, s *swap.Swap) (*swap.Swap, string, error) {
	if _, ok := s.Response.(*swap.ReverseResponse); !ok {
		return nil, "", &swaperr.ValidationError{Field: "swap", Reason: "not a reverse swap"}
	}
	if !s.HasPreimage() {
		return nil, "", &swaperr.ValidationError{Field: "swap", Reason: "preimage not available, cannot claim"}
	}

	var txid string
	if !e.monitor.HasSwap(s.ID) {
		cb := swapmonitor.Callbacks{
			Claim: func() error {
				t, err := e.claim(context.Background(), s)
				if err != nil {
					return err
				}
				txid = t
				return nil
			},
		}
		if err := e.monitor.AddSwap(ctx, s, cb); err != nil {
			return nil, "", err
		}
	}

	final, err := e.monitor.WaitForSwapCompletion(ctx, s.ID)
	if err != nil {
		return final, "", err
	}
	return final, txid, nil
}

// claim runs the VHTLC claim path (spec §4.5) for s's lockup.
func (e *Engine) claim(ctx context.Context, s *swap.Swap) (string, error) {
	req, ok := s.Request.(*swap.ReverseRequest)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a reverse swap"}
	}
	resp, ok := s.Response.(*swap.ReverseResponse)
	if !ok {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "not a reverse swap"}
	}
	if !s.HasPreimage() {
		return "", &swaperr.ValidationError{Field: "swap", Reason: "preimage not available, cannot claim"}
	}

	tree, err := vhtlc.Build(vhtlc.Options{
		PreimageHash: req.PreimageHash,
		Sender:       resp.ServerPubkey,
		Receiver:     req.ClaimPubkey,
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

	var preimage [32]byte
	copy(preimage[:], s.Preimage)

	feeRate := s.FeeSatsPerByte
	if feeRate <= 0 {
		feeRate = defaultFeeSatsPerByte
	}

	job := &vhtlctx.ClaimJob{
		SwapID:       s.ID,
		Wallet:       e.wallet,
		Tree:         tree,
		Preimage:     preimage,
		ReceiverKey:  req.ClaimPubkey,
		DestAddress:  s.ToAddress,
		FeeSatsVByte: feeRate,
	}
	return job.Execute(ctx, resp.LockupAddress, dustSat)
}

// GetPendingReverseSwaps returns every non-terminal reverse swap.
func (e *Engine) GetPendingReverseSwaps(ctx context.Context) ([]*swap.Swap, error) {
	pending, err := e.repo.GetPending(ctx)
	if err != nil {
		return nil, err
	}
	return filterReverse(pending), nil
}

// GetSwapHistory returns every reverse swap that has reached a
// terminal status.
func (e *Engine) GetSwapHistory(ctx context.Context) ([]*swap.Swap, error) {
	all, err := e.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*swap.Swap
	for _, s := range filterReverse(all) {
		if swap.IsTerminal(s.Status) {
			out = append(out, s)
		}
	}
	return out, nil
}

func filterReverse(in []*swap.Swap) []*swap.Swap {
	out := make([]*swap.Swap, 0, len(in))
	for _, s := range in {
		if s.Type == swap.TypeReverse {
			out = append(out, s)
		}
	}
	return out
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
