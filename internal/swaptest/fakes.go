// Package swaptest provides minimal in-memory collaborator fakes for
// exercising the engines, monitor and transaction builder without a
// real wallet, Ark server or persistence backend. Grounded on
// htlcswitch/mock.go's style of stubbing out a switch's collaborators
// with the smallest struct that satisfies the interface.
package swaptest

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/boltz-swap-go/swap"
)

// Wallet is an in-memory swap.Wallet: every NewPubkey call returns
// NextPubkey, VTXOs and signatures are pre-seeded by the test, and
// every Ark submission is recorded for assertions.
type Wallet struct {
	mu sync.Mutex

	NextPubkey [32]byte
	Vtxos      map[string][]swap.Vtxo
	SignFunc   func(pubkey [32]byte, txHex string, inputIndex int, leafScript []byte) ([]byte, error)

	Submitted  []string
	Cosigned   []string
	Broadcast  []string
	BroadcastTxid string

	SendErr    error
	VtxosErr   error

	// CosignFailTimes makes CosignArkTransaction fail this many times
	// before succeeding, letting tests drive RefundJob.ExecuteWithEscalation
	// through its full ladder.
	CosignFailTimes int
}

var _ swap.Wallet = (*Wallet)(nil)

func NewWallet() *Wallet {
	return &Wallet{
		Vtxos:         make(map[string][]swap.Vtxo),
		BroadcastTxid: "deadbeef",
	}
}

func (w *Wallet) NewPubkey(ctx context.Context) ([32]byte, error) {
	return w.NextPubkey, nil
}

func (w *Wallet) VtxosAt(ctx context.Context, addr string) ([]swap.Vtxo, error) {
	if w.VtxosErr != nil {
		return nil, w.VtxosErr
	}
	return w.Vtxos[addr], nil
}

func (w *Wallet) SendToArkAddress(ctx context.Context, addr string, amountSat int64) (string, error) {
	if w.SendErr != nil {
		return "", w.SendErr
	}
	return "send-txid", nil
}

func (w *Wallet) SignTaprootScriptSpend(ctx context.Context, pubkey [32]byte,
	txHex string, inputIndex int, leafScript []byte) ([]byte, error) {

	if w.SignFunc != nil {
		return w.SignFunc(pubkey, txHex, inputIndex, leafScript)
	}
	return []byte(fmt.Sprintf("sig-%d", inputIndex)), nil
}

func (w *Wallet) SubmitArkTransaction(ctx context.Context, psbtBase64 string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Submitted = append(w.Submitted, psbtBase64)
	return psbtBase64, nil
}

func (w *Wallet) CosignArkTransaction(ctx context.Context, psbtBase64 string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.CosignFailTimes > 0 {
		w.CosignFailTimes--
		return "", fmt.Errorf("server declined to cosign")
	}
	w.Cosigned = append(w.Cosigned, psbtBase64)
	return psbtBase64, nil
}

func (w *Wallet) BroadcastArkTransaction(ctx context.Context, psbtBase64 string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Broadcast = append(w.Broadcast, psbtBase64)
	return w.BroadcastTxid, nil
}

// ArkInfo is an in-memory swap.ArkInfoProvider with test-friendly
// defaults.
type ArkInfo struct {
	Dust     int64
	HRP      string
	Server   [32]byte
	ExitDelay uint32
}

var _ swap.ArkInfoProvider = (*ArkInfo)(nil)

func NewArkInfo() *ArkInfo {
	return &ArkInfo{Dust: 330, HRP: "tark", ExitDelay: 4032}
}

func (a *ArkInfo) DustSat(ctx context.Context) (int64, error)  { return a.Dust, nil }
func (a *ArkInfo) NetworkHRP(ctx context.Context) (string, error) { return a.HRP, nil }
func (a *ArkInfo) ServerPubkey(ctx context.Context) ([32]byte, error) { return a.Server, nil }
func (a *ArkInfo) UnilateralExitDelay(ctx context.Context) (uint32, error) {
	return a.ExitDelay, nil
}

// Store is an in-memory swap.KeyValueStore: a single mutex-guarded
// map, mirroring the smallest fake the teacher writes for channeldb
// collaborators in htlcswitch/mock.go.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ swap.KeyValueStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// ChainClaimHelper is an in-memory swap.ChainClaimHelper.
type ChainClaimHelper struct {
	Txid string
	Err  error
}

var _ swap.ChainClaimHelper = (*ChainClaimHelper)(nil)

func (c *ChainClaimHelper) ClaimBtc(ctx context.Context, swapID string, witness [][]byte) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	if c.Txid == "" {
		return "btc-claim-txid", nil
	}
	return c.Txid, nil
}
