package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/arkade-os/boltz-swap-go/internal/swaptest"
	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swapconfig"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/swapmonitor"
	"github.com/arkade-os/boltz-swap-go/swaprepo"
	"github.com/arkade-os/boltz-swap-go/swapprovider"
	"github.com/arkade-os/boltz-swap-go/vhtlc"
)

func xOnlyPubkey(t *testing.T) [32]byte {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(priv.PubKey()))
	return out
}

func testTimeouts() swap.Timeouts {
	return swap.Timeouts{
		RefundLocktime:                       100,
		UnilateralClaimDelay:                 200,
		UnilateralRefundDelay:                300,
		UnilateralRefundWithoutReceiverDelay: 400,
	}
}

func wireLeaves(l *vhtlc.Leaves) map[string]string {
	return map[string]string{
		"claimLeaf":                           hex.EncodeToString(l.Claim),
		"refundLeaf":                          hex.EncodeToString(l.Refund),
		"refundWithoutReceiverLeaf":           hex.EncodeToString(l.RefundWithoutReceiver),
		"unilateralClaimLeaf":                 hex.EncodeToString(l.UnilateralClaim),
		"unilateralRefundLeaf":                hex.EncodeToString(l.UnilateralRefund),
		"unilateralRefundWithoutReceiverLeaf": hex.EncodeToString(l.UnilateralRefundWithoutReceiver),
	}
}

func wireTimeoutsMap(to swap.Timeouts) map[string]interface{} {
	return map[string]interface{}{
		"refundLocktime":                       to.RefundLocktime,
		"unilateralClaimDelay":                 to.UnilateralClaimDelay,
		"unilateralRefundDelay":                to.UnilateralRefundDelay,
		"unilateralRefundWithoutReceiverDelay": to.UnilateralRefundWithoutReceiverDelay,
	}
}

// chainFixture builds a server answering POST /v2/swap/chain with a
// lockup and claim VHTLC matching the role-symmetric rule
// buildLegTrees applies: lockup sender is the request's refund
// pubkey, claim receiver is the request's claim pubkey, the server
// pubkey plays receiver/sender/cosigner on each respective leg. Either
// address can be deliberately broken for the verification-failure
// tests.
func chainFixture(t *testing.T, serverPubkey [32]byte, badLockupAddress, badClaimAddress bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/swap/chain", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"minimal": 1000, "maximal": 1000000})
			return
		}
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		hashHex, _ := body["preimageHash"].(string)
		rawHash, err := hex.DecodeString(hashHex)
		require.NoError(t, err)
		var hash [32]byte
		copy(hash[:], rawHash)

		claimHex, _ := body["claimPublicKey"].(string)
		rawClaim, err := hex.DecodeString(claimHex)
		require.NoError(t, err)
		var claimPubkey [32]byte
		copy(claimPubkey[:], rawClaim)

		refundHex, _ := body["refundPublicKey"].(string)
		rawRefund, err := hex.DecodeString(refundHex)
		require.NoError(t, err)
		var refundPubkey [32]byte
		copy(refundPubkey[:], rawRefund)

		lockupTree, err := vhtlc.Build(vhtlc.Options{
			PreimageHash: hash, Sender: refundPubkey, Receiver: serverPubkey,
			Server: serverPubkey, Timeouts: testTimeouts(),
		})
		require.NoError(t, err)
		claimTree, err := vhtlc.Build(vhtlc.Options{
			PreimageHash: hash, Sender: serverPubkey, Receiver: claimPubkey,
			Server: serverPubkey, Timeouts: testTimeouts(),
		})
		require.NoError(t, err)

		lockupAddr, err := lockupTree.Address("tark")
		require.NoError(t, err)
		claimAddr, err := claimTree.Address("tb")
		require.NoError(t, err)
		if badLockupAddress {
			lockupAddr = "tark1qnotarealmatchingaddress"
		}
		if badClaimAddress {
			claimAddr = "tb1qnotarealmatchingaddress"
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                        "chain-swap-1",
			"lockupAddress":             lockupAddr,
			"claimAddress":              claimAddr,
			"expectedAmount":            100000,
			"serverPublicKey":           hex.EncodeToString(serverPubkey[:]),
			"lockupTimeoutBlockHeights": wireTimeoutsMap(testTimeouts()),
			"claimTimeoutBlockHeights":  wireTimeoutsMap(testTimeouts()),
			"lockupSwapTree":            wireLeaves(lockupTree.Leaves),
			"claimSwapTree":             wireLeaves(claimTree.Leaves),
		})
	})
	return httptest.NewServer(mux)
}

func newChainEngine(t *testing.T, srvURL string, wallet *swaptest.Wallet, claimHelper swap.ChainClaimHelper) (*Engine, *swaprepo.Repository, *swapmonitor.Monitor) {
	t.Helper()
	repo := swaprepo.New(swaptest.NewStore())
	cfg := swapconfig.Default(swapconfig.Regtest)
	cfg.APIURL = srvURL
	provider := swapprovider.NewFromConfig(cfg)
	monitor := swapmonitor.New(cfg, provider, repo)
	return New(cfg, provider, repo, monitor, wallet, swaptest.NewArkInfo(), claimHelper), repo, monitor
}

func TestCreateChainSwapArkToBtcPersistsEphemeralKeyAsRefundPubkey(t *testing.T) {
	serverPubkey := xOnlyPubkey(t)
	srv := chainFixture(t, serverPubkey, false, false)
	defer srv.Close()

	wallet := swaptest.NewWallet()
	refundPubkey := xOnlyPubkey(t)
	e, repo, _ := newChainEngine(t, srv.URL, wallet, &swaptest.ChainClaimHelper{})

	// The fake wallet hands back the same pubkey for every NewPubkey
	// call, so both claimPubkey and refundPubkey end up equal to
	// refundPubkey here; that's enough to confirm EphemeralKey picks
	// the refund key for arkToBtc.
	wallet.NextPubkey = refundPubkey
	s, err := e.ArkToBtc(context.Background(), "tb1qbtcdest", 100000, 0)
	require.NoError(t, err)
	require.Equal(t, "chain-swap-1", s.ID)
	require.Equal(t, swap.TypeChain, s.Type)
	require.Equal(t, swap.DirectionArkToBtc, s.Direction)
	require.True(t, s.HasPreimage())
	require.Equal(t, refundPubkey[:], s.EphemeralKey)

	req, ok := s.Request.(*swap.ChainRequest)
	require.True(t, ok)
	require.EqualValues(t, 100000, req.SenderLockAmountSat)
	require.Equal(t, "tb1qbtcdest", req.BtcAddress)

	stored, err := repo.GetByID(context.Background(), "chain-swap-1")
	require.NoError(t, err)
	require.Equal(t, swap.StatusCreated, stored.Status)
}

func TestCreateChainSwapRejectsBothAmountsSet(t *testing.T) {
	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	_, err := e.CreateChainSwap(context.Background(), swap.DirectionArkToBtc, 100, 200, "tb1qdest")
	require.Error(t, err)
	_, ok := err.(*swaperr.ValidationError)
	require.True(t, ok, "expected *swaperr.ValidationError, got %T", err)
}

func TestCreateChainSwapRejectsNeitherAmountSet(t *testing.T) {
	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	_, err := e.CreateChainSwap(context.Background(), swap.DirectionArkToBtc, 0, 0, "tb1qdest")
	require.Error(t, err)
	_, ok := err.(*swaperr.ValidationError)
	require.True(t, ok, "expected *swaperr.ValidationError, got %T", err)
}

func TestCreateChainSwapRejectsAmountBelowMinimum(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/swap/chain", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"minimal": 100001, "maximal": 1000000})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, srv.URL, wallet, &swaptest.ChainClaimHelper{})

	_, err := e.ArkToBtc(context.Background(), "tb1qbtcdest", 100000, 0)
	require.Error(t, err)
	var valErr *swaperr.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.NotNil(t, valErr.Limits)
	require.EqualValues(t, 100001, valErr.Limits.MinSat)
}

func TestCreateChainSwapArkToBtcRequiresBtcAddress(t *testing.T) {
	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	_, err := e.CreateChainSwap(context.Background(), swap.DirectionArkToBtc, 100000, 0, "")
	require.Error(t, err)
	_, ok := err.(*swaperr.ValidationError)
	require.True(t, ok, "expected *swaperr.ValidationError, got %T", err)
}

func buildChainSwap(t *testing.T, direction swap.Direction, claimPubkey, refundPubkey, serverPubkey [32]byte, badLockup, badClaim bool) *swap.Swap {
	t.Helper()
	preimage := make([]byte, 32)
	for i := range preimage {
		preimage[i] = byte(i + 7)
	}
	hash := sha256.Sum256(preimage)

	lockupTree, err := vhtlc.Build(vhtlc.Options{
		PreimageHash: hash, Sender: refundPubkey, Receiver: serverPubkey,
		Server: serverPubkey, Timeouts: testTimeouts(),
	})
	require.NoError(t, err)
	claimTree, err := vhtlc.Build(vhtlc.Options{
		PreimageHash: hash, Sender: serverPubkey, Receiver: claimPubkey,
		Server: serverPubkey, Timeouts: testTimeouts(),
	})
	require.NoError(t, err)

	var lockupHRP, claimHRP string
	if direction == swap.DirectionBtcToArk {
		lockupHRP, claimHRP = "bcrt", "tark"
	} else {
		lockupHRP, claimHRP = "tark", "bcrt"
	}
	lockupAddr, err := lockupTree.Address(lockupHRP)
	require.NoError(t, err)
	claimAddr, err := claimTree.Address(claimHRP)
	require.NoError(t, err)
	if badLockup {
		lockupAddr = "wrongaddr"
	}
	if badClaim {
		claimAddr = "wrongaddr"
	}

	return &swap.Swap{
		ID:        "chain-swap-2",
		Type:      swap.TypeChain,
		Status:    swap.StatusCreated,
		Preimage:  preimage,
		Direction: direction,
		Request: &swap.ChainRequest{
			Direction:    direction,
			PreimageHash: hash,
			ClaimPubkey:  claimPubkey,
			RefundPubkey: refundPubkey,
		},
		Response: &swap.ChainResponse{
			LockupAddress:     lockupAddr,
			ClaimAddress:      claimAddr,
			ExpectedAmountSat: 100000,
			ServerPubkey:      serverPubkey,
			LockupTimeouts:    testTimeouts(),
			ClaimTimeouts:     testTimeouts(),
		},
		FeeSatsPerByte: 1,
	}
}

func TestVerifyChainSwapAcceptsMatchingAddresses(t *testing.T) {
	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)
	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	s := buildChainSwap(t, swap.DirectionArkToBtc, claimPubkey, refundPubkey, serverPubkey, false, false)
	require.NoError(t, e.VerifyChainSwap(s))

	s2 := buildChainSwap(t, swap.DirectionBtcToArk, claimPubkey, refundPubkey, serverPubkey, false, false)
	require.NoError(t, e.VerifyChainSwap(s2))
}

func TestVerifyChainSwapRejectsBadLockupAddress(t *testing.T) {
	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)
	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	s := buildChainSwap(t, swap.DirectionArkToBtc, claimPubkey, refundPubkey, serverPubkey, true, false)
	err := e.VerifyChainSwap(s)
	require.Error(t, err)
	secErr, ok := err.(*swaperr.SecurityError)
	require.True(t, ok, "expected *swaperr.SecurityError, got %T", err)
	require.Equal(t, "Boltz is trying to scam us (invalid address)", secErr.Message)
}

func TestVerifyChainSwapRejectsBadClaimAddress(t *testing.T) {
	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)
	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	s := buildChainSwap(t, swap.DirectionArkToBtc, claimPubkey, refundPubkey, serverPubkey, false, true)
	err := e.VerifyChainSwap(s)
	require.Error(t, err)
	_, ok := err.(*swaperr.SecurityError)
	require.True(t, ok, "expected *swaperr.SecurityError, got %T", err)
}

// chainMonitorServer is the same small WS+poll harness submarine and
// reverse's tests build, duplicated here for the same reason.
type chainMonitorServer struct {
	server *httptest.Server

	mu     sync.Mutex
	conn   *websocket.Conn
	connCh chan struct{}
	status string
}

func newChainMonitorServer(t *testing.T, swapID string) *chainMonitorServer {
	s := &chainMonitorServer{connCh: make(chan struct{}, 1), status: "swap.created"}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		select {
		case s.connCh <- struct{}{}:
		default:
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	mux.HandleFunc("/v2/swap/"+swapID, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.status
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": swapID, "status": status})
	})
	s.server = httptest.NewServer(mux)
	return s
}

func (s *chainMonitorServer) waitConnected(t *testing.T) {
	select {
	case <-s.connCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for websocket connection")
	}
}

func (s *chainMonitorServer) push(t *testing.T, swapID, status string) {
	s.mu.Lock()
	conn := s.conn
	s.status = status
	s.mu.Unlock()
	require.NotNil(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"event": "update",
		"args": []interface{}{
			map[string]interface{}{"id": swapID, "status": status},
		},
	}))
}

func TestWaitAndClaimArkRunsClaimJobOnServerMempool(t *testing.T) {
	const swapID = "chain-swap-3"
	wsSrv := newChainMonitorServer(t, swapID)
	defer wsSrv.server.Close()

	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)

	s := buildChainSwap(t, swap.DirectionBtcToArk, claimPubkey, refundPubkey, serverPubkey, false, false)
	s.ID = swapID

	cfg := swapconfig.Default(swapconfig.Regtest)
	cfg.APIURL = wsSrv.server.URL
	cfg.PollInterval = 50 * time.Millisecond
	cfg.ReconnectDelay = 10 * time.Millisecond
	provider := swapprovider.NewFromConfig(cfg)
	repo := swaprepo.New(swaptest.NewStore())
	monitor := swapmonitor.New(cfg, provider, repo)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	wallet := swaptest.NewWallet()
	wallet.NextPubkey = claimPubkey
	claimAddr := s.Response.(*swap.ChainResponse).ClaimAddress
	wallet.Vtxos[claimAddr] = []swap.Vtxo{{Txid: "cc", VOut: 0, AmountSat: 95000}}
	wallet.BroadcastTxid = "claim-txid"
	e := New(cfg, provider, repo, monitor, wallet, swaptest.NewArkInfo(), &swaptest.ChainClaimHelper{})
	require.NoError(t, repo.Save(context.Background(), s))

	done := make(chan struct{})
	var final *swap.Swap
	var waitErr error
	go func() {
		final, waitErr = e.WaitAndClaimArk(context.Background(), s)
		close(done)
	}()

	wsSrv.waitConnected(t)
	wsSrv.push(t, swapID, "transaction.server.mempool")
	wsSrv.push(t, swapID, "transaction.claimed")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAndClaimArk did not return")
	}
	require.NoError(t, waitErr)
	require.Equal(t, swap.StatusTransactionClaimed, final.Status)
	require.Eventually(t, func() bool {
		return len(wallet.Submitted) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWaitAndClaimBtcDelegatesToClaimHelper(t *testing.T) {
	const swapID = "chain-swap-4"
	wsSrv := newChainMonitorServer(t, swapID)
	defer wsSrv.server.Close()

	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)

	s := buildChainSwap(t, swap.DirectionArkToBtc, claimPubkey, refundPubkey, serverPubkey, false, false)
	s.ID = swapID

	cfg := swapconfig.Default(swapconfig.Regtest)
	cfg.APIURL = wsSrv.server.URL
	cfg.PollInterval = 50 * time.Millisecond
	cfg.ReconnectDelay = 10 * time.Millisecond
	provider := swapprovider.NewFromConfig(cfg)
	repo := swaprepo.New(swaptest.NewStore())
	monitor := swapmonitor.New(cfg, provider, repo)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	wallet := swaptest.NewWallet()
	claimHelper := &swaptest.ChainClaimHelper{Txid: "btc-claim-txid"}
	e := New(cfg, provider, repo, monitor, wallet, swaptest.NewArkInfo(), claimHelper)
	require.NoError(t, repo.Save(context.Background(), s))

	done := make(chan struct{})
	var final *swap.Swap
	var waitErr error
	go func() {
		final, waitErr = e.WaitAndClaimBtc(context.Background(), s)
		close(done)
	}()

	wsSrv.waitConnected(t)
	wsSrv.push(t, swapID, "transaction.server.mempool")
	wsSrv.push(t, swapID, "transaction.claimed")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAndClaimBtc did not return")
	}
	require.NoError(t, waitErr)
	require.Equal(t, swap.StatusTransactionClaimed, final.Status)
}

func TestRefundArkBroadcastsCooperativeRefund(t *testing.T) {
	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)
	s := buildChainSwap(t, swap.DirectionArkToBtc, claimPubkey, refundPubkey, serverPubkey, false, false)
	lockupAddr := s.Response.(*swap.ChainResponse).LockupAddress
	s.ToAddress = "tark1qrefunddest"

	wallet := swaptest.NewWallet()
	wallet.Vtxos[lockupAddr] = []swap.Vtxo{{Txid: "dd", VOut: 0, AmountSat: 100000}}
	wallet.BroadcastTxid = "refund-txid"

	e, repo, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})
	require.NoError(t, repo.Save(context.Background(), s))

	txid, err := e.RefundArk(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, "refund-txid", txid)
	require.Len(t, wallet.Submitted, 1)
	require.Len(t, wallet.Cosigned, 1)
	require.Len(t, wallet.Broadcast, 1)

	stored, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, swap.StatusTransactionRefunded, stored.Status)
}

func TestRefundArkEscalatesWhenServerWontCosign(t *testing.T) {
	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)
	s := buildChainSwap(t, swap.DirectionArkToBtc, claimPubkey, refundPubkey, serverPubkey, false, false)
	lockupAddr := s.Response.(*swap.ChainResponse).LockupAddress
	s.ToAddress = "tark1qrefunddest"

	wallet := swaptest.NewWallet()
	wallet.Vtxos[lockupAddr] = []swap.Vtxo{{Txid: "ee", VOut: 0, AmountSat: 100000}}
	wallet.BroadcastTxid = "refund-txid-escalated"
	wallet.CosignFailTimes = 2

	e, repo, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})
	require.NoError(t, repo.Save(context.Background(), s))

	txid, err := e.RefundArk(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, "refund-txid-escalated", txid)
	require.Len(t, wallet.Broadcast, 1)

	stored, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, swap.StatusTransactionRefunded, stored.Status)
}

func TestRefundArkRejectsBtcToArkDirection(t *testing.T) {
	claimPubkey, refundPubkey, serverPubkey := xOnlyPubkey(t), xOnlyPubkey(t), xOnlyPubkey(t)
	s := buildChainSwap(t, swap.DirectionBtcToArk, claimPubkey, refundPubkey, serverPubkey, false, false)

	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, "http://unused.invalid", wallet, &swaptest.ChainClaimHelper{})

	_, err := e.RefundArk(context.Background(), s)
	require.Error(t, err)
	_, ok := err.(*swaperr.ValidationError)
	require.True(t, ok, "expected *swaperr.ValidationError, got %T", err)
}

func TestQuoteSwapFetchesAndAccepts(t *testing.T) {
	var gotAmount int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/swap/chain/chain-swap-5/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"amount": 92000})
			return
		}
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		amt, _ := body["amount"].(float64)
		gotAmount = int64(amt)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wallet := swaptest.NewWallet()
	e, _, _ := newChainEngine(t, srv.URL, wallet, &swaptest.ChainClaimHelper{})

	amount, err := e.QuoteSwap(context.Background(), &swap.Swap{ID: "chain-swap-5"})
	require.NoError(t, err)
	require.EqualValues(t, 92000, amount)
	require.EqualValues(t, 92000, gotAmount)
}
