// Package swapmonitor tracks every pending swap's status over a
// single shared WebSocket connection, falling back to polling when
// the socket is down, and triggers the engine-registered autonomous
// claim/refund callbacks (spec §4.4). Grounded on htlcswitch.Switch
// for the registry shape and on server.go for Start/Stop idempotence.
package swapmonitor

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swapconfig"
	"github.com/arkade-os/boltz-swap-go/swaperr"
	"github.com/arkade-os/boltz-swap-go/swaprepo"
	"github.com/arkade-os/boltz-swap-go/swapprovider"
)

// StatusUpdate is a decoded status push, whether it arrived over the
// WebSocket or a polling pass.
type StatusUpdate = swapprovider.StatusUpdate

// maxReconnectDelay caps the exponential backoff (spec §4.4: "capped
// (suggest 60 s)").
const maxReconnectDelay = 60 * time.Second

// Monitor is the single per-process swap tracker. One Monitor serves
// every engine; engines call AddSwap/RemoveSwap and register their own
// claim/refund closures per swap.
type Monitor struct {
	cfg      *swapconfig.Config
	provider *swapprovider.Client
	repo     *swaprepo.Repository

	registry *registry

	started int32
	stopped int32

	mu               sync.Mutex // guards stream/fallback/delay state below
	stream           *swapprovider.Stream
	usePollingFallback bool
	reconnectDelay   time.Duration
	pollRetryDelay   time.Duration

	// dispatchMu serializes handleUpdate and every Subscribe/Unsubscribe
	// write against m.stream: the connect loop's drain and the poll
	// loop's reconcileOnce run as separate goroutines and would
	// otherwise race on one swap's status field and on one stream's
	// concurrent writers (gorilla/websocket forbids those).
	dispatchMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Monitor. Start must be called before it tracks
// anything.
func New(cfg *swapconfig.Config, provider *swapprovider.Client, repo *swaprepo.Repository) *Monitor {
	return &Monitor{
		cfg:      cfg,
		provider: provider,
		repo:     repo,
		registry: newRegistry(),
	}
}

// Start opens the WebSocket connection and begins the reconnect/poll
// lifecycle. Calling Start twice has no additional effect, mirrored in
// shape on server.go's atomic.AddInt32(&s.started, 1) guard.
func (m *Monitor) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.mu.Lock()
	m.reconnectDelay = m.cfg.ReconnectDelay
	m.pollRetryDelay = m.cfg.PollRetryDelay
	m.mu.Unlock()

	m.wg.Add(1)
	go m.connectLoop(runCtx)

	m.wg.Add(1)
	go m.pollLoop(runCtx)

	return nil
}

// Stop closes the WebSocket, cancels the reconnect/poll goroutines and
// rejects every in-flight WaitForSwapCompletion with swaperr.ErrStopped
// (spec §5 "Cancellation"). Calling Stop twice has no additional
// effect.
func (m *Monitor) Stop() error {
	if !atomic.CompareAndSwapInt32(&m.stopped, 0, 1) {
		return nil
	}
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.stream != nil {
		_ = m.stream.Close()
	}
	m.mu.Unlock()

	for _, id := range m.registry.ids() {
		if e, ok := m.registry.get(id); ok {
			e.resolveWaiters(waitResult{err: swaperr.ErrStopped})
		}
	}

	m.wg.Wait()
	return nil
}

// AddSwap registers s for tracking with the callbacks the engine
// supplies for its autonomous claim/refund resolution. If the
// WebSocket is currently connected, s is subscribed immediately;
// otherwise it picks up the next (re)connect's subscribe burst or the
// polling fallback.
func (m *Monitor) AddSwap(ctx context.Context, s *swap.Swap, cb Callbacks) error {
	m.registry.add(s, cb)

	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream != nil {
		m.dispatchMu.Lock()
		defer m.dispatchMu.Unlock()
		return stream.Subscribe([]string{s.ID})
	}
	return nil
}

// RemoveSwap drops a swap from the registry without emitting any
// event, used after a terminal status has already been handled or
// when the caller abandons tracking.
func (m *Monitor) RemoveSwap(id string) {
	m.registry.remove(id)
}

// HasSwap reports whether id is currently tracked.
func (m *Monitor) HasSwap(id string) bool { return m.registry.has(id) }

// IsProcessing reports whether id currently has an autonomous action
// in flight.
func (m *Monitor) IsProcessing(id string) bool {
	e, ok := m.registry.get(id)
	if !ok {
		return false
	}
	return e.isProcessing()
}

// GetStats summarizes the registry.
func (m *Monitor) GetStats() Stats { return m.registry.stats() }

// SubscribeToSwapUpdates registers cb to be called on every status
// update for id and returns an unsubscribe function. No-op unsubscribe
// if id isn't tracked.
func (m *Monitor) SubscribeToSwapUpdates(id string, cb func(StatusUpdate)) func() {
	e, ok := m.registry.get(id)
	if !ok {
		return func() {}
	}
	return e.addSubscriber(cb)
}

// WaitForSwapCompletion blocks until id reaches a terminal status,
// returning the final swap record, or until ctx is cancelled or Stop
// is called.
func (m *Monitor) WaitForSwapCompletion(ctx context.Context, id string) (*swap.Swap, error) {
	e, ok := m.registry.get(id)
	if !ok {
		return nil, swaperr.ErrUnknownSwap
	}
	ch := e.addWaiter()

	select {
	case result := <-ch:
		return result.swap, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// connectLoop owns the WebSocket lifecycle: dial, subscribe-all,
// trigger a reconciliation poll, then drain updates until the
// connection drops, at which point it backs off and retries. Grounded
// on peer.go's ping-ticker-driven connection loop, generalized to a
// dial-retry loop.
func (m *Monitor) connectLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		stream, err := m.provider.Dial(ctx)
		if err != nil {
			log.Debugf("websocket dial failed: %v", err)
			m.enterPollingFallback(err)
			if !m.sleepBackoff(ctx, &m.reconnectDelay) {
				return
			}
			continue
		}

		m.mu.Lock()
		m.stream = stream
		m.usePollingFallback = false
		m.reconnectDelay = m.cfg.ReconnectDelay
		m.mu.Unlock()

		m.dispatchMu.Lock()
		if ids := m.registry.ids(); len(ids) > 0 {
			if err := stream.Subscribe(ids); err != nil {
				log.Warnf("initial subscribe failed: %v", err)
			}
		}
		m.dispatchMu.Unlock()
		m.reconcileOnce(ctx)

		m.drain(ctx, stream)

		m.mu.Lock()
		m.stream = nil
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		default:
		}

		if !m.sleepBackoff(ctx, &m.reconnectDelay) {
			return
		}
	}
}

// drain reads updates off stream until it errors or closes, applying
// each to the registry.
func (m *Monitor) drain(ctx context.Context, stream *swapprovider.Stream) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-stream.Updates():
			if !ok {
				m.enterPollingFallback(<-stream.Errs())
				return
			}
			m.handleUpdate(ctx, update)
		}
	}
}

func (m *Monitor) enterPollingFallback(cause error) {
	m.mu.Lock()
	m.usePollingFallback = true
	m.mu.Unlock()
	if m.cfg.Events.OnWebSocketDisconnected != nil {
		m.cfg.Events.OnWebSocketDisconnected(cause)
	}
}

// sleepBackoff waits *delay (doubling it afterward, capped), returning
// false if ctx was cancelled first.
func (m *Monitor) sleepBackoff(ctx context.Context, delay *time.Duration) bool {
	m.mu.Lock()
	d := *delay
	next := d * 2
	if next > maxReconnectDelay {
		next = maxReconnectDelay
	}
	*delay = next
	m.mu.Unlock()

	jitter := time.Duration(rand.Int63n(int64(d) / 4 + 1))
	select {
	case <-time.After(d + jitter):
		return true
	case <-ctx.Done():
		return false
	}
}

// pollLoop runs the polling fallback: while usePollingFallback is set,
// every PollInterval it walks the registry calling GET /v2/swap/{id}
// sequentially (spec §4.4 "Polling fallback"). A run that hits any
// failures waits out a separate, doubling pollRetryDelay before the
// next attempt instead of the full PollInterval, so a flaky provider
// is retried promptly without a ticker firing ahead of its own
// backoff.
func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	wait := m.cfg.PollInterval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		m.mu.Lock()
		active := m.usePollingFallback
		m.mu.Unlock()

		if !active {
			wait = m.cfg.PollInterval
			continue
		}

		if m.reconcileOnce(ctx) {
			wait = m.cfg.PollInterval
			m.mu.Lock()
			m.pollRetryDelay = m.cfg.PollRetryDelay
			m.mu.Unlock()
		} else {
			m.mu.Lock()
			wait = m.pollRetryDelay
			next := m.pollRetryDelay * 2
			if next > maxReconnectDelay {
				next = maxReconnectDelay
			}
			m.pollRetryDelay = next
			m.mu.Unlock()
		}
	}
}

// reconcileOnce polls every tracked swap once, used both as the
// "missed events" catch-up after (re)connect and as the ongoing
// fallback cadence. Returns false if any poll failed, so the caller
// can back off.
func (m *Monitor) reconcileOnce(ctx context.Context) bool {
	ok := true
	for _, id := range m.registry.ids() {
		status, err := m.provider.GetStatus(ctx, id)
		if err != nil {
			log.Debugf("poll failed for %s: %v", id, err)
			ok = false
			continue
		}
		m.handleUpdate(ctx, StatusUpdate{ID: id, Status: status})
	}
	return ok
}

// handleUpdate applies the spec §4.4 state machine to one update:
// dedup, persist, emit, maybe act, maybe complete.
func (m *Monitor) handleUpdate(ctx context.Context, update StatusUpdate) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	e, ok := m.registry.get(update.ID)
	if !ok {
		return
	}

	s := e.swap
	if s.Status == update.Status {
		return
	}
	oldStatus := s.Status
	s.Status = update.Status

	if m.repo != nil {
		if err := m.repo.Save(ctx, s); err != nil {
			log.Errorf("persisting swap %s: %v", s.ID, err)
		}
	}

	if m.cfg.Events.OnSwapUpdate != nil {
		m.cfg.Events.OnSwapUpdate(s.ID, string(oldStatus), string(s.Status))
	}
	e.notify(update)

	m.maybeAct(ctx, e, update)

	if swap.IsTerminal(s.Status) {
		m.registry.remove(s.ID)
		if m.cfg.Events.OnSwapCompleted != nil {
			m.cfg.Events.OnSwapCompleted(s.ID)
		}
		var completionErr error
		if isFailureStatus(s.Status) {
			completionErr = terminalError(s)
		}
		e.resolveWaiters(waitResult{swap: s, err: completionErr})

		m.mu.Lock()
		stream := m.stream
		m.mu.Unlock()
		if stream != nil {
			// Best-effort unsubscribe: the provider never pushes for
			// unsubscribed ids anyway (spec §4.2), so a failure here
			// is not fatal.
			_ = stream.Unsubscribe([]string{s.ID})
		}
	}
}

// maybeAct runs the autonomous action for update's status, if any
// applies, auto-actions are enabled, no action is already in flight
// for this swap, and the required material is present (spec §4.4 step
// 4 and "Restored-swap validation").
func (m *Monitor) maybeAct(ctx context.Context, e *entry, update StatusUpdate) {
	if !m.cfg.EnableAutoActions {
		return
	}

	kind, ok := swap.ActionForStatus(e.swap.Type, e.swap.Status)
	if !ok {
		return
	}
	if !materialAvailable(e.swap, kind) {
		return
	}

	var action func() error
	switch kind {
	case swap.ActionClaim:
		action = e.callbacks.Claim
	case swap.ActionRefund:
		action = e.callbacks.Refund
	}
	if action == nil {
		return
	}

	if !e.tryBeginProcessing() {
		return
	}

	run := func() {
		defer e.endProcessing()
		err := action()
		if m.cfg.Events.OnActionExecuted != nil {
			m.cfg.Events.OnActionExecuted(e.swap.ID, string(kind), err)
		}
		if err != nil {
			log.Errorf("autonomous %s failed for swap %s: %v", kind, e.swap.ID, err)
		}
	}
	// Waiters are resolved as soon as handleUpdate sees a terminal
	// status, so an action triggered by one (a refund) runs to
	// completion first and waiters see its outcome.
	if swap.IsTerminal(e.swap.Status) {
		run()
		return
	}
	go run()
}

// materialAvailable enforces spec §4.4's restored-swap rules: a claim
// needs a usable preimage, a submarine refund needs the original
// invoice to have been recorded.
func materialAvailable(s *swap.Swap, kind swap.ActionKind) bool {
	switch kind {
	case swap.ActionClaim:
		return s.HasPreimage()
	case swap.ActionRefund:
		if s.Type == swap.TypeSubmarine {
			return s.Invoice() != ""
		}
		return true
	default:
		return false
	}
}

func isFailureStatus(s swap.Status) bool {
	switch s {
	case swap.StatusInvoiceExpired, swap.StatusInvoiceFailedToPay,
		swap.StatusSwapExpired, swap.StatusTransactionFailed,
		swap.StatusTransactionRefunded, swap.StatusTransactionLockupFailed:
		return true
	default:
		return false
	}
}

func terminalError(s *swap.Swap) error {
	switch s.Status {
	case swap.StatusInvoiceExpired:
		return &swaperr.InvoiceExpiredError{SwapID: s.ID}
	case swap.StatusSwapExpired:
		return &swaperr.SwapExpiredError{SwapID: s.ID}
	case swap.StatusTransactionRefunded:
		return &swaperr.TransactionRefundedError{SwapID: s.ID}
	case swap.StatusTransactionFailed, swap.StatusTransactionLockupFailed,
		swap.StatusInvoiceFailedToPay:
		return &swaperr.TransactionFailedError{SwapID: s.ID, Reason: string(s.Status)}
	default:
		return nil
	}
}
