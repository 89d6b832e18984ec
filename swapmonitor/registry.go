package swapmonitor

import (
	"sync"

	"github.com/arkade-os/boltz-swap-go/swap"
)

// Callbacks are the autonomous action closures the engine registers
// for one swap at AddSwap time. Which concrete leg a claim/refund
// resolves to (Ark or BTC, submarine or chain) is baked into these
// closures by the caller -- the monitor itself only ever knows
// "claim" or "refund" (spec §4.4 step 4), matching swap.ActionKind's
// two-value model.
type Callbacks struct {
	Claim  func() error
	Refund func() error
}

// entry is one swap's registry slot: the durable record, its
// registered action callbacks, the per-swap action-in-flight gate and
// its update subscribers. Grounded on htlcswitch.Switch's linkIndex
// entries, generalized from a channel link to an arbitrary swap.
type entry struct {
	swap      *swap.Swap
	callbacks Callbacks

	mu         sync.Mutex // guards processing and subscribers
	processing bool
	subscribers []func(StatusUpdate)
	waiters     []chan waitResult
}

// registry is the swapId -> entry map, guarded by a single RWMutex the
// way htlcswitch.Switch guards linkIndex with pendingMutex: readers
// (getStats, hasSwap) take RLock, writers (addSwap, removeSwap) take
// Lock.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*entry)}
}

func (r *registry) add(s *swap.Swap, cb Callbacks) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry{swap: s, callbacks: cb}
	r.entries[s.ID] = e
	return e
}

func (r *registry) get(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *registry) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// ids returns every currently registered swap id, used to subscribe in
// one burst on (re)connect (spec §4.4 "Open handler").
func (r *registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// Stats summarizes the registry's current contents for getStats().
type Stats struct {
	Total   int
	Pending int
}

func (r *registry) stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := Stats{Total: len(r.entries)}
	for _, e := range r.entries {
		if !swap.IsTerminal(e.swap.Status) {
			stats.Pending++
		}
	}
	return stats
}

// waitResult is delivered to everyone awaiting a swap's completion
// (spec §4.4 "waitForSwapCompletion").
type waitResult struct {
	swap *swap.Swap
	err  error
}

// addSubscriber registers cb against e and returns an unsubscribe
// function.
func (e *entry) addSubscriber(cb func(StatusUpdate)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, cb)
	idx := len(e.subscribers) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.subscribers) {
			e.subscribers[idx] = nil
		}
	}
}

func (e *entry) notify(u StatusUpdate) {
	e.mu.Lock()
	subs := make([]func(StatusUpdate), len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.Unlock()

	for _, cb := range subs {
		if cb != nil {
			cb(u)
		}
	}
}

func (e *entry) addWaiter() chan waitResult {
	ch := make(chan waitResult, 1)
	e.mu.Lock()
	e.waiters = append(e.waiters, ch)
	e.mu.Unlock()
	return ch
}

func (e *entry) resolveWaiters(result waitResult) {
	e.mu.Lock()
	waiters := e.waiters
	e.waiters = nil
	e.mu.Unlock()

	for _, ch := range waiters {
		ch <- result
		close(ch)
	}
}

// tryBeginProcessing acquires the per-swap action gate. Returns false
// if an action is already in flight, matching spec §4.4's "repeated
// autonomous triggers for the same swap while its action is in flight
// are no-ops".
func (e *entry) tryBeginProcessing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.processing {
		return false
	}
	e.processing = true
	return true
}

func (e *entry) endProcessing() {
	e.mu.Lock()
	e.processing = false
	e.mu.Unlock()
}

func (e *entry) isProcessing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processing
}
