// Package swaprepo persists pending and historical swaps across three
// independent collections and provides the one-time migration off a
// legacy flat-key layout (spec §4.3). Grounded on channeldb/db.go: a
// thin typed layer over a generic key-value store, with its own
// migration list and its own error taxonomy (channeldb/error.go).
package swaprepo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// Collection keys, matching spec §6.2's persisted state layout.
const (
	keySubmarineSwaps = "submarineSwaps"
	keyReverseSwaps   = "reverseSwaps"
	keyChainSwaps     = "chainSwaps"
)

func collectionKey(t swap.Type) (string, error) {
	switch t {
	case swap.TypeSubmarine:
		return keySubmarineSwaps, nil
	case swap.TypeReverse:
		return keyReverseSwaps, nil
	case swap.TypeChain:
		return keyChainSwaps, nil
	default:
		return "", &UnknownSwapTypeError{Type: string(t)}
	}
}

// Repository is the durable store of swap records, backed by a
// swap.KeyValueStore. A single mutex serializes writes, matching the
// collaborator contract in spec §5 ("writes are serialised by the
// monitor's event loop") while still allowing concurrent reads at the
// store layer.
type Repository struct {
	store swap.KeyValueStore
	mu    sync.Mutex
}

// New constructs a Repository over store. Callers should invoke
// Migrate once at startup before relying on GetAll/GetPending.
func New(store swap.KeyValueStore) *Repository {
	return &Repository{store: store}
}

// Save upserts swap by id into the collection matching its Type.
func (r *Repository) Save(ctx context.Context, s *swap.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, err := collectionKey(s.Type)
	if err != nil {
		return err
	}

	records, err := r.loadCollection(ctx, key)
	if err != nil {
		return err
	}

	enc, err := encodeSwap(s)
	if err != nil {
		return &EncodingError{Cause: err}
	}

	replaced := false
	for i, existing := range records {
		if existing.ID == s.ID {
			records[i] = *enc
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, *enc)
	}

	return r.storeCollection(ctx, key, records)
}

// GetByID looks up a single swap across all three collections.
func (r *Repository) GetByID(ctx context.Context, id string) (*swap.Swap, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, swaperr.ErrUnknownSwap
}

// GetAll returns the union of all three collections.
func (r *Repository) GetAll(ctx context.Context) ([]*swap.Swap, error) {
	var out []*swap.Swap
	for _, key := range []string{keySubmarineSwaps, keyReverseSwaps, keyChainSwaps} {
		records, err := r.loadCollection(ctx, key)
		if err != nil {
			return nil, err
		}
		for i := range records {
			s, err := decodeSwap(&records[i])
			if err != nil {
				return nil, &EncodingError{Cause: err}
			}
			out = append(out, s)
		}
	}
	// Stable order by CreatedAt so repeated calls with no writes in
	// between are deterministic for callers/tests.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out, nil
}

// GetPending returns every non-terminal swap across all collections.
func (r *Repository) GetPending(ctx context.Context) ([]*swap.Swap, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*swap.Swap, 0, len(all))
	for _, s := range all {
		if !swap.IsTerminal(s.Status) {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

func (r *Repository) loadCollection(ctx context.Context, key string) ([]record, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, &StoreError{Op: "get", Key: key, Cause: err}
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &EncodingError{Cause: err}
	}
	return records, nil
}

func (r *Repository) storeCollection(ctx context.Context, key string, records []record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return &EncodingError{Cause: err}
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return &StoreError{Op: "set", Key: key, Cause: err}
	}
	return nil
}
