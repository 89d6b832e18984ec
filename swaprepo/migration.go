package swaprepo

import (
	"context"
	"encoding/json"
)

// migrationFlagKey mirrors spec §4.3/§6.2's literal flag key. Once its
// value is the literal "done", Migrate is a no-op.
const migrationFlagKey = "migration-from-storage-adapter-swaps"

const migrationDone = "done"

// legacyCollectionPrefix is the key prefix a pre-migration storage
// adapter used for its three swap collections (spec §4.3: "legacy
// collection:* keys").
const legacyCollectionPrefix = "collection:"

// Migrate performs the one-time migration off the legacy flat-key
// layout, generalizing channeldb/db.go's dbVersions migration list
// down to the single entry this repository needs: find every
// "collection:*" key, decode its records, upsert each into its typed
// collection, then set the flag. Idempotent on the flag; if anything
// fails partway the flag is left unset so the next call retries from
// scratch (Save's upsert semantics make re-applying harmless).
func (r *Repository) Migrate(ctx context.Context) error {
	raw, ok, err := r.store.Get(ctx, migrationFlagKey)
	if err != nil {
		return &StoreError{Op: "get", Key: migrationFlagKey, Cause: err}
	}
	if ok && string(raw) == migrationDone {
		return nil
	}

	keys, err := r.store.Keys(ctx, legacyCollectionPrefix)
	if err != nil {
		return &StoreError{Op: "keys", Key: legacyCollectionPrefix, Cause: err}
	}

	for _, key := range keys {
		legacyRaw, ok, err := r.store.Get(ctx, key)
		if err != nil {
			return &StoreError{Op: "get", Key: key, Cause: err}
		}
		if !ok || len(legacyRaw) == 0 {
			continue
		}

		var records []record
		if err := json.Unmarshal(legacyRaw, &records); err != nil {
			return &EncodingError{Cause: err}
		}

		for i := range records {
			s, err := decodeSwap(&records[i])
			if err != nil {
				return &EncodingError{Cause: err}
			}
			if err := r.Save(ctx, s); err != nil {
				return err
			}
		}
	}

	return r.store.Set(ctx, migrationFlagKey, []byte(migrationDone))
}
