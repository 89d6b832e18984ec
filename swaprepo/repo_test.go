package swaprepo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkade-os/boltz-swap-go/internal/swaptest"
	"github.com/arkade-os/boltz-swap-go/swap"
)

func newSwap(id string, typ swap.Type, status swap.Status, createdAt int64) *swap.Swap {
	return &swap.Swap{
		ID:        id,
		Type:      typ,
		Status:    status,
		CreatedAt: createdAt,
		Request:   &swap.SubmarineRequest{Invoice: "lnbc1..."},
	}
}

func TestSaveAndGetByID(t *testing.T) {
	store := swaptest.NewStore()
	repo := New(store)
	ctx := context.Background()

	s := newSwap("swap-1", swap.TypeSubmarine, swap.StatusCreated, 1)
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.GetByID(ctx, "swap-1")
	require.NoError(t, err)
	require.Equal(t, "swap-1", got.ID)
	require.Equal(t, swap.StatusCreated, got.Status)
}

func TestSaveUpsertsByID(t *testing.T) {
	store := swaptest.NewStore()
	repo := New(store)
	ctx := context.Background()

	s := newSwap("swap-1", swap.TypeSubmarine, swap.StatusCreated, 1)
	require.NoError(t, repo.Save(ctx, s))

	s.Status = swap.StatusInvoiceSettled
	require.NoError(t, repo.Save(ctx, s))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, swap.StatusInvoiceSettled, all[0].Status)
}

func TestGetAllUnionsAllThreeCollections(t *testing.T) {
	store := swaptest.NewStore()
	repo := New(store)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSwap("s1", swap.TypeSubmarine, swap.StatusCreated, 1)))
	require.NoError(t, repo.Save(ctx, newSwap("r1", swap.TypeReverse, swap.StatusCreated, 2)))
	require.NoError(t, repo.Save(ctx, newSwap("c1", swap.TypeChain, swap.StatusCreated, 3)))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGetPendingFiltersTerminal(t *testing.T) {
	store := swaptest.NewStore()
	repo := New(store)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSwap("s1", swap.TypeSubmarine, swap.StatusCreated, 1)))
	require.NoError(t, repo.Save(ctx, newSwap("s2", swap.TypeSubmarine, swap.StatusInvoiceSettled, 2)))

	pending, err := repo.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "s1", pending[0].ID)
}

func TestGetByIDReturnsErrorForUnknown(t *testing.T) {
	store := swaptest.NewStore()
	repo := New(store)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
}

func TestMigrateMovesLegacyRecordsAndSetsFlag(t *testing.T) {
	store := swaptest.NewStore()
	ctx := context.Background()

	legacy := []record{{ID: "legacy-1", Type: string(swap.TypeSubmarine), Status: string(swap.StatusCreated), CreatedAt: 5}}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "collection:submarineSwaps", raw))

	repo := New(store)
	require.NoError(t, repo.Migrate(ctx))

	got, err := repo.GetByID(ctx, "legacy-1")
	require.NoError(t, err)
	require.Equal(t, "legacy-1", got.ID)

	flag, ok, err := store.Get(ctx, migrationFlagKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, migrationDone, string(flag))
}

func TestMigrateIsNoOpOnceFlagSet(t *testing.T) {
	store := swaptest.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, migrationFlagKey, []byte(migrationDone)))
	require.NoError(t, store.Set(ctx, "collection:submarineSwaps", []byte(`[{"id":"ignored"}]`)))

	repo := New(store)
	require.NoError(t, repo.Migrate(ctx))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
