package vhtlctx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkade-os/boltz-swap-go/swap"
)

func TestSelectVtxosRejectsEmptySet(t *testing.T) {
	_, _, err := SelectVtxos(nil, 330, 200)
	require.Error(t, err)
}

func TestSelectVtxosRejectsBelowDust(t *testing.T) {
	vtxos := []swap.Vtxo{{Txid: "a", AmountSat: 400}}
	_, _, err := SelectVtxos(vtxos, 330, 200)
	require.Error(t, err)
}

func TestSelectVtxosSortsDescendingAndSumsNet(t *testing.T) {
	vtxos := []swap.Vtxo{
		{Txid: "small", AmountSat: 1000},
		{Txid: "big", AmountSat: 5000},
	}
	selected, net, err := SelectVtxos(vtxos, 330, 200)
	require.NoError(t, err)
	require.Equal(t, "big", selected[0].Txid)
	require.Equal(t, "small", selected[1].Txid)
	require.Equal(t, int64(5800), net)
}

func TestSelectVtxosDefaultsDustWhenUnset(t *testing.T) {
	vtxos := []swap.Vtxo{{Txid: "a", AmountSat: 400}}
	_, net, err := SelectVtxos(vtxos, 0, 50)
	require.NoError(t, err)
	require.Equal(t, int64(350), net)
}
