package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-fvm-core/blockstore"
	"github.com/filecoin-project/go-fvm-core/types"
)

func TestEstimateEncodedLenGrowsWithParams(t *testing.T) {
	base := estimateEncodedLen(types.Message{})
	withParams := estimateEncodedLen(types.Message{Params: make([]byte, 50)})
	require.Equal(t, base+50, withParams)
}

func TestOpenBlockstoreDefaultsToMemStore(t *testing.T) {
	store, closeFn, err := openBlockstore("")
	require.NoError(t, err)
	defer closeFn()

	c := testCID(t, "mem-store-probe")
	require.NoError(t, store.PutKeyed(context.Background(), c, []byte("x")))
	got, err := store.Get(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), got)
}

func TestOpenBlockstoreOpensLevelDBWhenDatadirSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	store, closeFn, err := openBlockstore(dir)
	require.NoError(t, err)
	defer closeFn()

	c := testCID(t, "leveldb-probe")
	require.NoError(t, store.PutKeyed(context.Background(), c, []byte("y")))
	got, err := store.Get(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, []byte("y"), got)

	var _ blockstore.Blockstore = store
}
