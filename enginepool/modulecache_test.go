package enginepool

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

// emptyWasmModule is the minimal valid Wasm binary: just the magic number
// and version header, no sections. wazero compiles it successfully.
var emptyWasmModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func codeCID(t *testing.T, b []byte) cid.Cid {
	t.Helper()
	sum, err := mh.Sum(b, mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(0x55, sum)
}

func TestModuleCacheCompilesOnce(t *testing.T) {
	ctx := context.Background()
	mc, err := NewModuleCache(ctx, 4)
	require.NoError(t, err)
	defer mc.Close(ctx)

	id := codeCID(t, emptyWasmModule)
	m1, err := mc.GetOrCompile(ctx, id, emptyWasmModule)
	require.NoError(t, err)

	m2, err := mc.GetOrCompile(ctx, id, emptyWasmModule)
	require.NoError(t, err)
	require.Same(t, m1, m2)
}

func TestModuleCacheEvict(t *testing.T) {
	ctx := context.Background()
	mc, err := NewModuleCache(ctx, 4)
	require.NoError(t, err)
	defer mc.Close(ctx)

	id := codeCID(t, emptyWasmModule)
	_, err = mc.GetOrCompile(ctx, id, emptyWasmModule)
	require.NoError(t, err)

	mc.Evict(id)
	_, ok := mc.hot.Get(id.KeyString())
	require.False(t, ok)
}
