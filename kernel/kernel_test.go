package kernel

import (
	"testing"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/externs/externstest"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/filecoin-project/go-fvm-core/statetree"
	"github.com/filecoin-project/go-fvm-core/types"
)

// fakeBackend is a minimal Backend double: one fixed init actor, a single
// address-resolution table, and a recording Send.
type fakeBackend struct {
	initActorID uint64
	resolved    map[string]uint64
	codes       map[uint64]cid.Cid
	sendExit    fvmerr.ExitCode
	sendRet     []byte
	sendErr     error
	sentTo      address.Address
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		initActorID: 1,
		resolved:    make(map[string]uint64),
		codes:       make(map[uint64]cid.Cid),
	}
}

func (b *fakeBackend) Send(from, to address.Address, method uint64, params []byte, paramsCodec uint64, value abi.TokenAmount, gasSubLimit *gas.Gas, readOnly bool) (fvmerr.ExitCode, []byte, error) {
	b.sentTo = to
	return b.sendExit, b.sendRet, b.sendErr
}

func (b *fakeBackend) ResolveAddress(addr address.Address) (uint64, bool, error) {
	id, ok := b.resolved[addr.String()]
	return id, ok, nil
}

func (b *fakeBackend) GetActorCode(id uint64) (cid.Cid, bool, error) {
	c, ok := b.codes[id]
	return c, ok, nil
}

func (b *fakeBackend) LookupDelegatedAddress(id uint64) (*address.Address, error) { return nil, nil }

func (b *fakeBackend) NextActorAddress() address.Address { return address.NewID(1000) }

func (b *fakeBackend) CreateActor(id uint64, codeID cid.Cid, delegated *address.Address) error {
	b.codes[id] = codeID
	return nil
}

func (b *fakeBackend) IsInitActor(id uint64) bool { return id == b.initActorID }

const testActorID = 100

func newTestKernel(t *testing.T, readOnly bool) (*Default, *statetree.MemTree, *fakeBackend) {
	t.Helper()
	tree := statetree.NewMemTree(101)
	require.NoError(t, tree.SetActor(testActorID, types.ActorRecord{
		Balance: abi.NewTokenAmountFromUint64(1000),
	}))
	backend := newFakeBackend()
	tracker := gas.NewTracker(gas.Gas(10_000_000))
	pricelist := gas.PriceListByVersion(netconfig.Version18)
	sink := events.NewSink()
	limits := netconfig.Limits{MaxBlockSize: 1 << 20, MaxCIDLength: 100, MaxCallDepth: 1024, BlockHandleCap: 1 << 16}

	ctx := Context{
		ActorID:     testActorID,
		Method:      2,
		Caller:      200,
		Origin:      200,
		ReadOnly:    readOnly,
		NV:          netconfig.Version18,
		BurnAllowed: true,
	}
	k := New(ctx, backend, tree, tracker, pricelist, externstest.NewFake(), sink, limits, cid.Undef, false, "")
	return k, tree, backend
}

func TestBlockCreateReadStatRoundTrip(t *testing.T) {
	k, _, _ := newTestKernel(t, false)

	id, err := k.BlockCreate(blocks.CodecRaw, []byte("hello world"))
	require.NoError(t, err)

	codec, size, err := k.BlockStat(id)
	require.NoError(t, err)
	require.Equal(t, uint64(blocks.CodecRaw), codec)
	require.Equal(t, 11, size)

	buf := make([]byte, 5)
	remaining, err := k.BlockRead(id, 0, buf)
	require.NoError(t, err)
	require.Equal(t, 6, remaining) // 11 total - 0 offset - 5 copied
	require.Equal(t, "hello", string(buf))
}

func TestBlockLinkAddsToReachableSet(t *testing.T) {
	k, _, _ := newTestKernel(t, false)

	id, err := k.BlockCreate(blocks.CodecRaw, []byte("payload"))
	require.NoError(t, err)

	c, err := k.BlockLink(id, uint64(mh.BLAKE2B_MIN+31), 32)
	require.NoError(t, err)
	require.True(t, c.Defined())

	// Newly linked CID must be reachable via BlockOpen.
	k.SetBlockLoader(func(want cid.Cid) ([]byte, uint64, error) {
		if want == c {
			return []byte("payload"), blocks.CodecRaw, nil
		}
		return nil, 0, fvmerr.NewSyscallError(fvmerr.NotFound, "no such block")
	})
	_, _, _, err = k.BlockOpen(c)
	require.NoError(t, err)
}

func TestBlockOpenUnreachableFails(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	sum, err := mh.Sum([]byte("x"), mh.SHA2_256, -1)
	require.NoError(t, err)
	unknown := cid.NewCidV1(blocks.CodecRaw, sum)

	_, _, _, err = k.BlockOpen(unknown)
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.NotFound, sysErr.Num)
}

func TestReadOnlyForbidsMutatingOps(t *testing.T) {
	k, _, _ := newTestKernel(t, true)

	_, err := k.BlockCreate(blocks.CodecRaw, []byte("x"))
	requireForbidden(t, err)

	err = k.SetRoot(cid.Undef)
	requireForbidden(t, err)

	err = k.CreateActor(500, cid.Undef, nil)
	requireForbidden(t, err)

	err = k.EmitEvent([]events.Entry{{Key: "k", Value: []byte("v")}})
	requireForbidden(t, err)

	_, _, err = k.Send(address.NewID(7), 0, blocks.NoData, abi.NewTokenAmountFromUint64(1), nil)
	requireForbidden(t, err)
}

func requireForbidden(t *testing.T, err error) {
	t.Helper()
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.Forbidden, sysErr.Num)
}

func TestCreateActorRequiresInitCaller(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	err := k.CreateActor(500, cid.Undef, nil)
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.Forbidden, sysErr.Num)
}

func TestSelfDestructRequiresBurnFundsWhenBalanceNonzero(t *testing.T) {
	k, tree, _ := newTestKernel(t, false)
	err := k.SelfDestruct(false)
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalOperation, sysErr.Num)

	require.NoError(t, k.SelfDestruct(true))
	_, ok, err := tree.GetActor(testActorID)
	require.NoError(t, err)
	require.False(t, ok)

	// idempotent
	require.NoError(t, k.SelfDestruct(true))
}

func TestSelfDestructBurnForbiddenByPolicy(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	k.ctx.BurnAllowed = false
	err := k.SelfDestruct(true)
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalOperation, sysErr.Num)
}

func TestEmitEventValidatesAndStages(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	err := k.EmitEvent([]events.Entry{{Key: "status", Value: []byte("ok")}})
	require.NoError(t, err)

	err = k.EmitEvent([]events.Entry{{Key: "dup"}, {Key: "dup"}})
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalArgument, sysErr.Num)
}

func TestMessageAccessors(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	require.Equal(t, uint64(2), k.MethodNumber())
	require.Equal(t, uint64(200), k.Caller())
	require.Equal(t, uint64(200), k.Origin())
	require.Equal(t, uint64(testActorID), k.Receiver())
	require.False(t, k.ReadOnly())
	require.Equal(t, netconfig.Version18, k.NetworkVersion())
}

func TestSendDelegatesToBackend(t *testing.T) {
	k, _, backend := newTestKernel(t, false)
	backend.sendExit = fvmerr.ExitOK
	backend.sendRet = []byte("result")

	exit, retHandle, err := k.Send(address.NewID(42), 3, blocks.NoData, abi.Zero(), nil)
	require.NoError(t, err)
	require.Equal(t, fvmerr.ExitOK, exit)
	require.NotEqual(t, blocks.NoData, retHandle)

	b, err := k.Registry().Get(retHandle)
	require.NoError(t, err)
	require.Equal(t, "result", string(b.Data))
	require.Equal(t, uint64(42), mustID(t, backend.sentTo))
}

func mustID(t *testing.T, a address.Address) uint64 {
	t.Helper()
	id, err := a.ID()
	require.NoError(t, err)
	return id
}

func TestHashSha256ReturnsDigest(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	digest, err := k.Hash(HashAlgoSha256, []byte("hello"))
	require.NoError(t, err)
	require.Len(t, digest, 32)
}

func TestStoreArtifactValidatesNameRegardlessOfDebugMode(t *testing.T) {
	k, _, _ := newTestKernel(t, false)
	err := k.StoreArtifact("../escape", []byte("x"))
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalArgument, sysErr.Num)

	// Valid name, debug off: no-op success, no directory required.
	require.NoError(t, k.StoreArtifact("trace.json", []byte("x")))
}
