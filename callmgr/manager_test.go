package callmgr

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/builtin"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/externs/externstest"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/kernel"
	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/filecoin-project/go-fvm-core/statetree"
	"github.com/filecoin-project/go-fvm-core/types"
)

// fakeInvoker is an Invoker double letting Send's call-tree logic be tested
// without a compiled Wasm fixture (see invoke.go's doc comment on why no
// real Wasm toolchain runs in this environment). Each call consumes the
// next queued response.
type fakeInvoker struct {
	responses []invokeResponse
	calls     int
}

type invokeResponse struct {
	ret  []byte
	exit fvmerr.ExitCode
	err  error
}

func (f *fakeInvoker) Invoke(ctx context.Context, k kernel.Kernel, codeID cid.Cid, paramsBlock blocks.Handle) (blocks.Handle, fvmerr.ExitCode, error) {
	if f.calls >= len(f.responses) {
		return blocks.NoData, fvmerr.ExitOK, nil
	}
	resp := f.responses[f.calls]
	f.calls++
	if resp.err != nil {
		return blocks.NoData, resp.exit, resp.err
	}
	if len(resp.ret) == 0 {
		return blocks.NoData, resp.exit, nil
	}
	h, err := k.BlockCreate(blocks.CodecRaw, resp.ret)
	if err != nil {
		return blocks.NoData, resp.exit, err
	}
	return h, resp.exit, nil
}

const (
	initActorID  uint64 = 1
	senderID     uint64 = 100
	receiverID   uint64 = 200
)

var accountCode = mustCID("account-code")
var initCode = mustCID("init-code")

func mustCID(s string) cid.Cid {
	sum, err := mh.Sum([]byte(s), mh.SHA2_256, -1)
	if err != nil {
		panic(err)
	}
	return cid.NewCidV1(blocks.CodecRaw, sum)
}

func newTestManager(t *testing.T, invoker Invoker, policy netconfig.Policy) (*Manager, statetree.Tree) {
	t.Helper()
	tree := statetree.NewMemTree(1000)
	require.NoError(t, tree.SetActor(initActorID, types.ActorRecord{CodeID: initCode}))
	require.NoError(t, tree.SetActor(senderID, types.ActorRecord{
		Balance: abi.NewTokenAmountFromUint64(1_000_000),
	}))
	require.NoError(t, tree.SetActor(receiverID, types.ActorRecord{
		CodeID:  accountCode,
		Balance: abi.NewTokenAmountFromUint64(0),
	}))

	manifest := builtin.NewManifest(map[builtin.Name]cid.Cid{
		builtin.Init:    initCode,
		builtin.Account: accountCode,
	})

	cfg := Config{
		Tree:      tree,
		Tracker:   gas.NewTracker(gas.Gas(10_000_000)),
		PriceList: gas.PriceListByVersion(netconfig.Version18),
		Externs:   externstest.NewFake(),
		Manifest:  manifest,
		Policy:    policy,
		Invoker:   invoker,
	}
	return NewManager(cfg, senderID, 0), tree
}

func receiverAddr() address.Address { return address.NewID(receiverID) }

func TestSendSuccessReturnsBytesAndExitOK(t *testing.T) {
	invoker := &fakeInvoker{responses: []invokeResponse{{ret: []byte("ok"), exit: fvmerr.ExitOK}}}
	m, _ := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	exit, ret, err := m.Send(address.NewID(senderID), receiverAddr(), 2, nil, blocks.CodecRaw, abi.Zero(), nil, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.ExitOK, exit)
	require.Equal(t, "ok", string(ret))
	require.Equal(t, uint64(1), m.Stats().NumSends)
}

func TestSendValueTransferMovesBalance(t *testing.T) {
	invoker := &fakeInvoker{responses: []invokeResponse{{exit: fvmerr.ExitOK}}}
	m, tree := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	_, _, err := m.Send(address.NewID(senderID), receiverAddr(), 0, nil, blocks.CodecRaw, abi.NewTokenAmountFromUint64(500), nil, false)
	require.NoError(t, err)

	from, _, _ := tree.GetActor(senderID)
	to, _, _ := tree.GetActor(receiverID)
	require.Equal(t, "999500", from.Balance.String())
	require.Equal(t, "500", to.Balance.String())
}

func TestSendInsufficientFundsAbortsWithoutApplyingTransfer(t *testing.T) {
	invoker := &fakeInvoker{}
	m, tree := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	exit, _, err := m.Send(address.NewID(senderID), receiverAddr(), 0, nil, blocks.CodecRaw, abi.NewTokenAmountFromUint64(10_000_000), nil, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.SysErrInsufficientFunds, exit)

	from, _, _ := tree.GetActor(senderID)
	require.Equal(t, "1000000", from.Balance.String())
	require.Equal(t, 0, invoker.calls) // never reached invocation
}

func TestSendActorAbortRevertsStateAndEventsButKeepsBacktrace(t *testing.T) {
	invoker := &fakeInvoker{responses: []invokeResponse{{exit: fvmerr.ExitCode(20)}}}
	m, tree := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	exit, _, err := m.Send(address.NewID(senderID), receiverAddr(), 3, nil, blocks.CodecRaw, abi.Zero(), nil, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.ExitCode(20), exit)
	require.Len(t, m.Backtrace().Frames, 1)
	require.Equal(t, receiverID, m.Backtrace().Frames[0].Source)

	// State tree had no mutating calls in this scenario; sink must be empty
	// (nothing staged, nothing to discard) to confirm withTransaction ran.
	require.Equal(t, 0, m.Events().Len())
	_, ok, _ := tree.GetActor(receiverID)
	require.True(t, ok)
}

func TestSendAutoCreatesAccountActorForSecpTarget(t *testing.T) {
	invoker := &fakeInvoker{responses: []invokeResponse{{exit: fvmerr.ExitOK}}}
	m, tree := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	secpHash := make([]byte, 20)
	secpHash[0] = 0xAB
	secpAddr, err := address.NewSecp256k1Address(secpHash)
	require.NoError(t, err)

	exit, _, err := m.Send(address.NewID(senderID), secpAddr, types.SendMethod, nil, blocks.CodecRaw, abi.NewTokenAmountFromUint64(1), nil, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.ExitOK, exit)

	id, found, err := tree.LookupID(secpAddr)
	require.NoError(t, err)
	require.True(t, found)
	rec, ok, err := tree.GetActor(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, accountCode, rec.CodeID)
	require.Equal(t, "1", rec.Balance.String())
}

func TestSendToUnknownIDAddressFailsInvalidReceiver(t *testing.T) {
	invoker := &fakeInvoker{}
	m, _ := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	exit, ret, err := m.Send(address.NewID(senderID), address.NewID(99999), 2, nil, blocks.CodecRaw, abi.Zero(), nil, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.SysErrInvalidReceiver, exit)
	require.Nil(t, ret)
	require.Equal(t, 0, invoker.calls)
}

func TestSendAutoCreateDisabledByPolicyFailsInvalidReceiver(t *testing.T) {
	invoker := &fakeInvoker{}
	policy := netconfig.PolicyForVersion(netconfig.Version0) // pre-V7: AllowSecpBLS true, AllowDelegated false
	m, _ := newTestManager(t, invoker, policy)

	subAddr, err := address.NewDelegatedAddress(10, []byte{1, 2, 3})
	require.NoError(t, err)

	exit, _, err := m.Send(address.NewID(senderID), subAddr, types.SendMethod, nil, blocks.CodecRaw, abi.Zero(), nil, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.SysErrInvalidReceiver, exit)
}

func TestSendDepthLimitProducesFatalError(t *testing.T) {
	invoker := &fakeInvoker{}
	policy := netconfig.PolicyForVersion(netconfig.Version18)
	policy.Limits.MaxCallDepth = 0
	m, _ := newTestManager(t, invoker, policy)

	_, _, err := m.Send(address.NewID(senderID), receiverAddr(), 2, nil, blocks.CodecRaw, abi.Zero(), nil, false)
	require.Error(t, err)
	var fatal *fvmerr.Fatal
	require.ErrorAs(t, err, &fatal)
}

func TestSendGasSubLimitConstrainsChildTracker(t *testing.T) {
	invoker := &fakeInvoker{responses: []invokeResponse{{exit: fvmerr.ExitOK}}}
	m, _ := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	limit := gas.Gas(1000)
	exit, _, err := m.Send(address.NewID(senderID), receiverAddr(), 2, nil, blocks.CodecRaw, abi.Zero(), &limit, false)
	require.NoError(t, err)
	require.Equal(t, fvmerr.ExitOK, exit)
}

func TestManagerImplementsBackendNextActorAddressIsDeterministicPerCreation(t *testing.T) {
	invoker := &fakeInvoker{}
	m, _ := newTestManager(t, invoker, netconfig.PolicyForVersion(netconfig.Version18))

	a1 := m.NextActorAddress()
	a2 := m.NextActorAddress()
	require.Equal(t, a1, a2) // no creation recorded yet between calls

	require.NoError(t, m.CreateActor(5000, initCode, nil))
	a3 := m.NextActorAddress()
	require.NotEqual(t, a1, a3)
}

func TestWithTransactionRevertsOnError(t *testing.T) {
	m, tree := newTestManager(t, &fakeInvoker{}, netconfig.PolicyForVersion(netconfig.Version18))

	err := m.withTransaction(func() error {
		require.NoError(t, tree.SetActor(senderID, types.ActorRecord{Balance: abi.NewTokenAmountFromUint64(42)}))
		require.NoError(t, m.sink.Emit(senderID, []events.Entry{{Key: "x", Value: []byte("y")}}))
		return errAbort
	})
	require.Equal(t, errAbort, err)

	from, _, _ := tree.GetActor(senderID)
	require.Equal(t, "1000000", from.Balance.String())
	require.Equal(t, 0, m.sink.Len())
}
