// Package callmgr implements the Call Manager: spec.md §4.6's run-the-call-
// stack-of-one-message coordinator. Grounded directly on core/vm.EVM.Call
// (resolve target -> charge -> transfer -> snapshot -> construct callee ->
// run -> revert-on-error -> unwind), replacing the bytecode interpreter with
// enginepool's WASM instantiation and the single return value with
// (exit_code, return_block). with_transaction is EVM.Call's
// StateDB.Snapshot()/RevertToSnapshot() pair, generalized to also roll back
// the events buffer.
package callmgr

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/builtin"
	"github.com/filecoin-project/go-fvm-core/enginepool"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/externs"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/kernel"
	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/filecoin-project/go-fvm-core/statetree"
	"github.com/filecoin-project/go-fvm-core/types"
)

// Invoker runs one actor invocation in the sandbox: given the callee's
// code_id and a params block already staged in k's private registry, it
// returns the return block (0/blocks.NoData if none) and the exit code the
// sandbox produced. Kept as an interface (rather than wiring wazero
// directly into Manager) so Manager.Send is testable without a compiled
// Wasm fixture; WazeroInvoker in invoke.go is the concrete sandbox-backed
// implementation the executor actually wires in.
type Invoker interface {
	Invoke(ctx context.Context, k kernel.Kernel, codeID cid.Cid, paramsBlock blocks.Handle) (blocks.Handle, fvmerr.ExitCode, error)
}

// Manager owns the call stack of one message: one gas budget, one
// backtrace, one event sink, shared across every nested send.
type Manager struct {
	tree     statetree.Tree
	tracker  *gas.Tracker
	pricelist *gas.PriceList
	ext      externs.Externs
	manifest *builtin.Manifest
	policy   netconfig.Policy
	sink     *events.Sink
	invoker  Invoker
	engine   *enginepool.Engine

	origin      uint64
	originNonce uint64
	callDepth   int
	backtrace   *fvmerr.Backtrace
	stats       Stats

	epoch          int64
	baseFee        abi.TokenAmount
	circSupplyRoot cid.Cid
	debug          bool
	artifactDir    string
}

// Config bundles everything Manager needs beyond the per-message origin and
// gas tracker, all of it process- or block-scoped collaborators.
type Config struct {
	Tree           statetree.Tree
	Tracker        *gas.Tracker
	PriceList      *gas.PriceList
	Externs        externs.Externs
	Manifest       *builtin.Manifest
	Policy         netconfig.Policy
	Invoker        Invoker
	Engine         *enginepool.Engine
	Epoch          int64
	BaseFee        abi.TokenAmount
	CircSupplyRoot cid.Cid
	Debug          bool
	ArtifactDir    string
}

// NewManager constructs a Manager for one message, with origin/nonce fixed
// for the whole call tree (spec.md §4.6's "origin, nonce" state).
func NewManager(cfg Config, origin uint64, originNonce uint64) *Manager {
	return &Manager{
		tree:           cfg.Tree,
		tracker:        cfg.Tracker,
		pricelist:      cfg.PriceList,
		ext:            cfg.Externs,
		manifest:       cfg.Manifest,
		policy:         cfg.Policy,
		sink:           events.NewSink(),
		invoker:        cfg.Invoker,
		engine:         cfg.Engine,
		origin:         origin,
		originNonce:    originNonce,
		backtrace:      &fvmerr.Backtrace{},
		epoch:          cfg.Epoch,
		baseFee:        cfg.BaseFee,
		circSupplyRoot: cfg.CircSupplyRoot,
		debug:          cfg.Debug,
		artifactDir:    cfg.ArtifactDir,
	}
}

func (m *Manager) Events() *events.Sink      { return m.sink }
func (m *Manager) Backtrace() *fvmerr.Backtrace { return m.backtrace }
func (m *Manager) Stats() Stats              { return m.stats }

var _ kernel.Backend = (*Manager)(nil)

// Send is the Call Manager's one entry point, implementing spec.md §4.6
// steps 1-10. readOnly propagates to the constructed Kernel; value-bearing
// sends under read_only are rejected one level up, in kernel.Default,
// before Send is ever reached for that case — Send itself
// still re-validates the transfer and depth invariants since it is also the
// Backend a nested kernel.Default.Send calls into directly.
func (m *Manager) Send(from, to address.Address, method uint64, params []byte, paramsCodec uint64, value abi.TokenAmount, gasSubLimit *gas.Gas, readOnly bool) (fvmerr.ExitCode, []byte, error) {
	m.stats.recordSend()

	toID, found, err := m.tree.LookupID(to)
	if err != nil {
		return 0, nil, fvmerr.WrapFatal(err, "callmgr: looking up receiver")
	}
	if !found {
		if method != types.SendMethod {
			return fvmerr.SysErrInvalidReceiver, nil, nil
		}
		toID, err = m.autoCreate(to)
		if err != nil {
			if _, ok := err.(*fvmerr.SyscallError); ok {
				return fvmerr.SysErrInvalidReceiver, nil, nil
			}
			return 0, nil, err
		}
		found = true
	}

	fromID, _, err := m.tree.LookupID(from)
	if err != nil {
		return 0, nil, fvmerr.WrapFatal(err, "callmgr: looking up sender")
	}

	m.callDepth++
	defer func() { m.callDepth-- }()
	if m.callDepth > m.policy.Limits.MaxCallDepth {
		return 0, nil, fvmerr.NewFatal("call depth %d exceeds maximum %d", m.callDepth, m.policy.Limits.MaxCallDepth)
	}

	var exitCode fvmerr.ExitCode
	var retBytes []byte

	txErr := m.withTransaction(func() error {
		if !value.IsZero() {
			if err := m.transfer(fromID, toID, value); err != nil {
				exitCode = fvmerr.SysErrInsufficientFunds
				return errAbort
			}
		}

		rec, _, err := m.tree.GetActor(toID)
		if err != nil {
			return fvmerr.WrapFatal(err, "callmgr: loading callee record")
		}

		runFrame := func(tracker *gas.Tracker) error {
			k := kernel.New(
				kernel.Context{
					ActorID:        toID,
					Method:         method,
					Caller:         fromID,
					Origin:         m.origin,
					ValueReceived:  value,
					Nonce:          m.originNonce,
					ReadOnly:       readOnly,
					NV:             m.policy.Version,
					Epoch:          m.epoch,
					BaseFeeAmt:     m.baseFee,
					GasLimitVal:    tracker.Limit(),
					BurnAllowed:    m.policy.SelfDestructBurnAllowed,
					CircSupplyRoot: m.circSupplyRoot,
				},
				m,
				m.tree,
				tracker,
				m.pricelist,
				m.ext,
				m.sink,
				m.policy.Limits,
				rec.StateRoot,
				m.debug,
				m.artifactDir,
			)

			var paramsHandle blocks.Handle
			if len(params) > 0 {
				var putErr error
				paramsHandle, putErr = k.Registry().Put(paramsCodec, params)
				if putErr != nil {
					return fvmerr.WrapFatal(putErr, "callmgr: staging params block")
				}
			}

			m.stats.recordSyscall()
			retHandle, code, invokeErr := m.invoker.Invoke(context.Background(), k, rec.CodeID, paramsHandle)
			exitCode = code
			if invokeErr != nil {
				if abort, ok := invokeErr.(*fvmerr.ActorAbort); ok {
					m.backtrace.Push(fvmerr.Frame{Source: toID, Method: method, Code: abort.Code, Message: abort.Msg})
					exitCode = abort.Code
					return errAbort
				}
				return fvmerr.WrapFatal(invokeErr, "callmgr: sandbox invocation")
			}
			if retHandle != blocks.NoData {
				b, getErr := k.Registry().Get(retHandle)
				if getErr != nil {
					return fvmerr.WrapFatal(getErr, "callmgr: reading return block")
				}
				retBytes = b.Data
			}
			if !exitCode.IsSuccess() {
				m.backtrace.Push(fvmerr.Frame{Source: toID, Method: method, Code: exitCode})
				return errAbort
			}
			return nil
		}

		// A constrained sub-call (a non-nil gasSubLimit) runs its gas
		// accounting against a child tracker scoped to min(parent
		// available, gasSubLimit), per spec.md §4.2; the child is
		// discarded at scope exit and its consumption mirrored into the
		// parent by gas.Tracker.WithSubLimit.
		if gasSubLimit != nil {
			return m.tracker.WithSubLimit(*gasSubLimit, runFrame)
		}
		return runFrame(m.tracker)
	})

	if txErr != nil && txErr != errAbort {
		return 0, nil, txErr
	}
	return exitCode, retBytes, nil
}

// errAbort is the sentinel withTransaction looks for to distinguish "roll
// back, but this is not a Go-level failure" from a real error needing
// propagation.
var errAbort = &abortSentinel{}

type abortSentinel struct{}

func (*abortSentinel) Error() string { return "callmgr: frame aborted" }

// withTransaction snapshots the state tree and the events buffer, runs f,
// and rolls both back to the snapshot if f reports failure — the
// generalization of EVM.Call's StateDB.Snapshot()/RevertToSnapshot() pair
// to also cover the event sink. Gas consumption and the backtrace are never
// rolled back.
func (m *Manager) withTransaction(f func() error) error {
	token := m.tree.Snapshot()
	mark := m.sink.Mark()

	err := f()
	if err != nil {
		if revErr := m.tree.Revert(token); revErr != nil {
			return fvmerr.WrapFatal(revErr, "callmgr: reverting state tree")
		}
		m.sink.Discard(mark)
	}
	return err
}

// transfer moves value from fromID to toID's balance, failing with
// InsufficientFunds (never partially applied) if the sender's balance is
// short.
func (m *Manager) transfer(fromID, toID uint64, value abi.TokenAmount) error {
	fromRec, ok, err := m.tree.GetActor(fromID)
	if err != nil {
		return err
	}
	if !ok {
		return fvmerr.NewSyscallError(fvmerr.NotFound, "sender actor %d not found", fromID)
	}
	newFromBalance, err := fromRec.Balance.Sub(value)
	if err != nil {
		return fvmerr.NewSyscallError(fvmerr.InsufficientFunds, "sender %d balance insufficient for transfer", fromID)
	}
	toRec, ok, err := m.tree.GetActor(toID)
	if err != nil {
		return err
	}
	if !ok {
		return fvmerr.NewSyscallError(fvmerr.NotFound, "receiver actor %d not found", toID)
	}
	fromRec.Balance = newFromBalance
	toRec.Balance = toRec.Balance.Add(value)
	if err := m.tree.SetActor(fromID, fromRec); err != nil {
		return err
	}
	return m.tree.SetActor(toID, toRec)
}
