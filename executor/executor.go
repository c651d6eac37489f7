// Package executor implements the top-level message-application pipeline:
// spec.md §4.7's single public operation, Apply(msg, kind, encoded_len).
// Grounded on the teacher's per-call gas/transfer/error-unwind sequence in
// core/vm.EVM.Call, hoisted one level up to whole-message scope, and on the
// EIP-1559 effective-gas-price accounting idiom referenced across the
// teacher's params package (base fee / tip / burn split).
package executor

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/builtin"
	"github.com/filecoin-project/go-fvm-core/callmgr"
	"github.com/filecoin-project/go-fvm-core/enginepool"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/externs"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/filecoin-project/go-fvm-core/statetree"
	"github.com/filecoin-project/go-fvm-core/types"
)

// DefaultBlockGasLimit bounds a single message's gas_limit at the block
// level; the embedder may override it via Config.BlockGasLimit.
const DefaultBlockGasLimit int64 = 10_000_000_000

// Config bundles everything one Executor needs across every message it
// applies: the shared collaborators a Manager.Config also needs, plus the
// two well-known actor ids fee settlement credits.
type Config struct {
	Tree           statetree.Tree
	PriceList      *gas.PriceList
	Externs        externs.Externs
	Manifest       *builtin.Manifest
	Policy         netconfig.Policy
	Invoker        callmgr.Invoker
	Engine         *enginepool.Engine
	Epoch          int64
	BaseFee        abi.TokenAmount
	CircSupplyRoot cid.Cid
	Debug          bool
	ArtifactDir    string

	BurnActorID   uint64
	RewardActorID uint64
	BlockGasLimit int64
}

// Executor applies one message at a time against a fixed set of block-scoped
// collaborators; it holds no per-message state between Apply calls.
type Executor struct {
	cfg Config
}

func NewExecutor(cfg Config) *Executor {
	if cfg.BlockGasLimit == 0 {
		cfg.BlockGasLimit = DefaultBlockGasLimit
	}
	return &Executor{cfg: cfg}
}

// preValidationPenalty is the miner-compensation charge spec.md §4.7 step 2
// names explicitly for the inclusion-gas-too-low case; this implementation
// applies it uniformly to every pre-flight failure (steps 1-5), not just
// that one, since an embedder that let other malformed/invalid messages
// into a block for free would have the identical incentive problem. See
// DESIGN.md's Open Question decisions.
func preValidationPenalty(baseFee abi.TokenAmount, gasLimit int64) abi.TokenAmount {
	if gasLimit <= 0 {
		return abi.Zero()
	}
	return baseFee.MulUint64(uint64(gasLimit))
}

func preFlightFailure(exitCode fvmerr.ExitCode, penalty abi.TokenAmount, gasUsed int64) *types.ApplyRet {
	return &types.ApplyRet{
		Receipt: types.Receipt{
			ExitCode: exitCode,
			GasUsed:  gasUsed,
		},
		MinerPenalty: penalty,
		MinerTip:     abi.Zero(),
		BaseFeeBurn:  abi.Zero(),
		Refund:       abi.Zero(),
	}
}

// Apply runs spec.md §4.7's full pipeline for one message. kind selects
// between full validation/settlement (Explicit) and the bypassed-checks,
// no-fee-settlement path implicit system calls use (Implicit); both still
// meter gas against the message's own tracker.
func (e *Executor) Apply(msg types.Message, kind types.MessageKind, encodedLen int) (*types.ApplyRet, error) {
	if kind == types.Implicit {
		return e.applyImplicit(msg, encodedLen)
	}
	return e.applyExplicit(msg, encodedLen)
}

func (e *Executor) applyExplicit(msg types.Message, encodedLen int) (*types.ApplyRet, error) {
	penalty := preValidationPenalty(e.cfg.BaseFee, msg.GasLimit)

	// 1. Well-formedness.
	if msg.Version != 0 {
		return preFlightFailure(fvmerr.SysErrIllegalArgument, penalty, 0), nil
	}
	if msg.GasLimit <= 0 || msg.GasLimit > e.cfg.BlockGasLimit {
		return preFlightFailure(fvmerr.SysErrIllegalArgument, penalty, 0), nil
	}
	if msg.GasPremium.GreaterThan(msg.GasFeeCap) {
		return preFlightFailure(fvmerr.SysErrIllegalArgument, penalty, 0), nil
	}

	tracker := gas.NewTracker(gas.Gas(msg.GasLimit))

	// 2. Inclusion gas.
	if err := tracker.Charge(e.cfg.PriceList.OnChainMessage(encodedLen)); err != nil {
		return preFlightFailure(fvmerr.SysErrOutOfGas, penalty, int64(tracker.Used())), nil
	}

	// 3. Resolve sender; must be an existing account-capable actor.
	senderID, found, err := e.cfg.Tree.LookupID(msg.From)
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: resolving sender")
	}
	if !found {
		return preFlightFailure(fvmerr.SysErrSenderInvalid, penalty, int64(tracker.Used())), nil
	}
	senderRec, _, err := e.cfg.Tree.GetActor(senderID)
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: loading sender")
	}
	if !e.cfg.Manifest.IsAccountCapable(senderRec.CodeID) {
		return preFlightFailure(fvmerr.SysErrSenderInvalid, penalty, int64(tracker.Used())), nil
	}

	// 4. Nonce check.
	if senderRec.Nonce != msg.Sequence {
		return preFlightFailure(fvmerr.SysErrSenderStateInvalid, penalty, int64(tracker.Used())), nil
	}

	// 5. Balance check: gas_limit * fee_cap + value.
	upfront := msg.GasFeeCap.MulUint64(uint64(msg.GasLimit))
	required := upfront.Add(msg.Value)
	if senderRec.Balance.LessThan(required) {
		return preFlightFailure(fvmerr.SysErrSenderStateInvalid, penalty, int64(tracker.Used())), nil
	}

	// 6. Debit upfront cost, bump nonce.
	newBalance, err := senderRec.Balance.Sub(upfront)
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: debiting sender")
	}
	senderRec.Balance = newBalance
	senderRec.Nonce++
	if err := e.cfg.Tree.SetActor(senderID, senderRec); err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: persisting sender debit")
	}

	// 7-8. Construct the Call Manager over the remaining budget and run the
	// root send.
	mgr := callmgr.NewManager(callmgr.Config{
		Tree:           e.cfg.Tree,
		Tracker:        tracker,
		PriceList:      e.cfg.PriceList,
		Externs:        e.cfg.Externs,
		Manifest:       e.cfg.Manifest,
		Policy:         e.cfg.Policy,
		Invoker:        e.cfg.Invoker,
		Engine:         e.cfg.Engine,
		Epoch:          e.cfg.Epoch,
		BaseFee:        e.cfg.BaseFee,
		CircSupplyRoot: e.cfg.CircSupplyRoot,
		Debug:          e.cfg.Debug,
		ArtifactDir:    e.cfg.ArtifactDir,
	}, senderID, msg.Sequence)

	exitCode, retBytes, sendErr := mgr.Send(msg.From, msg.To, msg.Method, msg.Params, blocks.CodecDagCBOR, msg.Value, nil, false)
	if sendErr != nil {
		// A Fatal escaping the call manager still produces a receipt (spec
		// §4.8: "aborts the entire message with SysErrReserved exit; full
		// backtrace + cause captured"), not a propagated Go error — the
		// message consumed whatever gas it consumed and settlement still
		// runs against that.
		exitCode = fvmerr.SysErrReserved
	}

	gasUsed := int64(tracker.Used())
	outputs, err := computeGasOutputs(gasUsed, msg.GasLimit, e.cfg.BaseFee, msg.GasFeeCap, msg.GasPremium)
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: computing gas outputs")
	}

	if err := e.settle(senderID, outputs); err != nil {
		return nil, err
	}

	ret := &types.ApplyRet{
		Receipt: types.Receipt{
			ExitCode:    exitCode,
			ReturnBytes: retBytes,
			GasUsed:     gasUsed,
		},
		MinerPenalty: outputs.MinerPenalty,
		MinerTip:     outputs.MinerTip,
		BaseFeeBurn:  outputs.BaseFeeBurn,
		Refund:       outputs.Refund,
		Telemetry: types.Telemetry{
			NumActorsCreated: mgr.Stats().NumActorsCreated,
			NumSyscalls:      mgr.Stats().NumSyscalls,
			NumSends:         mgr.Stats().NumSends,
		},
	}
	if !exitCode.IsSuccess() {
		ret.Failure = &types.ApplyFailure{BacktraceText: mgr.Backtrace().String()}
	}
	eventsRoot, err := events.Merkleize(mgr.Events().All())
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: merkleizing events")
	}
	ret.Receipt.EventsRoot = eventsRoot
	return ret, sendErr
}

// applyImplicit bypasses nonce/sender-type/fee checks and never settles fees
// — cron and reward-style system calls still meter gas internally (and are
// still subject to OutOfGas/depth limits) but nobody pays for them.
func (e *Executor) applyImplicit(msg types.Message, encodedLen int) (*types.ApplyRet, error) {
	senderID, found, err := e.cfg.Tree.LookupID(msg.From)
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: resolving implicit sender")
	}
	if !found {
		// Implicit callers are conventionally ID addresses naming a
		// well-known system actor that always exists in a correctly
		// bootstrapped tree; failing to resolve one is a host bug, not a
		// message-level failure.
		id, idErr := msg.From.ID()
		if idErr != nil {
			return nil, fvmerr.NewFatal("executor: implicit sender %s has no actor and is not an ID address", msg.From)
		}
		senderID = id
	}

	limit := msg.GasLimit
	if limit <= 0 {
		limit = e.cfg.BlockGasLimit
	}
	tracker := gas.NewTracker(gas.Gas(limit))
	_ = tracker.Charge(e.cfg.PriceList.OnChainMessage(encodedLen))

	mgr := callmgr.NewManager(callmgr.Config{
		Tree:           e.cfg.Tree,
		Tracker:        tracker,
		PriceList:      e.cfg.PriceList,
		Externs:        e.cfg.Externs,
		Manifest:       e.cfg.Manifest,
		Policy:         e.cfg.Policy,
		Invoker:        e.cfg.Invoker,
		Engine:         e.cfg.Engine,
		Epoch:          e.cfg.Epoch,
		BaseFee:        e.cfg.BaseFee,
		CircSupplyRoot: e.cfg.CircSupplyRoot,
		Debug:          e.cfg.Debug,
		ArtifactDir:    e.cfg.ArtifactDir,
	}, senderID, msg.Sequence)

	exitCode, retBytes, sendErr := mgr.Send(msg.From, msg.To, msg.Method, msg.Params, blocks.CodecDagCBOR, msg.Value, nil, false)
	if sendErr != nil {
		exitCode = fvmerr.SysErrReserved
	}

	eventsRoot, err := events.Merkleize(mgr.Events().All())
	if err != nil {
		return nil, fvmerr.WrapFatal(err, "executor: merkleizing events")
	}

	ret := &types.ApplyRet{
		Receipt: types.Receipt{
			ExitCode:    exitCode,
			ReturnBytes: retBytes,
			GasUsed:     int64(tracker.Used()),
			EventsRoot:  eventsRoot,
		},
		MinerPenalty: abi.Zero(),
		MinerTip:     abi.Zero(),
		BaseFeeBurn:  abi.Zero(),
		Refund:       abi.Zero(),
		Telemetry: types.Telemetry{
			NumActorsCreated: mgr.Stats().NumActorsCreated,
			NumSyscalls:      mgr.Stats().NumSyscalls,
			NumSends:         mgr.Stats().NumSends,
		},
	}
	if !exitCode.IsSuccess() {
		ret.Failure = &types.ApplyFailure{BacktraceText: mgr.Backtrace().String()}
	}
	return ret, sendErr
}

// settle credits the burn and reward actors and refunds the sender, per
// spec.md §4.7 step 10. Gas outputs are computed against whole-gas-unit
// TokenAmounts so every credit is non-negative by construction.
func (e *Executor) settle(senderID uint64, outputs GasOutputs) error {
	if err := e.creditActor(e.cfg.BurnActorID, outputs.BaseFeeBurn.Add(outputs.OverEstimationBurn)); err != nil {
		return err
	}
	if err := e.creditActor(e.cfg.RewardActorID, outputs.MinerTip); err != nil {
		return err
	}
	return e.creditActor(senderID, outputs.Refund)
}

func (e *Executor) creditActor(id uint64, amount abi.TokenAmount) error {
	if amount.IsZero() {
		return nil
	}
	rec, ok, err := e.cfg.Tree.GetActor(id)
	if err != nil {
		return fvmerr.WrapFatal(err, "executor: loading actor %d for settlement credit", id)
	}
	if !ok {
		return fvmerr.NewFatal("executor: settlement target actor %d does not exist", id)
	}
	rec.Balance = rec.Balance.Add(amount)
	if err := e.cfg.Tree.SetActor(id, rec); err != nil {
		return fvmerr.WrapFatal(err, "executor: crediting actor %d", id)
	}
	return nil
}
