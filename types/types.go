// Package types holds the chain-facing data shapes: the message, the actor
// record, and the receipt. Grounded on go-ethereum's core/types.Transaction
// (fields, not layout) and core/vm.AccountRef for the actor record shape,
// generalized to the actor/CID data model.
package types

import (
	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/ipfs/go-cid"
)

// MessageKind distinguishes a real chain message (subject to full
// validation and fee settlement) from an implicit one (nonce/fee checks
// bypassed, used for cron/reward-style system calls).
type MessageKind int

const (
	Explicit MessageKind = iota
	Implicit
)

// Message is one chain message: the unit the Executor applies.
type Message struct {
	Version    uint64
	From       address.Address
	To         address.Address
	Sequence   uint64
	Value      abi.TokenAmount
	Method     uint64
	Params     []byte
	GasLimit   int64 // whole gas units
	GasFeeCap  abi.TokenAmount
	GasPremium abi.TokenAmount
}

// SendMethod is the well-known method number meaning "bare value transfer,
// no method dispatch".
const SendMethod uint64 = 0

// ActorRecord is the tuple the state tree stores per actor id.
type ActorRecord struct {
	CodeID            cid.Cid
	StateRoot         cid.Cid
	Nonce             uint64
	Balance           abi.TokenAmount
	DelegatedAddress  *address.Address
}

// Receipt is the commit-time record of a top-level message application.
type Receipt struct {
	ExitCode    fvmerr.ExitCode
	ReturnBytes []byte
	GasUsed     int64
	EventsRoot  *cid.Cid
}

// ApplyFailure is a separate, debug-only record attached to explicit
// message failures, carrying the backtrace text; never part of consensus.
type ApplyFailure struct {
	BacktraceText string
}

// Telemetry is ambient per-message diagnostics, never part of consensus:
// how much of the host surface one Apply call actually touched. Grounded
// on go-ethereum's per-transaction ExecutionResult counters, generalized
// from gas-only bookkeeping to the wider syscall/send/actor-creation
// counts spec.md §2.8's executor scope implies but leaves to the
// embedder's judgment call of what to surface.
type Telemetry struct {
	NumActorsCreated uint64
	NumSyscalls      uint64
	NumSends         uint64
}

// ApplyRet is the full result of Executor.Apply: the receipt, the optional
// failure detail, a miner penalty (debited if pre-flight validation failed
// outright), and ambient diagnostics.
type ApplyRet struct {
	Receipt      Receipt
	Failure      *ApplyFailure
	MinerPenalty abi.TokenAmount
	MinerTip     abi.TokenAmount
	BaseFeeBurn  abi.TokenAmount
	Refund       abi.TokenAmount
	Telemetry    Telemetry
}
