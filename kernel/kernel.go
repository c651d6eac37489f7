// Package kernel implements the full host interface exposed to sandboxed
// actor code, divided into capability groups matching spec.md §4.5 (self,
// ipld, actor, send, crypto, rand, message, event, debug). Grounded on the
// teacher's StateDB interface (core/vm/evm.go) — a single wide interface
// implemented by one concrete type — generalized to the Kernel interface
// implemented by kernel.Default.
//
// The cyclic host-sandbox reference spec.md §9 warns about (sandbox ->
// kernel -> call manager -> sandbox runtime) is broken at the package
// level: kernel depends only on the small Backend interface below, which
// package callmgr implements, rather than importing callmgr directly.
package kernel

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/externs"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/filecoin-project/go-fvm-core/statetree"
)

// Backend is the subset of callmgr.Manager the kernel needs in order to
// dispatch sends and manage actor lifecycle: everything that requires
// re-entering the call stack rather than touching this frame's own staged
// state directly.
type Backend interface {
	Send(from, to address.Address, method uint64, params []byte, paramsCodec uint64, value abi.TokenAmount, gasSubLimit *gas.Gas, readOnly bool) (fvmerr.ExitCode, []byte, error)
	ResolveAddress(addr address.Address) (id uint64, found bool, err error)
	GetActorCode(id uint64) (cid.Cid, bool, error)
	LookupDelegatedAddress(id uint64) (*address.Address, error)
	NextActorAddress() address.Address
	CreateActor(id uint64, codeID cid.Cid, delegated *address.Address) error
	IsInitActor(id uint64) bool
}

// Kernel is the complete host surface; one actor invocation gets exactly
// one Kernel, scoped to its frame.
type Kernel interface {
	// self
	Root() (cid.Cid, error)
	SetRoot(c cid.Cid) error
	CurrentBalance() abi.TokenAmount
	SelfDestruct(burnFunds bool) error

	// ipld
	BlockOpen(c cid.Cid) (blocks.Handle, uint64, int, error)
	BlockCreate(codec uint64, data []byte) (blocks.Handle, error)
	BlockLink(id blocks.Handle, hashFn uint64, hashLen int) (cid.Cid, error)
	BlockRead(id blocks.Handle, offset int, buf []byte) (int, error)
	BlockStat(id blocks.Handle) (uint64, int, error)

	// actor
	ResolveAddress(addr address.Address) (uint64, bool, error)
	GetActorCode(addr address.Address) (cid.Cid, bool, error)
	LookupDelegatedAddress(id uint64) (*address.Address, error)
	NextActorAddress() address.Address
	CreateActor(id uint64, codeID cid.Cid, delegated *address.Address) error

	// send
	Send(to address.Address, method uint64, paramsBlock blocks.Handle, value abi.TokenAmount, gasSubLimit *gas.Gas) (fvmerr.ExitCode, blocks.Handle, error)

	// crypto
	Hash(alg HashAlgo, data []byte) ([]byte, error)
	VerifySignature(sig []byte, signer address.Address, data []byte) (bool, error)
	RecoverSecpPublicKey(hash [32]byte, sig []byte) ([]byte, error)
	VerifySeal(info SealInfo) (bool, error)
	VerifyPost(info SealInfo) (bool, error)
	VerifyAggregateSeals(info SealInfo) (bool, error)
	VerifyReplicaUpdate(info SealInfo) (bool, error)
	VerifyConsensusFault(h1, h2, extra []byte) (*externs.ConsensusFault, error)

	// rand
	GetChainRandomness(pers int64, epoch int64, entropy []byte) ([32]byte, error)
	GetBeaconRandomness(pers int64, epoch int64, entropy []byte) ([32]byte, error)

	// messaging metadata
	MethodNumber() uint64
	Caller() uint64
	Origin() uint64
	Receiver() uint64
	ValueReceived() abi.TokenAmount
	Nonce() uint64
	NetworkVersion() netconfig.Version
	CurrentEpoch() int64
	BaseFee() abi.TokenAmount
	TotalCircSupply() abi.TokenAmount
	GasAvailable() gas.Gas
	GasLimit() gas.Gas
	ReadOnly() bool

	// event
	EmitEvent(entries []events.Entry) error

	// debug
	Log(msg string)
	StoreArtifact(name string, data []byte) error
}

// Context is everything about the current frame a Default needs beyond
// Backend: identity, gas, state view, policy.
type Context struct {
	ActorID       uint64
	Method        uint64
	Caller        uint64
	Origin        uint64
	ValueReceived abi.TokenAmount
	Nonce         uint64
	ReadOnly      bool
	NV            netconfig.Version
	Epoch         int64
	BaseFeeAmt    abi.TokenAmount
	GasLimitVal   gas.Gas
	BurnAllowed   bool    // netconfig.Policy.SelfDestructBurnAllowed for this network version
	CircSupplyRoot cid.Cid // state root passed to the circ-supply extern
}

// Default is the concrete Kernel implementation. One Default is
// constructed per call-manager frame.
type Default struct {
	ctx       Context
	backend   Backend
	tree      statetree.Tree
	registry  *blocks.Registry
	tracker   *gas.Tracker
	pricelist *gas.PriceList
	ext       externs.Externs
	events    *events.Sink
	limits    netconfig.Limits
	debug     bool
	artifactDir string

	reachable map[string]bool // CIDs reachable this frame (invariant 4)
	deleted   bool

	blockLoader func(cid.Cid) ([]byte, uint64, error)
	blockStorer func(cid.Cid, []byte) error
}

var _ Kernel = (*Default)(nil)
