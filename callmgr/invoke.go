package callmgr

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/blockstore"
	"github.com/filecoin-project/go-fvm-core/enginepool"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/kernel"
)

// WazeroInvoker is the concrete sandbox-backed Invoker, grounded on
// enginepool's ModuleCache (the compiled-module LRU) and wazero's
// HostModuleBuilder for wiring kernel.Kernel's capability groups as "env"
// imports. Representative syscalls are wired through linear memory
// pointer/length pairs per spec.md §6.4; every remaining method in
// kernel.Kernel follows the same read-args/call/write-result shape.
type WazeroInvoker struct {
	pool  *enginepool.Engine
	store blockstore.Blockstore
}

// NewWazeroInvoker builds an invoker over pool's shared module cache,
// resolving actor code bytes from store the same way the kernel's own
// BlockOpen path resolves IPLD blocks — code is addressed by its CID and
// stored raw (blocks.CodecRaw), not wrapped in any chain-specific wire
// format (spec.md §6.1's blockstore is opaque to wire format by design).
func NewWazeroInvoker(pool *enginepool.Engine, store blockstore.Blockstore) *WazeroInvoker {
	return &WazeroInvoker{pool: pool, store: store}
}

// Invoke compiles (if needed), instantiates, and runs one actor's "invoke"
// export against k, wiring k's capability groups as host imports so the
// sandbox's syscalls re-enter the kernel exactly as spec.md §6.4/§6.5
// describe. wasmBytes is resolved from codeID via the same blockstore the
// kernel's own BlockOpen path uses, supplied here as a parameter to keep
// WazeroInvoker decoupled from any one blockstore implementation.
func (w *WazeroInvoker) Invoke(ctx context.Context, k kernel.Kernel, codeID cid.Cid, paramsBlock blocks.Handle) (blocks.Handle, fvmerr.ExitCode, error) {
	wasmBytes, err := w.loadCode(codeID)
	if err != nil {
		return blocks.NoData, 0, fvmerr.WrapFatal(err, "callmgr: loading actor code %s", codeID)
	}

	compiled, err := w.pool.ModuleCache().GetOrCompile(ctx, codeID, wasmBytes)
	if err != nil {
		return blocks.NoData, 0, fvmerr.WrapFatal(err, "callmgr: compiling actor code %s", codeID)
	}

	env := newHostEnv(k)
	rt := w.pool.ModuleCache().Runtime()
	hostMod, err := buildHostModule(ctx, rt, env)
	if err != nil {
		return blocks.NoData, 0, fvmerr.WrapFatal(err, "callmgr: building host module")
	}
	// The runtime's module namespace is shared across nested sends, so the
	// "env" host module must be closed before this frame returns or the
	// next nested Invoke's buildHostModule call would collide with it.
	defer hostMod.Close(ctx)

	instanceName := fmt.Sprintf("invocation-%d-%d", k.Receiver(), k.MethodNumber())
	mod, err := compiled.Instantiate(ctx, rt, instanceName)
	if err != nil {
		return blocks.NoData, 0, translateTrap(err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction("invoke")
	if fn == nil {
		return blocks.NoData, 0, fvmerr.NewFatal("actor code %s exports no invoke function", codeID)
	}
	results, err := fn.Call(ctx, uint64(paramsBlock))
	if err != nil {
		return blocks.NoData, 0, translateTrap(err)
	}
	if len(results) != 1 {
		return blocks.NoData, 0, fvmerr.NewFatal("invoke returned %d results, want 1", len(results))
	}
	retHandle := blocks.Handle(int32(results[0]))
	return retHandle, env.exitCode, nil
}

// loadCode fetches codeID's raw Wasm bytes from the configured blockstore.
// invoke_test.go calls loadCode directly; the Manager and Executor tests
// use a fake Invoker instead of Invoke (see executor/fixtures.go for why no
// real Wasm toolchain runs in this environment). cmd/fvmctl is the one
// caller that actually loads code this way, against a blockstore seeded
// from disk.
func (w *WazeroInvoker) loadCode(codeID cid.Cid) ([]byte, error) {
	if w.store == nil {
		return nil, fmt.Errorf("callmgr: no code loader configured for %s", codeID)
	}
	data, err := w.store.Get(context.Background(), codeID)
	if err != nil {
		return nil, fmt.Errorf("callmgr: loading actor code %s: %w", codeID, err)
	}
	return data, nil
}

// translateTrap maps a wazero trap (actor code explicitly trapped, ran out
// of fuel, or hit an unreachable instruction) to the fvmerr taxonomy.
// Wazero's sys.ExitError / wasm traps surface as plain errors from Call; we
// treat all of them as a fatal host-observed fault rather than guessing at
// an actor-chosen exit code, since a genuine actor exit goes through the
// vm.Exit host import (hostEnv.vmExit) instead of a trap.
func translateTrap(err error) error {
	return fvmerr.WrapFatal(err, "callmgr: sandbox trapped")
}
