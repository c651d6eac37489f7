package callmgr

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/kernel"
)

// hostEnv binds one frame's kernel.Kernel to the "env" host module wazero
// exposes to the sandbox. Only a representative slice of spec.md §6.4's
// full syscall surface is wired as actual Wasm imports here (self.root,
// ipld.block_create/read/stat, event.emit_event,
// rand.get_chain_randomness, vm.exit) — every other kernel.Kernel method
// would be wired the identical way: read fixed-width args and
// pointer/length pairs out of mod.Memory(), call the Kernel method, write
// results back the same way.
type hostEnv struct {
	k        kernel.Kernel
	exitCode fvmerr.ExitCode
}

func newHostEnv(k kernel.Kernel) *hostEnv {
	return &hostEnv{k: k}
}

const hostModuleName = "env"

func buildHostModule(ctx context.Context, rt wazero.Runtime, env *hostEnv) (api.Module, error) {
	b := rt.NewHostModuleBuilder(hostModuleName)

	b.NewFunctionBuilder().WithFunc(env.selfRoot).Export("self_root")
	b.NewFunctionBuilder().WithFunc(env.blockCreate).Export("block_create")
	b.NewFunctionBuilder().WithFunc(env.blockRead).Export("block_read")
	b.NewFunctionBuilder().WithFunc(env.blockStat).Export("block_stat")
	b.NewFunctionBuilder().WithFunc(env.emitEvent).Export("emit_event")
	b.NewFunctionBuilder().WithFunc(env.getChainRandomness).Export("get_chain_randomness")
	b.NewFunctionBuilder().WithFunc(env.vmExit).Export("vm_exit")

	return b.Instantiate(ctx)
}

// selfRoot writes the binary CID bytes (cid.Cid.Bytes, no length prefix;
// the length depends on the CID) of the current actor's state root to
// (outPtr) and returns the byte count, or a negative fvmerr.ErrorNumber on
// failure.
func (e *hostEnv) selfRoot(ctx context.Context, mod api.Module, outPtr uint32) int32 {
	root, err := e.k.Root()
	if err != nil {
		return errCode(err)
	}
	b := root.Bytes()
	if !mod.Memory().Write(outPtr, b) {
		return int32(-fvmerr.IllegalArgument)
	}
	return int32(len(b))
}

// blockCreate reads codec bytes from memory[ptr:ptr+len], stages them as a
// block, and returns the new handle.
func (e *hostEnv) blockCreate(ctx context.Context, mod api.Module, codec uint64, ptr, length uint32) int32 {
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return int32(-fvmerr.IllegalArgument)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	id, err := e.k.BlockCreate(codec, cp)
	if err != nil {
		return errCode(err)
	}
	return int32(id)
}

func (e *hostEnv) blockRead(ctx context.Context, mod api.Module, handle int32, offset, outPtr, outLen uint32) int32 {
	buf := make([]byte, outLen)
	remaining, err := e.k.BlockRead(blocks.Handle(handle), int(offset), buf)
	if err != nil {
		return errCode(err)
	}
	if !mod.Memory().Write(outPtr, buf) {
		return int32(-fvmerr.IllegalArgument)
	}
	return int32(remaining)
}

// blockStat packs (codec, size) into a single i64 the caller splits itself
// (high 32 bits codec low bits truncated, low 32 bits size); actual ABIs
// return a struct-by-pointer instead, simplified here since this package's
// job is to demonstrate the wiring, not finalize a binary layout.
func (e *hostEnv) blockStat(ctx context.Context, mod api.Module, handle int32) int64 {
	codec, size, err := e.k.BlockStat(blocks.Handle(handle))
	if err != nil {
		return int64(errCode(err))
	}
	return int64(codec)<<32 | int64(uint32(size))
}

func (e *hostEnv) emitEvent(ctx context.Context, mod api.Module, keyPtr, keyLen, valPtr, valLen uint32) int32 {
	key, ok1 := mod.Memory().Read(keyPtr, keyLen)
	val, ok2 := mod.Memory().Read(valPtr, valLen)
	if !ok1 || !ok2 {
		return int32(-fvmerr.IllegalArgument)
	}
	keyCopy := append([]byte(nil), key...)
	valCopy := append([]byte(nil), val...)
	err := e.k.EmitEvent([]events.Entry{{Key: string(keyCopy), Codec: blocks.CodecRaw, Value: valCopy}})
	if err != nil {
		return errCode(err)
	}
	return 0
}

func (e *hostEnv) getChainRandomness(ctx context.Context, mod api.Module, pers uint64, epoch uint64, entropyPtr, entropyLen, outPtr uint32) int32 {
	entropy, ok := mod.Memory().Read(entropyPtr, entropyLen)
	if !ok {
		return int32(-fvmerr.IllegalArgument)
	}
	out, err := e.k.GetChainRandomness(int64(pers), int64(epoch), entropy)
	if err != nil {
		return errCode(err)
	}
	if !mod.Memory().Write(outPtr, out[:]) {
		return int32(-fvmerr.IllegalArgument)
	}
	return 0
}

// vmExit is the sandbox's chosen-exit import: it records the actor's
// requested exit code on the host environment so Invoke can read it back
// after the instance's invoke() export returns normally (a voluntary exit
// does not trap).
func (e *hostEnv) vmExit(ctx context.Context, mod api.Module, code uint32) {
	e.exitCode = fvmerr.ExitCode(code)
}

func errCode(err error) int32 {
	if sysErr, ok := err.(*fvmerr.SyscallError); ok {
		return -int32(sysErr.Num)
	}
	return -int32(fvmerr.AssertionFailed)
}
