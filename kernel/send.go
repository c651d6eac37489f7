package kernel

import (
	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/gas"
)

// Send charges on_value_transfer iff value > 0 and on_method_invocation iff
// method != SEND, then enters a new frame via the call manager. The actual
// auto-creation, transfer, and transactional-snapshot logic live in
// callmgr.Manager.Send; this method only applies the charges the syscall
// boundary itself is responsible for before delegating.
func (d *Default) Send(to address.Address, method uint64, paramsBlock blocks.Handle, value abi.TokenAmount, gasSubLimit *gas.Gas) (fvmerr.ExitCode, blocks.Handle, error) {
	if !value.IsZero() {
		if d.ctx.ReadOnly {
			return 0, 0, fvmerr.NewSyscallError(fvmerr.Forbidden, "value-bearing send forbidden in read-only context")
		}
		if err := d.chargeOrAbort(d.pricelist.OnValueTransfer()); err != nil {
			return 0, 0, err
		}
	}
	const sendMethod = 0
	if method != sendMethod {
		if err := d.chargeOrAbort(d.pricelist.OnMethodInvocation()); err != nil {
			return 0, 0, err
		}
	}

	var paramsBytes []byte
	var paramsCodec uint64 = blocks.CodecDagCBOR
	if paramsBlock != blocks.NoData {
		b, err := d.registry.Get(paramsBlock)
		if err != nil {
			return 0, 0, err
		}
		paramsBytes = b.Data
		paramsCodec = b.Codec
	}

	fromAddr := address.NewID(d.ctx.ActorID)
	exitCode, retBytes, err := d.backend.Send(fromAddr, to, method, paramsBytes, paramsCodec, value, gasSubLimit, d.ctx.ReadOnly)
	if err != nil {
		return 0, 0, err
	}
	if len(retBytes) == 0 {
		return exitCode, blocks.NoData, nil
	}
	retHandle, err := d.registry.Put(paramsCodec, retBytes)
	if err != nil {
		return 0, 0, err
	}
	return exitCode, retHandle, nil
}
