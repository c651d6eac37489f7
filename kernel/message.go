package kernel

import (
	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/netconfig"
)

// message is the capability group of plain accessors onto the frame's
// Context: no gas is charged for reading values the sandbox already
// received as call arguments, mirroring the teacher's EVM.Context fields
// (BlockNumber, Coinbase, ...) being read directly off the struct.

func (d *Default) MethodNumber() uint64 { return d.ctx.Method }

func (d *Default) Caller() uint64 { return d.ctx.Caller }

func (d *Default) Origin() uint64 { return d.ctx.Origin }

func (d *Default) Receiver() uint64 { return d.ctx.ActorID }

func (d *Default) ValueReceived() abi.TokenAmount { return d.ctx.ValueReceived }

func (d *Default) Nonce() uint64 { return d.ctx.Nonce }

func (d *Default) NetworkVersion() netconfig.Version { return d.ctx.NV }

func (d *Default) CurrentEpoch() int64 { return d.ctx.Epoch }

func (d *Default) BaseFee() abi.TokenAmount { return d.ctx.BaseFeeAmt }

func (d *Default) TotalCircSupply() abi.TokenAmount {
	supply, err := d.ext.GetCircSupply(d.ctx.Epoch, d.ctx.CircSupplyRoot)
	if err != nil {
		return abi.Zero()
	}
	return supply
}

func (d *Default) GasAvailable() gas.Gas { return d.tracker.Available() }

func (d *Default) GasLimit() gas.Gas { return d.ctx.GasLimitVal }

func (d *Default) ReadOnly() bool { return d.ctx.ReadOnly }
