package kernel

import (
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
)

// EmitEvent stages an ActorEvent for this frame; validation (key length,
// UTF-8, duplicate keys) happens inside events.Sink.Emit, not here, so the
// same rules apply uniformly regardless of caller. Forbidden in read-only
// contexts since an emitted event is only durable if the message as a whole
// commits.
func (d *Default) EmitEvent(entries []events.Entry) error {
	if d.ctx.ReadOnly {
		return fvmerr.NewSyscallError(fvmerr.Forbidden, "emit_event forbidden in read-only context")
	}
	keyBytes, valBytes := 0, 0
	for _, e := range entries {
		keyBytes += len(e.Key)
		valBytes += len(e.Value)
	}
	if err := d.chargeOrAbort(d.pricelist.OnEmitEvent(len(entries), keyBytes, valBytes)); err != nil {
		return err
	}
	return d.events.Emit(d.ctx.ActorID, entries)
}
