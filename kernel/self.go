package kernel

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
)

// Root returns the current state root CID of the calling actor.
func (d *Default) Root() (cid.Cid, error) {
	if d.deleted {
		return cid.Undef, fvmerr.NewSyscallError(fvmerr.IllegalOperation, "actor deleted")
	}
	rec, ok, err := d.tree.GetActor(d.ctx.ActorID)
	if err != nil {
		return cid.Undef, err
	}
	if !ok {
		return cid.Undef, fvmerr.NewSyscallError(fvmerr.NotFound, "actor %d not found", d.ctx.ActorID)
	}
	return rec.StateRoot, nil
}

// SetRoot requires c be in the frame's reachable set and updates the
// staged actor record.
func (d *Default) SetRoot(c cid.Cid) error {
	if d.deleted {
		return fvmerr.NewSyscallError(fvmerr.IllegalOperation, "actor deleted")
	}
	if d.ctx.ReadOnly {
		return fvmerr.NewSyscallError(fvmerr.Forbidden, "set_root forbidden in read-only context")
	}
	if !d.reachable[c.KeyString()] {
		return fvmerr.NewSyscallError(fvmerr.IllegalCid, "cid %s not reachable from this frame", c)
	}
	if err := d.chargeOrAbort(d.pricelist.OnActorUpdate()); err != nil {
		return err
	}
	rec, ok, err := d.tree.GetActor(d.ctx.ActorID)
	if err != nil {
		return err
	}
	if !ok {
		return fvmerr.NewSyscallError(fvmerr.NotFound, "actor %d not found", d.ctx.ActorID)
	}
	rec.StateRoot = c
	return d.tree.SetActor(d.ctx.ActorID, rec)
}

func (d *Default) CurrentBalance() abi.TokenAmount {
	rec, ok, _ := d.tree.GetActor(d.ctx.ActorID)
	if !ok {
		return abi.Zero()
	}
	return rec.Balance
}

// SelfDestruct requires burnFunds when the actor retains a balance, and
// refuses the burn when network policy (Context.BurnAllowed) does not
// permit it. After destruction,
// root/set_root fail with IllegalOperation (modeled as ActorDeleted via the
// same error number, since spec.md treats them as the same family); the
// call is idempotent after destruction.
func (d *Default) SelfDestruct(burnFunds bool) error {
	if d.deleted {
		return nil // idempotent after destruction
	}
	if d.ctx.ReadOnly {
		return fvmerr.NewSyscallError(fvmerr.Forbidden, "self_destruct forbidden in read-only context")
	}
	rec, ok, err := d.tree.GetActor(d.ctx.ActorID)
	if err != nil {
		return err
	}
	if !ok {
		return fvmerr.NewSyscallError(fvmerr.NotFound, "actor %d not found", d.ctx.ActorID)
	}
	if !rec.Balance.IsZero() {
		if !burnFunds {
			return fvmerr.NewSyscallError(fvmerr.IllegalOperation, "actor retains balance; self_destruct requires burn_funds")
		}
		if !d.ctx.BurnAllowed {
			return fvmerr.NewSyscallError(fvmerr.IllegalOperation, "self_destruct burn not permitted at this network version")
		}
		rec.Balance = abi.Zero()
		if err := d.tree.SetActor(d.ctx.ActorID, rec); err != nil {
			return err
		}
	}
	if err := d.tree.DeleteActor(d.ctx.ActorID); err != nil {
		return err
	}
	d.deleted = true
	return nil
}
