package kernel

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
)

func (d *Default) ResolveAddress(addr address.Address) (uint64, bool, error) {
	if err := d.chargeOrAbort(d.pricelist.OnActorLookup()); err != nil {
		return 0, false, err
	}
	id, found, err := d.backend.ResolveAddress(addr)
	return id, found, err
}

func (d *Default) GetActorCode(addr address.Address) (cid.Cid, bool, error) {
	id, found, err := d.backend.ResolveAddress(addr)
	if err != nil || !found {
		return cid.Undef, false, err
	}
	code, ok, err := d.backend.GetActorCode(id)
	return code, ok, err
}

func (d *Default) LookupDelegatedAddress(id uint64) (*address.Address, error) {
	return d.backend.LookupDelegatedAddress(id)
}

// NextActorAddress is deterministic from origin, origin-nonce, and the
// call-stack actor-creation index; the actual derivation lives in
// callmgr.Manager since it needs visibility across the whole call tree.
func (d *Default) NextActorAddress() address.Address {
	return d.backend.NextActorAddress()
}

// CreateActor requires the caller be the init actor (or policy-equivalent);
// delegated is forbidden unless the target code is account-capable.
func (d *Default) CreateActor(id uint64, codeID cid.Cid, delegated *address.Address) error {
	if d.ctx.ReadOnly {
		return fvmerr.NewSyscallError(fvmerr.Forbidden, "create_actor forbidden in read-only context")
	}
	if !d.backend.IsInitActor(d.ctx.ActorID) {
		return fvmerr.NewSyscallError(fvmerr.Forbidden, "create_actor restricted to the init actor")
	}
	if err := d.chargeOrAbort(d.pricelist.OnCreateActor(true)); err != nil {
		return err
	}
	return d.backend.CreateActor(id, codeID, delegated)
}
