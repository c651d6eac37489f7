package callmgr

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/builtin"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/filecoin-project/go-fvm-core/types"
)

// ResolveAddress/GetActorCode/LookupDelegatedAddress/NextActorAddress/
// CreateActor/IsInitActor implement the remainder of kernel.Backend beyond
// Send (manager.go): everything a frame's Kernel needs from the call tree
// as a whole rather than its own staged state.

func (m *Manager) ResolveAddress(addr address.Address) (uint64, bool, error) {
	return m.tree.LookupID(addr)
}

func (m *Manager) GetActorCode(id uint64) (cid.Cid, bool, error) {
	rec, ok, err := m.tree.GetActor(id)
	if err != nil || !ok {
		return cid.Undef, ok, err
	}
	return rec.CodeID, true, nil
}

func (m *Manager) LookupDelegatedAddress(id uint64) (*address.Address, error) {
	rec, ok, err := m.tree.GetActor(id)
	if err != nil || !ok {
		return nil, err
	}
	return rec.DelegatedAddress, nil
}

// NextActorAddress derives the predictable f2-style actor address for the
// next actor this message's call tree will create: origin, origin nonce,
// and a monotonic actor-creation index distinguish multiple creations
// within one message.
func (m *Manager) NextActorAddress() address.Address {
	idx := m.stats.NumActorsCreated
	preimage := make([]byte, 0, 24)
	preimage = appendUvarint(preimage, m.origin)
	preimage = appendUvarint(preimage, m.originNonce)
	preimage = appendUvarint(preimage, idx)
	hash := hash20(preimage)
	addr, _ := address.NewActorAddress(hash)
	return addr
}

func (m *Manager) CreateActor(id uint64, codeID cid.Cid, delegated *address.Address) error {
	if _, ok, _ := m.tree.GetActor(id); ok {
		return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "actor %d already exists", id)
	}
	if delegated != nil && !m.manifest.IsAccountCapable(codeID) {
		return fvmerr.NewSyscallError(fvmerr.Forbidden, "delegated address forbidden for code %s", codeID)
	}
	m.stats.recordActorCreated()
	return m.tree.SetActor(id, types.ActorRecord{
		CodeID:           codeID,
		DelegatedAddress: delegated,
	})
}

func (m *Manager) IsInitActor(id uint64) bool {
	rec, ok, err := m.tree.GetActor(id)
	if err != nil || !ok {
		return false
	}
	return m.manifest.IsInit(rec.CodeID)
}

// autoCreate implements spec.md §4.7's "Auto-creation (on first-touch value
// transfer)": Secp256k1/BLS targets get an account actor; Delegated targets
// get a placeholder actor recording the delegated address; ID/Actor
// addresses of a non-existent actor are never auto-created.
func (m *Manager) autoCreate(to address.Address) (uint64, error) {
	switch to.Protocol() {
	case address.Secp256k1, address.BLS:
		if !m.policy.AutoCreate.AllowSecpBLS {
			return 0, fvmerr.NewSyscallError(fvmerr.NotFound, "auto-creation of account actors disabled at this network version")
		}
		id, err := m.tree.RegisterNewAddress(to)
		if err != nil {
			return 0, err
		}
		accountCode, _ := m.manifest.CodeFor(builtin.Account)
		m.stats.recordActorCreated()
		if err := m.tree.SetActor(id, types.ActorRecord{CodeID: accountCode}); err != nil {
			return 0, err
		}
		return id, nil
	case address.Delegated:
		if !m.policy.AutoCreate.AllowDelegated {
			return 0, fvmerr.NewSyscallError(fvmerr.NotFound, "auto-creation of delegated placeholders disabled at this network version")
		}
		id, err := m.tree.RegisterNewAddress(to)
		if err != nil {
			return 0, err
		}
		dst := to
		m.stats.recordActorCreated()
		if err := m.tree.SetActor(id, types.ActorRecord{DelegatedAddress: &dst}); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, fvmerr.NewSyscallError(fvmerr.NotFound, "address %s has no existing actor and cannot be auto-created", to)
	}
}

func appendUvarint(b []byte, v uint64) []byte {
	var buf [10]byte
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	n++
	return append(b, buf[:n]...)
}
