// Package statetree defines the consumed State Tree interface (spec.md
// §6.2): the read/write surface the core uses to look up and update actor
// records, external to this repository's core. Grounded on the teacher's
// wide StateDB interface (core/vm/evm.go) implemented by one concrete type.
package statetree

import (
	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/types"
)

// ActorID is the canonical numeric actor id, the state tree's primary key.
type ActorID = uint64

// SnapshotToken identifies a point the tree can be reverted to.
type SnapshotToken int

// Tree is the state-tree surface the core consumes. Flush returns a
// RootCID, an opaque byte form of the flushed root rather than a cid.Cid,
// so a test double need not construct real CIDs.
type Tree interface {
	GetActor(id ActorID) (types.ActorRecord, bool, error)
	SetActor(id ActorID, rec types.ActorRecord) error
	DeleteActor(id ActorID) error

	LookupID(addr address.Address) (ActorID, bool, error)
	RegisterNewAddress(addr address.Address) (ActorID, error)

	Snapshot() SnapshotToken
	Revert(token SnapshotToken) error
	Flush() (RootCID, error)
}

// RootCID is the content-addressed root of the flushed tree.
type RootCID struct {
	Bytes []byte
}
