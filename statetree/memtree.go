package statetree

import (
	"fmt"
	"sync"

	"github.com/filecoin-project/go-fvm-core/address"
	"github.com/filecoin-project/go-fvm-core/types"
)

// journalEntry records one mutation so Revert can undo it, mirroring the
// teacher's journal/dirties revision-id pattern
// (core/state/statedb_arbitrum.go's s.journal.dirties) generalized from a
// per-opcode EVM journal to a per-actor-mutation one.
type journalEntry struct {
	undo func(*MemTree)
}

// MemTree is an in-memory statetree.Tree keyed by address.Address ->
// ActorID and ActorID -> ActorRecord, snapshotting via a journal of undo
// closures rather than copy-on-write maps, the same tradeoff the teacher
// makes for StateDB.
type MemTree struct {
	mu        sync.Mutex
	actors    map[ActorID]types.ActorRecord
	addrToID  map[string]ActorID
	nextID    ActorID
	journal   []journalEntry
	revisions []int // snapshot token -> journal length at snapshot time
}

// NewMemTree builds an empty tree; firstID is the first actor id handed out
// by RegisterNewAddress (builtin actors conventionally occupy the low ids
// below this).
func NewMemTree(firstID ActorID) *MemTree {
	return &MemTree{
		actors:   make(map[ActorID]types.ActorRecord),
		addrToID: make(map[string]ActorID),
		nextID:   firstID,
	}
}

func (t *MemTree) GetActor(id ActorID) (types.ActorRecord, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.actors[id]
	return rec, ok, nil
}

func (t *MemTree) SetActor(id ActorID, rec types.ActorRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.actors[id]
	t.actors[id] = rec
	t.journal = append(t.journal, journalEntry{undo: func(mt *MemTree) {
		if existed {
			mt.actors[id] = prev
		} else {
			delete(mt.actors, id)
		}
	}})
	return nil
}

func (t *MemTree) DeleteActor(id ActorID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.actors[id]
	if !existed {
		return nil
	}
	delete(t.actors, id)
	t.journal = append(t.journal, journalEntry{undo: func(mt *MemTree) {
		mt.actors[id] = prev
	}})
	return nil
}

// LookupID resolves addr through the registered-address map; an ID-protocol
// address that was never registered resolves to its own id when an actor
// record exists under that id.
func (t *MemTree) LookupID(addr address.Address) (ActorID, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.addrToID[string(addr.Bytes())]
	if !ok && addr.Protocol() == address.ID {
		if raw, err := addr.ID(); err == nil {
			if _, exists := t.actors[raw]; exists {
				return raw, true, nil
			}
		}
	}
	return id, ok, nil
}

func (t *MemTree) RegisterNewAddress(addr address.Address) (ActorID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := string(addr.Bytes())
	if _, exists := t.addrToID[key]; exists {
		return 0, fmt.Errorf("statetree: address already registered")
	}
	id := t.nextID
	t.nextID++
	t.addrToID[key] = id
	t.journal = append(t.journal, journalEntry{undo: func(mt *MemTree) {
		delete(mt.addrToID, key)
		mt.nextID--
	}})
	return id, nil
}

// Snapshot returns a token identifying the current journal length; Revert
// rewinds the journal to that length, undoing every mutation recorded
// since, in reverse order.
func (t *MemTree) Snapshot() SnapshotToken {
	t.mu.Lock()
	defer t.mu.Unlock()
	tok := SnapshotToken(len(t.journal))
	t.revisions = append(t.revisions, len(t.journal))
	return tok
}

func (t *MemTree) Revert(token SnapshotToken) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := int(token)
	if idx < 0 || idx > len(t.journal) {
		return fmt.Errorf("statetree: invalid snapshot token %d", token)
	}
	for i := len(t.journal) - 1; i >= idx; i-- {
		t.journal[i].undo(t)
	}
	t.journal = t.journal[:idx]
	return nil
}

// Flush discards the journal (nothing left to revert past this point) and
// returns a deterministic-looking root placeholder; a real implementation
// outside this repo's scope would content-address the full actor set into
// the blockstore.
func (t *MemTree) Flush() (RootCID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.journal = nil
	return RootCID{Bytes: []byte(fmt.Sprintf("memtree-root-%d-actors", len(t.actors)))}, nil
}

var _ Tree = (*MemTree)(nil)
