package blockstore

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
)

// MemStore is an in-memory Blockstore, used by tests and by
// statetree/memtree's companion fixtures.
type MemStore struct {
	mu     sync.RWMutex
	blocks map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blocks: make(map[string][]byte)}
}

func (m *MemStore) Get(_ context.Context, c cid.Cid) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[c.KeyString()]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (m *MemStore) Has(_ context.Context, c cid.Cid) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocks[c.KeyString()]
	return ok, nil
}

func (m *MemStore) PutKeyed(_ context.Context, c cid.Cid, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blocks[c.KeyString()] = cp
	return nil
}

var _ Blockstore = (*MemStore)(nil)
