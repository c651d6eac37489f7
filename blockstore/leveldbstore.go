package blockstore

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDBStore is a persistent Blockstore backed by syndtr/goleveldb,
// mirroring the teacher's own historical default chain database. It exists
// only as a concrete Blockstore, not as a consensus-relevant storage
// format — the spec's on-disk blockstore wire format is explicitly out of
// scope.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDBStore opens (or creates) a goleveldb database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Close() error { return s.db.Close() }

func (s *LevelDBStore) Get(_ context.Context, c cid.Cid) ([]byte, error) {
	b, err := s.db.Get(c.Bytes(), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *LevelDBStore) Has(_ context.Context, c cid.Cid) (bool, error) {
	return s.db.Has(c.Bytes(), nil)
}

func (s *LevelDBStore) PutKeyed(_ context.Context, c cid.Cid, data []byte) error {
	return s.db.Put(c.Bytes(), data, nil)
}

var _ Blockstore = (*LevelDBStore)(nil)
