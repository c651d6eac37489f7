// Package blockstore defines the consumed Blockstore interface (spec.md
// §6.1) plus two reference implementations: an in-memory store for tests
// and a persistent store over goleveldb, mirroring the teacher's historical
// default database (both goleveldb and pebble appear in the teacher's own
// dependency surface; goleveldb is used here as the simpler of the two real
// engines — see DESIGN.md).
package blockstore

import (
	"context"

	"github.com/ipfs/go-cid"
)

// Blockstore is read-concurrent and write-exclusive per message; it is not
// required to be thread-safe for a single message but must be shareable
// across concurrently executing messages.
type Blockstore interface {
	Get(ctx context.Context, c cid.Cid) ([]byte, error)
	Has(ctx context.Context, c cid.Cid) (bool, error)
	PutKeyed(ctx context.Context, c cid.Cid, data []byte) error
}

// ErrNotFound is returned by Get when the CID is absent.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "blockstore: block not found" }
