// Package events implements the Event Sink: it accumulates structured
// events per frame, discards those of reverted frames, and commits accepted
// ones to a receipt in frame-entry DFS order. Grounded on the teacher's
// per-transaction log buffer (core/state/statedb_arbitrum.go's
// GetCurrentTxLogs over s.logs[s.thash]), generalized from per-transaction
// to per-frame with revert semantics matching the call manager's
// transactional boundary.
package events

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"
)

// Flag bits on an Entry; only Indexed is currently defined.
type Flag uint64

const Indexed Flag = 1 << 0

// Entry is one key/value pair within an emitted event.
type Entry struct {
	Flags Flag
	Key   string // <= 31 bytes, UTF-8
	Codec uint64
	Value []byte
}

const maxKeyBytes = 31

// Event is one emitted, ordered list of entries, tagged with the emitting
// actor for DFS ordering diagnostics.
type Event struct {
	Emitter uint64
	Entries []Entry
}

// Mark is a position in the sink's buffer, used as a revert point.
type Mark int

// Sink accumulates events across an entire message's call tree. Each frame
// stages its events starting at a Mark taken on frame entry; on abort, the
// call manager discards everything staged after that Mark.
type Sink struct {
	events []Event
}

func NewSink() *Sink { return &Sink{} }

// Mark returns the sink's current length, to be passed to Discard on
// abort.
func (s *Sink) Mark() Mark { return Mark(len(s.events)) }

// Emit validates entries per spec.md §4.5.8 and, if valid, appends the
// event. Validation failures are syscall errors (IllegalArgument), not
// fatal — they never unwind the frame by themselves.
func (s *Sink) Emit(emitter uint64, entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if len(e.Key) == 0 || len(e.Key) > maxKeyBytes {
			return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "event key length %d out of range", len(e.Key))
		}
		if !utf8.ValidString(e.Key) {
			return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "event key is not valid UTF-8")
		}
		if seen[e.Key] {
			return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "duplicate event key %q", e.Key)
		}
		seen[e.Key] = true
	}
	s.events = append(s.events, Event{Emitter: emitter, Entries: entries})
	return nil
}

// Discard rolls the sink back to Mark, dropping every event staged since —
// used when the owning frame terminates with a non-zero exit code.
func (s *Sink) Discard(m Mark) {
	s.events = s.events[:m]
}

// All returns every committed event in frame-entry DFS order (the order
// Emit was called in, since nested sends recurse synchronously before their
// parent continues).
func (s *Sink) All() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Sink) Len() int { return len(s.events) }

// Merkleize hashes the committed events into a single root CID, keccak
// over a length-prefixed concatenation — the same hash family
// kernel.Default's hash syscall uses (golang.org/x/crypto/sha3's legacy
// Keccak-256, not stdlib SHA-256). Returns (nil, nil) when there are no
// events, matching spec.md's "events_root?" optionality.
func Merkleize(evts []Event) (*cid.Cid, error) {
	if len(evts) == 0 {
		return nil, nil
	}
	h := sha3.NewLegacyKeccak256()
	for _, e := range evts {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], e.Emitter)
		h.Write(buf[:])
		for _, entry := range e.Entries {
			binary.BigEndian.PutUint64(buf[:], uint64(len(entry.Key)))
			h.Write(buf[:])
			h.Write([]byte(entry.Key))
			binary.BigEndian.PutUint64(buf[:], uint64(len(entry.Value)))
			h.Write(buf[:])
			h.Write(entry.Value)
		}
	}
	sum, err := mh.Encode(h.Sum(nil), mh.KECCAK_256)
	if err != nil {
		return nil, fmt.Errorf("events: hashing root: %w", err)
	}
	root := cid.NewCidV1(blocks.CodecDagCBOR, sum)
	return &root, nil
}
