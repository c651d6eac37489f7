// Package blocks implements the per-invocation Block Registry: the only way
// actor code refers to IPLD data. Grounded on the teacher's
// AccountRef/ContractRef "small stable handle to something bigger" pattern
// (core/vm) and on the Stylus content-addressed module-storage idiom in
// core/state/statedb_arbitrum.go (ActivateWasm(moduleHash, asm, module) —
// code content keyed by hash, reference-counted, invalidated at scope end).
package blocks

import (
	"fmt"

	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// Handle is a small positive integer naming a block within one invocation.
// Handle 0 is reserved to mean "no data"; handles never escape the
// executor (spec.md invariant 7).
type Handle int32

const NoData Handle = 0

// Codec multicodec values accepted by the registry, mirroring the minimum
// allow-list spec.md §4.4 requires (at least DAG-CBOR and IPLD-RAW).
const (
	CodecDagCBOR uint64 = 0x71
	CodecRaw     uint64 = 0x55
)

// HashAlgo multihash codes accepted by Link, mirroring the blockstore's own
// minimum requirement (§6.1): at least Blake2b-256 and Identity.
const (
	HashBlake2b256 uint64 = mh.BLAKE2B_MIN + 31
	HashIdentity   uint64 = mh.IDENTITY
	HashSHA2_256   uint64 = mh.SHA2_256
)

var allowedCodecs = map[uint64]bool{
	CodecDagCBOR: true,
	CodecRaw:     true,
}

var allowedHashes = map[uint64]bool{
	HashBlake2b256: true,
	HashIdentity:   true,
	HashSHA2_256:   true,
}

// Block is a single (codec, bytes) pair held by the registry.
type Block struct {
	Codec uint64
	Data  []byte
}

// Registry is a per-invocation handle table. It is invalidated when the
// enclosing invocation ends — callers must discard it (and never retain a
// Handle across invocations), per spec.md invariant 7.
type Registry struct {
	cap     int32
	entries []Block // index 0 unused, 1-based handles
}

// NewRegistry builds an empty registry bounded to at most capacity blocks
// (spec.md: "at least i32::MAX but implementations may pick smaller").
func NewRegistry(capacity int32) *Registry {
	return &Registry{cap: capacity, entries: make([]Block, 1, 8)}
}

// Put stores bytes under codec and returns a new handle. Data is not
// copied on the hot path beyond what the caller already owns — the
// registry takes ownership of the slice, matching "returning a handle does
// not copy" in spec.md.
func (r *Registry) Put(codec uint64, data []byte) (Handle, error) {
	if !allowedCodecs[codec] {
		return 0, fvmerr.NewSyscallError(fvmerr.IllegalCodec, "codec %#x not allowed", codec)
	}
	if int32(len(r.entries)) >= r.cap {
		return 0, fvmerr.NewSyscallError(fvmerr.LimitExceeded, "block registry at capacity %d", r.cap)
	}
	r.entries = append(r.entries, Block{Codec: codec, Data: data})
	return Handle(len(r.entries) - 1), nil
}

// Get returns the block at id.
func (r *Registry) Get(id Handle) (Block, error) {
	if id <= 0 || int(id) >= len(r.entries) {
		return Block{}, fvmerr.NewSyscallError(fvmerr.IllegalHandle, "invalid handle %d", id)
	}
	return r.entries[id], nil
}

// Stat returns (codec, size) for id.
func (r *Registry) Stat(id Handle) (uint64, int, error) {
	b, err := r.Get(id)
	if err != nil {
		return 0, 0, err
	}
	return b.Codec, len(b.Data), nil
}

// Read copies up to len(buf) bytes from offset into buf, returning the
// signed number of bytes remaining after the copy so callers can detect
// short reads (remaining > 0) and overshoot (remaining < 0), per
// spec.md §4.5.2.
func (r *Registry) Read(id Handle, offset int, buf []byte) (int, error) {
	b, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	size := len(b.Data)
	if offset >= size {
		return size - offset, nil
	}
	copy(buf, b.Data[offset:])
	return size - offset - len(buf), nil
}

// Link constructs a CID over the block's bytes using hashFn/hashLen, adding
// the resulting CID to the invocation's reachable set (tracked by the
// caller, typically the kernel). Only an allow-listed set of hash
// algorithms is accepted; length must match the algorithm's native output
// or be a documented truncation of it.
func (r *Registry) Link(id Handle, hashFn uint64, hashLen int) (cid.Cid, error) {
	b, err := r.Get(id)
	if err != nil {
		return cid.Undef, err
	}
	if !allowedHashes[hashFn] {
		return cid.Undef, fvmerr.NewSyscallError(fvmerr.IllegalCid, "hash function %#x not allowed", hashFn)
	}
	sum, err := mh.Sum(b.Data, hashFn, hashLen)
	if err != nil {
		return cid.Undef, fvmerr.NewSyscallError(fvmerr.IllegalCid, "%s", err)
	}
	return cid.NewCidV1(b.Codec, sum), nil
}

// Len reports the number of live handles, for diagnostics only.
func (r *Registry) Len() int { return len(r.entries) - 1 }

func (r *Registry) String() string {
	return fmt.Sprintf("blocks.Registry{len=%d cap=%d}", r.Len(), r.cap)
}
