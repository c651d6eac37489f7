package callmgr

import "golang.org/x/crypto/blake2b"

// hash20 derives the 20-byte actor-address payload used by
// NextActorAddress, the same truncated-hash idiom address.NewActorAddress
// expects for its predictable-creation preimage.
func hash20(preimage []byte) []byte {
	sum := blake2b.Sum256(preimage)
	return sum[:20]
}
