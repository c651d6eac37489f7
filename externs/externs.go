// Package externs defines the consumed Glue interfaces (spec.md §6.3): the
// adapters by which the core obtains data it cannot compute from its own
// state — randomness, consensus fault evidence, circulating supply, and
// historical state. Grounded on fvm/src/externs.rs (original_source).
package externs

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
)

// ConsensusFault is the optional descriptor VerifyConsensusFault returns.
type ConsensusFault struct {
	Target uint64
	Epoch  int64
	Type   uint8
}

// Rand is the randomness extern: 32-byte outputs, bounded lookback.
type Rand interface {
	GetChainRandomness(personalization int64, epoch int64, entropy []byte) ([32]byte, error)
	GetBeaconRandomness(personalization int64, epoch int64, entropy []byte) ([32]byte, error)
}

// Consensus is the consensus-fault extern.
type Consensus interface {
	VerifyConsensusFault(h1, h2, extra []byte) (*ConsensusFault, error)
}

// CircSupply is the circulating-supply extern.
type CircSupply interface {
	GetCircSupply(epoch int64, stateRoot cid.Cid) (abi.TokenAmount, error)
}

// Lookback is the historical-state extern.
type Lookback interface {
	StateLookback(epoch int64) (cid.Cid, error)
}

// Externs bundles the four interfaces the kernel's randomness/crypto/vm
// capability groups delegate to.
type Externs interface {
	Rand
	Consensus
	CircSupply
	Lookback
}
