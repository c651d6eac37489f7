// Package externstest provides deterministic test doubles for the Glue
// interfaces, used by executor and kernel tests in place of a real chain
// node.
package externstest

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/externs"
)

// Fake implements externs.Externs deterministically: randomness is a hash
// of its inputs (not a real beacon), circulating supply and lookback are
// configurable constants, and no consensus faults are ever reported unless
// explicitly queued.
type Fake struct {
	CircSupplyValue abi.TokenAmount
	LookbackRoot    cid.Cid
	QueuedFault     *externs.ConsensusFault
}

func NewFake() *Fake {
	return &Fake{CircSupplyValue: abi.NewTokenAmountFromUint64(0)}
}

func (f *Fake) GetChainRandomness(pers int64, epoch int64, entropy []byte) ([32]byte, error) {
	return deterministicRandomness("chain", pers, epoch, entropy), nil
}

func (f *Fake) GetBeaconRandomness(pers int64, epoch int64, entropy []byte) ([32]byte, error) {
	return deterministicRandomness("beacon", pers, epoch, entropy), nil
}

func deterministicRandomness(domain string, pers int64, epoch int64, entropy []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(pers))
	binary.BigEndian.PutUint64(buf[8:], uint64(epoch))
	h.Write(buf[:])
	h.Write(entropy)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (f *Fake) VerifyConsensusFault(h1, h2, extra []byte) (*externs.ConsensusFault, error) {
	return f.QueuedFault, nil
}

func (f *Fake) GetCircSupply(epoch int64, stateRoot cid.Cid) (abi.TokenAmount, error) {
	return f.CircSupplyValue, nil
}

func (f *Fake) StateLookback(epoch int64) (cid.Cid, error) {
	return f.LookbackRoot, nil
}

var _ externs.Externs = (*Fake)(nil)
