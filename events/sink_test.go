package events

import (
	"testing"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestEmitThenDiscardOnRevert(t *testing.T) {
	s := NewSink()
	require.NoError(t, s.Emit(1, []Entry{{Key: "a", Value: []byte("1")}}))
	m := s.Mark()
	require.NoError(t, s.Emit(2, []Entry{{Key: "b", Value: []byte("2")}}))
	require.Equal(t, 2, s.Len())

	s.Discard(m)
	require.Equal(t, 1, s.Len())
	require.Equal(t, uint64(1), s.All()[0].Emitter)
}

func TestEmitRejectsOversizedKey(t *testing.T) {
	s := NewSink()
	longKey := make([]byte, 32)
	err := s.Emit(1, []Entry{{Key: string(longKey), Value: []byte("x")}})
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalArgument, sysErr.Num)
}

func TestEmitRejectsDuplicateKeys(t *testing.T) {
	s := NewSink()
	err := s.Emit(1, []Entry{{Key: "a", Value: []byte("1")}, {Key: "a", Value: []byte("2")}})
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalArgument, sysErr.Num)
}

func TestMerkleizeEmptyIsNil(t *testing.T) {
	root, err := Merkleize(nil)
	require.NoError(t, err)
	require.Nil(t, root)
}

func TestMerkleizeDeterministic(t *testing.T) {
	evts := []Event{{Emitter: 1, Entries: []Entry{{Key: "a", Value: []byte("v")}}}}
	r1, err := Merkleize(evts)
	require.NoError(t, err)
	r2, err := Merkleize(evts)
	require.NoError(t, err)
	require.True(t, r1.Equals(*r2))
}

func TestMerkleizeUsesDagCBORCodec(t *testing.T) {
	evts := []Event{{Emitter: 1, Entries: []Entry{{Key: "a", Value: []byte("v")}}}}
	root, err := Merkleize(evts)
	require.NoError(t, err)
	require.Equal(t, blocks.CodecDagCBOR, root.Prefix().Codec)
}

func TestMerkleizeMultihashIsKeccak256(t *testing.T) {
	evts := []Event{{Emitter: 1, Entries: []Entry{{Key: "a", Value: []byte("v")}}}}
	root, err := Merkleize(evts)
	require.NoError(t, err)

	decoded, err := mh.Decode(root.Hash())
	require.NoError(t, err)
	require.Equal(t, uint64(mh.KECCAK_256), decoded.Code)
}
