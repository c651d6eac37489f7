package blocks

import (
	"testing"

	"github.com/filecoin-project/go-fvm-core/fvmerr"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	r := NewRegistry(16)
	id, err := r.Put(CodecRaw, []byte("hello"))
	require.NoError(t, err)
	require.NotEqual(t, NoData, id)

	b, err := r.Get(id)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b.Data)

	codec, size, err := r.Stat(id)
	require.NoError(t, err)
	require.Equal(t, CodecRaw, codec)
	require.Equal(t, 5, size)
}

func TestPutRejectsDisallowedCodec(t *testing.T) {
	r := NewRegistry(16)
	_, err := r.Put(0x99, []byte("x"))
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalCodec, sysErr.Num)
}

func TestGetInvalidHandle(t *testing.T) {
	r := NewRegistry(16)
	_, err := r.Get(0)
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalHandle, sysErr.Num)

	_, err = r.Get(99)
	require.ErrorAs(t, err, &sysErr)
}

func TestPutRejectsPastCapacity(t *testing.T) {
	r := NewRegistry(1)
	_, err := r.Put(CodecRaw, []byte("a"))
	require.NoError(t, err)
	_, err = r.Put(CodecRaw, []byte("b"))
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.LimitExceeded, sysErr.Num)
}

func TestReadOffsetAtOrPastSizeReturnsNonPositiveRemaining(t *testing.T) {
	r := NewRegistry(16)
	id, _ := r.Put(CodecRaw, []byte("hello"))
	buf := make([]byte, 10)

	remaining, err := r.Read(id, 5, buf)
	require.NoError(t, err)
	require.LessOrEqual(t, remaining, 0)

	remaining, err = r.Read(id, 100, buf)
	require.NoError(t, err)
	require.LessOrEqual(t, remaining, 0)
}

func TestReadShortBufferLeavesPositiveRemaining(t *testing.T) {
	r := NewRegistry(16)
	id, _ := r.Put(CodecRaw, []byte("hello world"))
	buf := make([]byte, 4)
	remaining, err := r.Read(id, 0, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("hell"), buf)
	require.Equal(t, 7, remaining)
}

func TestLinkReturnsCIDCarryingBlockCodec(t *testing.T) {
	r := NewRegistry(16)
	id, err := r.Put(CodecRaw, []byte("content"))
	require.NoError(t, err)

	c, err := r.Link(id, HashBlake2b256, 32)
	require.NoError(t, err)
	require.NotEqual(t, uint64(0), c.Prefix().Codec)
}

func TestLinkRejectsDisallowedHash(t *testing.T) {
	r := NewRegistry(16)
	id, _ := r.Put(CodecRaw, []byte("x"))
	_, err := r.Link(id, 0x1234, 32)
	var sysErr *fvmerr.SyscallError
	require.ErrorAs(t, err, &sysErr)
	require.Equal(t, fvmerr.IllegalCid, sysErr.Num)
}
