package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDRoundTrip(t *testing.T) {
	a := NewID(1234)
	id, err := a.ID()
	require.NoError(t, err)
	require.Equal(t, uint64(1234), id)

	b, err := FromBytes(a.Bytes())
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSecp256k1RequiresExactLength(t *testing.T) {
	_, err := NewSecp256k1Address(make([]byte, 19))
	require.ErrorIs(t, err, ErrInvalidPayload)

	a, err := NewSecp256k1Address(make([]byte, 20))
	require.NoError(t, err)
	require.Equal(t, Secp256k1, a.Protocol())
}

func TestBLSRequiresExactLength(t *testing.T) {
	_, err := NewBLSAddress(make([]byte, 47))
	require.ErrorIs(t, err, ErrInvalidPayload)

	a, err := NewBLSAddress(make([]byte, 48))
	require.NoError(t, err)
	require.Equal(t, BLS, a.Protocol())
}

func TestDelegatedSubaddressLimit(t *testing.T) {
	_, err := NewDelegatedAddress(10, make([]byte, 55))
	require.ErrorIs(t, err, ErrInvalidPayload)

	a, err := NewDelegatedAddress(10, make([]byte, 54))
	require.NoError(t, err)
	ns, err := a.Namespace()
	require.NoError(t, err)
	require.Equal(t, uint64(10), ns)
}

func TestUndefIsEmpty(t *testing.T) {
	require.True(t, Undef.Empty())
	require.False(t, NewID(1).Empty())
}

func TestFromBytesRejectsUnknownProtocol(t *testing.T) {
	_, err := FromBytes([]byte{99, 1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidProtocol)
}
