package abi

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTokenAmountRejectsNegative(t *testing.T) {
	_, err := NewTokenAmount(big.NewInt(-1))
	require.ErrorIs(t, err, ErrNegative)
}

func TestSubInsufficientFunds(t *testing.T) {
	a := NewTokenAmountFromUint64(10)
	b := NewTokenAmountFromUint64(11)
	_, err := a.Sub(b)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAddSubRoundTrip(t *testing.T) {
	a := NewTokenAmountFromUint64(100)
	b := NewTokenAmountFromUint64(40)
	sum := a.Add(b)
	require.Equal(t, "140", sum.String())

	back, err := sum.Sub(b)
	require.NoError(t, err)
	require.Equal(t, 0, back.Cmp(a))
}

func TestZeroIsZero(t *testing.T) {
	require.True(t, Zero().IsZero())
	require.False(t, NewTokenAmountFromUint64(1).IsZero())
}

func TestJSONRoundTripsAsQuotedDecimalString(t *testing.T) {
	amount := NewTokenAmountFromUint64(123456789)
	out, err := json.Marshal(amount)
	require.NoError(t, err)
	require.Equal(t, `"123456789"`, string(out))

	var back TokenAmount
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, 0, back.Cmp(amount))
}

func TestJSONUnmarshalRejectsNegativeAndNonInteger(t *testing.T) {
	var t1 TokenAmount
	require.ErrorIs(t, json.Unmarshal([]byte(`"-5"`), &t1), ErrNegative)

	var t2 TokenAmount
	require.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &t2))
}
