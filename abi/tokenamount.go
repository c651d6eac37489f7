// Package abi holds the chain's arbitrary-precision numeric types.
package abi

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNegative is returned by any TokenAmount constructor or mutator that
// would otherwise produce a negative balance.
var ErrNegative = errors.New("abi: token amount must be non-negative")

// ErrInsufficientFunds is returned by Sub when the subtrahend exceeds the
// amount.
var ErrInsufficientFunds = errors.New("abi: insufficient funds")

// TokenAmount wraps big.Int and enforces the non-negative invariant on every
// mutator, mirroring the balance handling go-ethereum does inline with
// *big.Int in its CanTransfer/Transfer pair but centralizing the check here
// so every caller gets it for free.
type TokenAmount struct {
	v *big.Int
}

// NewTokenAmount wraps n; n is copied so callers may reuse their big.Int.
func NewTokenAmount(n *big.Int) (TokenAmount, error) {
	if n.Sign() < 0 {
		return TokenAmount{}, ErrNegative
	}
	return TokenAmount{v: new(big.Int).Set(n)}, nil
}

// NewTokenAmountFromUint64 builds a TokenAmount from a small non-negative
// integer; always succeeds.
func NewTokenAmountFromUint64(n uint64) TokenAmount {
	return TokenAmount{v: new(big.Int).SetUint64(n)}
}

// Zero is the additive identity.
func Zero() TokenAmount { return TokenAmount{v: big.NewInt(0)} }

func (t TokenAmount) bigOrZero() *big.Int {
	if t.v == nil {
		return big.NewInt(0)
	}
	return t.v
}

// Int returns a copy of the underlying big.Int; callers must not mutate the
// receiver's internal value directly since TokenAmount assumes immutability.
func (t TokenAmount) Int() *big.Int {
	return new(big.Int).Set(t.bigOrZero())
}

func (t TokenAmount) IsZero() bool { return t.bigOrZero().Sign() == 0 }

func (t TokenAmount) Cmp(o TokenAmount) int { return t.bigOrZero().Cmp(o.bigOrZero()) }

func (t TokenAmount) GreaterThan(o TokenAmount) bool { return t.Cmp(o) > 0 }
func (t TokenAmount) LessThan(o TokenAmount) bool    { return t.Cmp(o) < 0 }

// Add returns t+o; always succeeds since both operands are non-negative.
func (t TokenAmount) Add(o TokenAmount) TokenAmount {
	return TokenAmount{v: new(big.Int).Add(t.bigOrZero(), o.bigOrZero())}
}

// Sub returns t-o, failing with ErrInsufficientFunds rather than producing a
// negative amount. Callers (the transfer primitive) must check this before
// writing any state, per the non-negative-balance invariant.
func (t TokenAmount) Sub(o TokenAmount) (TokenAmount, error) {
	if t.Cmp(o) < 0 {
		return TokenAmount{}, ErrInsufficientFunds
	}
	return TokenAmount{v: new(big.Int).Sub(t.bigOrZero(), o.bigOrZero())}, nil
}

// MulUint64 returns t * n, n a non-negative scalar (gas price / gas used products
// never need a second arbitrary-precision operand in this system).
func (t TokenAmount) MulUint64(n uint64) TokenAmount {
	return TokenAmount{v: new(big.Int).Mul(t.bigOrZero(), new(big.Int).SetUint64(n))}
}

func (t TokenAmount) String() string { return t.bigOrZero().String() }

// TokenAmount has no MarshalCBOR/UnmarshalCBOR hooks, and this module
// defines no CBOR encoding for types.Message or types.ActorRecord.

// MarshalJSON encodes the amount as a quoted base-10 string, the same
// string-not-number convention go-ethereum's hexutil.Big uses for
// arbitrary-precision values, avoiding float64 precision loss in any tool
// (fvmctl included) that prints a TokenAmount as part of a larger struct.
func (t TokenAmount) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.bigOrZero().String())), nil
}

// UnmarshalJSON accepts the quoted base-10 string MarshalJSON produces.
func (t *TokenAmount) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		s = string(data[1 : len(data)-1])
	} else {
		s = string(data)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("abi: not a base-10 integer: %q", s)
	}
	if n.Sign() < 0 {
		return ErrNegative
	}
	t.v = n
	return nil
}
