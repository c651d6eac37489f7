// Package address implements the Filecoin-style address sum type: a small
// tagged byte string naming one of five address protocols. Only the ID
// protocol is usable directly as a dispatch target; the others must be
// resolved through the state tree's address map before a message can run.
package address

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Protocol tags the address variant, mirroring the leading byte of the
// go-address wire form.
type Protocol byte

const (
	ID Protocol = iota
	Secp256k1
	Actor
	BLS
	Delegated
)

func (p Protocol) String() string {
	switch p {
	case ID:
		return "id"
	case Secp256k1:
		return "secp256k1"
	case Actor:
		return "actor"
	case BLS:
		return "bls"
	case Delegated:
		return "delegated"
	default:
		return fmt.Sprintf("protocol(%d)", byte(p))
	}
}

const (
	payloadHashLength = 20
	blsPublicKeyBytes = 48
	maxSubaddressLen  = 54
)

var (
	ErrInvalidProtocol = errors.New("address: invalid protocol")
	ErrInvalidPayload  = errors.New("address: invalid payload length")
	ErrNotID           = errors.New("address: not an ID address")
)

// Address is an immutable tagged byte string: [protocol][payload]. Equality
// and map-keying work directly on the Go string form (use String() as a map
// key, or compare Addresses with ==) since both fields, the protocol byte
// and the payload string, are comparable.
type Address struct {
	proto   Protocol
	payload string // raw payload bytes, protocol-dependent shape
}

// Undef is the zero value; no protocol is legal with an empty payload, so
// Undef never compares equal to a constructed address.
var Undef = Address{}

func (a Address) Protocol() Protocol { return a.proto }
func (a Address) Payload() []byte    { return []byte(a.payload) }
func (a Address) Empty() bool        { return a == Undef }

// NewID builds an ID-protocol address from a canonical actor id.
func NewID(id uint64) Address {
	buf := make([]byte, 8)
	binary.PutUvarint(buf, id)
	n := binary.PutUvarint(buf, id)
	return Address{proto: ID, payload: string(buf[:n])}
}

// ID returns the numeric actor id for an ID-protocol address.
func (a Address) ID() (uint64, error) {
	if a.proto != ID {
		return 0, ErrNotID
	}
	v, _ := binary.Uvarint([]byte(a.payload))
	return v, nil
}

// NewSecp256k1Address hashes a public key into a Secp256k1-protocol address.
// hash must already be the 20-byte actor hash (blake2b-160 of the pubkey in
// the original system); hashing itself is a kernel/crypto concern, not an
// address-construction concern.
func NewSecp256k1Address(hash []byte) (Address, error) {
	return newHashAddress(Secp256k1, hash)
}

// NewActorAddress builds an Actor-protocol address from a 20-byte hash of
// the actor's predictable-creation preimage.
func NewActorAddress(hash []byte) (Address, error) {
	return newHashAddress(Actor, hash)
}

func newHashAddress(proto Protocol, hash []byte) (Address, error) {
	if len(hash) != payloadHashLength {
		return Undef, fmt.Errorf("%w: want %d bytes got %d", ErrInvalidPayload, payloadHashLength, len(hash))
	}
	buf := make([]byte, payloadHashLength)
	copy(buf, hash)
	return Address{proto: proto, payload: string(buf)}, nil
}

// NewBLSAddress builds a BLS-protocol address from a 48-byte public key.
func NewBLSAddress(pubkey []byte) (Address, error) {
	if len(pubkey) != blsPublicKeyBytes {
		return Undef, fmt.Errorf("%w: want %d bytes got %d", ErrInvalidPayload, blsPublicKeyBytes, len(pubkey))
	}
	buf := make([]byte, blsPublicKeyBytes)
	copy(buf, pubkey)
	return Address{proto: BLS, payload: string(buf)}, nil
}

// NewDelegatedAddress builds a Delegated-protocol (f4) address: a namespace
// actor id plus an arbitrary sub-address of at most 54 bytes.
func NewDelegatedAddress(namespace uint64, subaddr []byte) (Address, error) {
	if len(subaddr) > maxSubaddressLen {
		return Undef, fmt.Errorf("%w: subaddress %d bytes exceeds max %d", ErrInvalidPayload, len(subaddr), maxSubaddressLen)
	}
	buf := make([]byte, 8)
	n := binary.PutUvarint(buf, namespace)
	payload := append(append([]byte{}, buf[:n]...), subaddr...)
	return Address{proto: Delegated, payload: string(payload)}, nil
}

// Namespace returns the namespace actor id of a Delegated address.
func (a Address) Namespace() (uint64, error) {
	if a.proto != Delegated {
		return 0, fmt.Errorf("%w: not delegated", ErrInvalidProtocol)
	}
	v, _ := binary.Uvarint([]byte(a.payload))
	return v, nil
}

// Bytes returns the canonical wire encoding: protocol byte followed by
// payload.
func (a Address) Bytes() []byte {
	if a.Empty() {
		return nil
	}
	out := make([]byte, 1+len(a.payload))
	out[0] = byte(a.proto)
	copy(out[1:], a.payload)
	return out
}

// FromBytes parses the canonical wire encoding produced by Bytes.
func FromBytes(b []byte) (Address, error) {
	if len(b) == 0 {
		return Undef, ErrInvalidPayload
	}
	proto := Protocol(b[0])
	payload := b[1:]
	switch proto {
	case ID:
		if _, n := binary.Uvarint(payload); n <= 0 {
			return Undef, ErrInvalidPayload
		}
		return Address{proto: ID, payload: string(payload)}, nil
	case Secp256k1, Actor:
		return newHashAddress(proto, payload)
	case BLS:
		return NewBLSAddress(payload)
	case Delegated:
		ns, n := binary.Uvarint(payload)
		if n <= 0 {
			return Undef, ErrInvalidPayload
		}
		_ = ns
		return Address{proto: Delegated, payload: string(payload)}, nil
	default:
		return Undef, fmt.Errorf("%w: %d", ErrInvalidProtocol, proto)
	}
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%x", a.proto, []byte(a.payload))
}
