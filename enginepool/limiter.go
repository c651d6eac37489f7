// Package enginepool implements the Execution Limiter and the Engine/Module
// Cache: a process-wide concurrency gate and compiled-Wasm-module cache
// shared across concurrently executing messages. Grounded on the Stylus
// WASM-activation-and-cache machinery in core/state/statedb_arbitrum.go
// (ActivatedWasm, RecentWasms, ActivateWasm/GetActivatedModule) and on
// fvm/src/engine/instance_pool.rs / shared_resource_limiter.rs
// (original_source), generalized from "per-block recently-used WASM cache"
// into the spec's process-wide compile cache keyed by code CID plus a
// standalone concurrency/memory gate.
package enginepool

import (
	"fmt"
	"sync"
)

// Limiter is the shared mutable gauge protected by a mutex+condvar
// (spec.md §4.3). It enforces per-instance and per-message memory/instance
// ceilings across concurrent executions sharing a compiler cache, and
// implements the lock-holder rule from §5: whenever any shared resource
// drops below the reservation required to finish one message, the holder
// that took the last unit becomes the pool's exclusive user until it
// returns enough to clear the threshold again.
type Limiter struct {
	mu   sync.Mutex
	cond *sync.Cond

	perInstanceBytes int64
	perMessageBytes  int64
	instanceSlots    int64

	remainingBytes int64
	remainingSlots int64

	exclusiveHolder int64 // engine id holding exclusivity, 0 = none
}

// NewLimiter builds a limiter with the given ceilings.
func NewLimiter(perInstanceBytes, perMessageBytes, instanceSlots int64) *Limiter {
	l := &Limiter{
		perInstanceBytes: perInstanceBytes,
		perMessageBytes:  perMessageBytes,
		instanceSlots:    instanceSlots,
		remainingBytes:   instanceSlots * perInstanceBytes,
		remainingSlots:   instanceSlots,
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Reservation is resources held by one engine; Release returns them.
type Reservation struct {
	engineID int64
	bytes    int64
	slots    int64
	l        *Limiter
}

// Reserve blocks while another engine holds exclusivity, or while the pool
// has fewer than `bytes` of memory or `slots` instance slots left. Once
// granted, if the grant left the pool below the per-message floor, the
// caller becomes the exclusive lock-holder and every other engine waits
// until it releases enough to clear the floor again. An over-reservation
// (requesting more than the pool could ever grant even when fully free)
// panics: spec.md is explicit that this indicates a broken caller, not a
// recoverable condition.
func (l *Limiter) Reserve(engineID int64, bytes, slots int64) *Reservation {
	if bytes > l.instanceSlots*l.perInstanceBytes || slots > l.instanceSlots {
		panic(fmt.Sprintf("enginepool: engine %d over-reserved %d bytes / %d slots against pool capacity", engineID, bytes, slots))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		if l.exclusiveHolder != 0 && l.exclusiveHolder != engineID {
			l.cond.Wait()
			continue
		}
		wouldRemainBytes := l.remainingBytes - bytes
		wouldRemainSlots := l.remainingSlots - slots
		if wouldRemainBytes < 0 || wouldRemainSlots < 0 {
			l.cond.Wait()
			continue
		}
		l.remainingBytes = wouldRemainBytes
		l.remainingSlots = wouldRemainSlots

		if l.remainingBytes < l.perMessageBytes || l.remainingSlots < 1 {
			// This engine just drove the pool below the single-message
			// floor; it becomes the exclusive holder until it frees
			// enough to clear the threshold again, preventing any other
			// engine from being admitted into a deadlock.
			l.exclusiveHolder = engineID
		}
		return &Reservation{engineID: engineID, bytes: bytes, slots: slots, l: l}
	}
}

// Release returns the reservation's resources and wakes waiters. If this
// release brings the pool back above the per-message floor and the caller
// held exclusivity, exclusivity is cleared.
func (r *Reservation) Release() {
	l := r.l
	l.mu.Lock()
	l.remainingBytes += r.bytes
	l.remainingSlots += r.slots
	if l.exclusiveHolder == r.engineID && l.remainingBytes >= l.perMessageBytes && l.remainingSlots >= 1 {
		l.exclusiveHolder = 0
	}
	l.mu.Unlock()
	l.cond.Broadcast()
}

// GrowMemory consults the limiter for a Wasm memory-grow request; growth is
// refused (not blocked) if the instance's memory would exceed the
// per-instance ceiling. Only that ceiling is checked: the per-message
// ceiling and the memory of the message's other instances are not
// consulted. This is a local check against the configured ceiling, not a
// second blocking reservation.
func (l *Limiter) GrowMemory(currentBytes, growBytes int64) bool {
	return currentBytes+growBytes <= l.perInstanceBytes
}
