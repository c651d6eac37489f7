package gas

import (
	"fmt"
	"sync"
)

// Tracker charges gas, enforces limits including nested sub-limits,
// exposes remaining/used/limit, and records per-charge traces in call
// order. Grounded on the teacher's EVM.callGasTemp/Contract.Gas bookkeeping
// and on arbitrum/multigas.Collector's accumulation pattern.
type Tracker struct {
	mu        sync.Mutex
	limit     Milligas
	available Milligas
	used      Milligas
	trace     []GasCharge
	// parent is set on a sub-tracker created by WithSubLimit; charges made
	// here are mirrored into the parent so the ancestor's used total stays
	// correct even though the child is discarded at scope exit.
	parent *Tracker
}

// NewTracker builds a root tracker with the given whole-gas limit.
func NewTracker(limit Gas) *Tracker {
	return &Tracker{limit: limit.Milli(), available: limit.Milli()}
}

// Charge deducts charge.Total() from remaining. If remaining would go
// negative, it still records the charge in the trace (per spec.md §4.2's
// ordering guarantee), consumes all remaining gas — `used` after an
// OutOfGas charge equals `limit` — and returns an *OutOfGasError.
func (t *Tracker) Charge(charge GasCharge) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chargeLocked(charge)
}

func (t *Tracker) chargeLocked(charge GasCharge) error {
	total := charge.Total()
	t.trace = append(t.trace, charge)
	if total > t.available {
		consumed := t.available
		t.used += consumed
		t.available = 0
		if t.parent != nil {
			t.parent.mirrorCharge(NewGasCharge(charge.Name, 0, consumed))
		}
		return NewOutOfGasError(charge.Name)
	}
	t.available -= total
	t.used += total
	if t.parent != nil {
		// Mirror the real consumption into the parent tracker; the parent
		// was already reserved via WithSubLimit so this can never itself
		// go negative there.
		t.parent.mirrorCharge(charge)
	}
	return nil
}

func (t *Tracker) mirrorCharge(charge GasCharge) {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := charge.Total()
	if total > t.available {
		t.used += t.available
		t.available = 0
		return
	}
	t.available -= total
	t.used += total
}

// ApplyCharges batches a sequence of charges, stopping at (and including)
// the first that runs out of gas.
func (t *Tracker) ApplyCharges(charges ...GasCharge) error {
	for _, c := range charges {
		if err := t.Charge(c); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) Available() Gas {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fromMilli(t.available)
}

func (t *Tracker) Used() Gas {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fromMilli(t.used)
}

func (t *Tracker) Limit() Gas { return fromMilli(t.limit) }

// Trace returns a copy of the charges recorded so far, in call order.
func (t *Tracker) Trace() []GasCharge {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]GasCharge, len(t.trace))
	copy(out, t.trace)
	return out
}

// WithSubLimit runs f under a child tracker whose ceiling is
// min(parent.available, gas); gas consumed in f is mirrored into the
// parent. The child is always discarded on return, even if f failed with
// OutOfGas, per spec.md §4.2.
func (t *Tracker) WithSubLimit(limit Gas, f func(sub *Tracker) error) error {
	t.mu.Lock()
	ceiling := limit.Milli()
	if t.available < ceiling {
		ceiling = t.available
	}
	t.mu.Unlock()

	sub := &Tracker{limit: ceiling, available: ceiling, parent: t}
	return f(sub)
}

// OutOfGasError is returned by Charge/ApplyCharges when a charge cannot be
// fully satisfied.
type OutOfGasError struct {
	Charge string
}

func NewOutOfGasError(charge string) *OutOfGasError {
	return &OutOfGasError{Charge: charge}
}

func (e *OutOfGasError) Error() string {
	return fmt.Sprintf("out of gas during charge %q", e.Charge)
}
