// Package gas implements the price list and gas tracker: the system's sole
// mechanism for bounding actor execution. Grounded on
// core/vm/gas_table.go's per-opcode gasFunc closures and on
// arbitrum/multigas's ResourceKind dimension split, generalized from
// per-opcode EVM gas to the FVM's named priced hooks.
package gas

import "fmt"

// Gas is a whole-gas-unit count; 1 gas = 1000 milligas. The tracker works
// internally in milligas so that sub-unit price-list entries never round
// away meaningful charges.
type Gas int64

// Milligas is the tracker's internal unit.
type Milligas int64

func (g Gas) Milli() Milligas { return Milligas(g) * 1000 }

func fromMilli(m Milligas) Gas {
	if m <= 0 {
		return 0
	}
	return Gas((m + 999) / 1000)
}

// ResourceKind dimensions a GasCharge the way arbitrum/multigas.ResourceKind
// splits EVM gas into Computation/HistoryGrowth/StorageAccess/StorageGrowth;
// here it separates Wasm-fuel-metered compute from host-side deferred work,
// per spec.md §4.1's compute_gas/other_gas split, extended one step further
// for calibration telemetry.
type ResourceKind int

const (
	ResourceCompute ResourceKind = iota
	ResourceStorage
	ResourceHashing
	ResourceNetwork
	numResourceKinds
)

func (r ResourceKind) String() string {
	switch r {
	case ResourceCompute:
		return "compute"
	case ResourceStorage:
		return "storage"
	case ResourceHashing:
		return "hashing"
	case ResourceNetwork:
		return "network"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

// MultiGas breaks a single charge down across resource kinds, summing to the
// charge's total. It exists purely for calibration/telemetry; the tracker
// only ever consults the scalar total.
type MultiGas [numResourceKinds]Milligas

func (m MultiGas) Sum() Milligas {
	var s Milligas
	for _, v := range m {
		s += v
	}
	return s
}

// GasCharge is the result of one priced hook: a name for tracing, a
// compute/other split (spec.md §4.1), and the full resource breakdown
// (ambient extension).
type GasCharge struct {
	Name       string
	ComputeGas Milligas
	OtherGas   Milligas
	Multi      MultiGas
}

// Total is the amount the tracker actually deducts.
func (c GasCharge) Total() Milligas { return c.ComputeGas + c.OtherGas }

// NewGasCharge builds a charge with no resource breakdown recorded; callers
// that care about the breakdown use NewGasChargeMulti.
func NewGasCharge(name string, compute, other Milligas) GasCharge {
	return GasCharge{Name: name, ComputeGas: compute, OtherGas: other}
}

// NewGasChargeMulti additionally records which resource kind the charge
// should be attributed to, for the trace sink's per-dimension breakdown.
func NewGasChargeMulti(name string, compute, other Milligas, kind ResourceKind) GasCharge {
	c := GasCharge{Name: name, ComputeGas: compute, OtherGas: other}
	c.Multi[kind] = c.Total()
	return c
}
