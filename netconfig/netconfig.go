// Package netconfig holds network-version-keyed policy tables: the
// self-destruct burn rule, address auto-creation rules, the gas/fuel ratio,
// and size limits. Grounded on params/config_arbitrum.go's ArbosVersion_*
// constants and ChainConfig.IsArbitrumNitro()-style version gating,
// generalized from "is this fork active" to "which policy row applies".
// Kept as a standalone table rather than inlined into executor/kernel
// control flow, per spec.md §9's explicit instruction.
package netconfig

// Version is the network version a message executes under. Higher values
// are later in time; policy lookups pick the highest table row whose
// version is <= the message's version.
type Version uint64

const (
	Version0 Version = iota
	Version1
	Version2
	Version3
	Version4
	Version5
	Version6
	Version7
	Version8
	Version9
	Version10
	Version11
	Version12
	Version13
	Version14
	Version15
	Version16
	Version17
	Version18
)

// AutoCreatePolicy describes which address protocols the executor may
// auto-create an actor for on first-touch value transfer.
type AutoCreatePolicy struct {
	AllowSecpBLS      bool
	AllowDelegated    bool
	AllowEmbryoOnSend bool
}

// Limits are the size ceilings validated at the syscall boundary; spec.md
// §9 explicitly calls these parameters rather than fixed constants, since
// they have drifted across real network versions.
type Limits struct {
	MaxBlockSize   int
	MaxCIDLength   int
	MaxCallDepth   int
	BlockHandleCap int32
}

// Policy is the full set of version-gated knobs consulted outside the price
// list (the price list itself is selected separately, see gas.PriceListByVersion).
type Policy struct {
	Version Version

	// SelfDestructBurnAllowed resolves spec.md §9's first open question:
	// whether self_destruct(burn_funds=true) is permitted to remove
	// residual balance. Decided here (DESIGN.md "Open Question decisions"):
	// forbidden below Version7, permitted at/after.
	SelfDestructBurnAllowed bool

	AutoCreate AutoCreatePolicy
	Limits     Limits

	// FuelPerGas is the sandbox's fuel-to-gas ratio (§9 "Gas <-> Wasm
	// fuel"): one unit of gas corresponds to this many fuel units consumed
	// by the embedded Wasm metering between syscall checkpoints.
	FuelPerGas uint64
}

// defaultLimits apply across all versions in this implementation; spec.md
// leaves them as implementation choices ("implementations may pick
// smaller"/"may drift"), so one conservative table suffices without a
// separate row for every version.
var defaultLimits = Limits{
	MaxBlockSize:   1 << 20, // 1 MiB
	MaxCIDLength:   100,
	MaxCallDepth:   1024,
	BlockHandleCap: 1 << 20,
}

// PolicyForVersion returns the policy in effect at nv. Table lookup
// mirrors ChainConfig's family of IsXxx(blockNumber) version gates: a
// handful of named boundaries, not a row per version.
func PolicyForVersion(nv Version) Policy {
	p := Policy{
		Version:   nv,
		Limits:    defaultLimits,
		FuelPerGas: 10,
	}

	switch {
	case nv < Version7:
		p.SelfDestructBurnAllowed = false
		p.AutoCreate = AutoCreatePolicy{AllowSecpBLS: true}
	case nv < Version18:
		p.SelfDestructBurnAllowed = true
		p.AutoCreate = AutoCreatePolicy{AllowSecpBLS: true, AllowDelegated: true}
	default:
		p.SelfDestructBurnAllowed = true
		p.AutoCreate = AutoCreatePolicy{AllowSecpBLS: true, AllowDelegated: true, AllowEmbryoOnSend: true}
	}
	return p
}
