package kernel

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/events"
	"github.com/filecoin-project/go-fvm-core/externs"
	"github.com/filecoin-project/go-fvm-core/gas"
	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/filecoin-project/go-fvm-core/statetree"
)

// New constructs a Default scoped to one call-manager frame. stateRoot is
// the calling actor's state root at frame entry, seeding the reachable set
// per spec.md invariant 4(a).
func New(
	ctx Context,
	backend Backend,
	tree statetree.Tree,
	tracker *gas.Tracker,
	pricelist *gas.PriceList,
	ext externs.Externs,
	sink *events.Sink,
	limits netconfig.Limits,
	stateRoot cid.Cid,
	debug bool,
	artifactDir string,
) *Default {
	reachable := make(map[string]bool)
	if stateRoot.Defined() {
		reachable[stateRoot.KeyString()] = true
	}
	return &Default{
		ctx:         ctx,
		backend:     backend,
		tree:        tree,
		registry:    blocks.NewRegistry(limits.BlockHandleCap),
		tracker:     tracker,
		pricelist:   pricelist,
		ext:         ext,
		events:      sink,
		limits:      limits,
		debug:       debug,
		artifactDir: artifactDir,
		reachable:   reachable,
	}
}

// Registry exposes the per-frame block registry so the call manager can
// register the params block before invoking the sandbox.
func (d *Default) Registry() *blocks.Registry { return d.registry }

func (d *Default) chargeOrAbort(charge gas.GasCharge) error {
	return d.tracker.Charge(charge)
}
