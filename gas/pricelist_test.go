package gas

import (
	"testing"

	"github.com/filecoin-project/go-fvm-core/netconfig"
	"github.com/stretchr/testify/require"
)

func TestOnChainMessageScalesWithSize(t *testing.T) {
	pl := PriceListByVersion(netconfig.Version0)
	small := pl.OnChainMessage(10)
	large := pl.OnChainMessage(100)
	require.True(t, large.Total() > small.Total())
}

func TestOnCreateActorNewSlotCostsMore(t *testing.T) {
	pl := PriceListByVersion(netconfig.Version0)
	reuse := pl.OnCreateActor(false)
	fresh := pl.OnCreateActor(true)
	require.True(t, fresh.Total() > reuse.Total())
}

func TestPriceListVersionGating(t *testing.T) {
	early := PriceListByVersion(netconfig.Version0)
	late := PriceListByVersion(netconfig.Version16)
	require.True(t, late.OnHashing(32).Total() < early.OnHashing(32).Total())
}
