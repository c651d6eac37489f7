package netconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyForVersionBeforeVersion7ForbidsSelfDestructBurn(t *testing.T) {
	p := PolicyForVersion(Version0)
	require.False(t, p.SelfDestructBurnAllowed)
	require.True(t, p.AutoCreate.AllowSecpBLS)
	require.False(t, p.AutoCreate.AllowDelegated)
	require.False(t, p.AutoCreate.AllowEmbryoOnSend)

	p = PolicyForVersion(Version6)
	require.False(t, p.SelfDestructBurnAllowed)
}

func TestPolicyForVersionAtVersion7AllowsSelfDestructBurnAndDelegated(t *testing.T) {
	p := PolicyForVersion(Version7)
	require.True(t, p.SelfDestructBurnAllowed)
	require.True(t, p.AutoCreate.AllowSecpBLS)
	require.True(t, p.AutoCreate.AllowDelegated)
	require.False(t, p.AutoCreate.AllowEmbryoOnSend)

	p = PolicyForVersion(Version17)
	require.True(t, p.SelfDestructBurnAllowed)
	require.False(t, p.AutoCreate.AllowEmbryoOnSend)
}

func TestPolicyForVersionAtVersion18AllowsEmbryoOnSend(t *testing.T) {
	p := PolicyForVersion(Version18)
	require.True(t, p.SelfDestructBurnAllowed)
	require.True(t, p.AutoCreate.AllowDelegated)
	require.True(t, p.AutoCreate.AllowEmbryoOnSend)
}

func TestPolicyForVersionSharesDefaultLimitsAndFuelRatioAcrossVersions(t *testing.T) {
	low := PolicyForVersion(Version0)
	high := PolicyForVersion(Version18)
	require.Equal(t, defaultLimits, low.Limits)
	require.Equal(t, defaultLimits, high.Limits)
	require.Equal(t, uint64(10), low.FuelPerGas)
	require.Equal(t, uint64(10), high.FuelPerGas)
}

func TestPolicyForVersionRecordsRequestedVersion(t *testing.T) {
	p := PolicyForVersion(Version12)
	require.Equal(t, Version12, p.Version)
}
