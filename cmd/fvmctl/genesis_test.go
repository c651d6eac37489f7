package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/builtin"
	"github.com/filecoin-project/go-fvm-core/statetree"
)

func testCID(t *testing.T, seed string) cid.Cid {
	t.Helper()
	sum, err := mh.Sum([]byte(seed), mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(blocks.CodecRaw, sum)
}

func writeTestGenesis(t *testing.T) (string, genesisFile) {
	t.Helper()
	initCode := testCID(t, "init")
	accountCode := testCID(t, "account")

	g := genesisFile{
		Manifest: map[string]string{
			string(builtin.Init):    initCode.String(),
			string(builtin.Account): accountCode.String(),
		},
		Actors: []genesisActor{
			{ID: 1, Code: initCode.String(), Balance: "0"},
			{ID: 100, Code: accountCode.String(), Balance: "5000", Nonce: 3},
		},
		BurnActorID:   2,
		RewardActorID: 3,
		FirstFreeID:   1000,
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, g
}

func TestLoadGenesisParsesActorsAndManifest(t *testing.T) {
	path, want := writeTestGenesis(t)

	g, err := loadGenesis(path)
	require.NoError(t, err)
	require.Len(t, g.Actors, 2)
	require.Equal(t, want.BurnActorID, g.BurnActorID)
	require.Equal(t, want.RewardActorID, g.RewardActorID)
	require.Equal(t, want.FirstFreeID, g.FirstFreeID)
}

func TestLoadGenesisDefaultsFirstFreeID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"manifest":{},"actors":[]}`), 0o644))

	g, err := loadGenesis(path)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), g.FirstFreeID)
}

func TestLoadGenesisMissingFileErrors(t *testing.T) {
	_, err := loadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestBuildManifestResolvesBuiltinNames(t *testing.T) {
	path, _ := writeTestGenesis(t)
	g, err := loadGenesis(path)
	require.NoError(t, err)

	manifest, err := g.buildManifest()
	require.NoError(t, err)

	code, ok := manifest.CodeFor(builtin.Init)
	require.True(t, ok)
	require.True(t, manifest.IsInit(code))
}

func TestSeedPopulatesStateTree(t *testing.T) {
	path, _ := writeTestGenesis(t)
	g, err := loadGenesis(path)
	require.NoError(t, err)

	tree := statetree.NewMemTree(g.FirstFreeID)
	require.NoError(t, g.seed(tree))

	rec, found, err := tree.GetActor(100)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "5000", rec.Balance.String())
	require.Equal(t, uint64(3), rec.Nonce)
}

func TestSeedRejectsMalformedBalance(t *testing.T) {
	code := testCID(t, "whatever")
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	data, err := json.Marshal(genesisFile{
		Actors: []genesisActor{{ID: 1, Code: code.String(), Balance: "not-a-number"}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	g, err := loadGenesis(path)
	require.NoError(t, err)
	require.Error(t, g.seed(statetree.NewMemTree(1000)))
}

func TestParseTokenAmountDefaultsEmptyToZero(t *testing.T) {
	amt, err := parseTokenAmount("")
	require.NoError(t, err)
	require.True(t, amt.IsZero())
}

func TestParseTokenAmountRejectsNonInteger(t *testing.T) {
	_, err := parseTokenAmount("not-a-number")
	require.Error(t, err)
}
