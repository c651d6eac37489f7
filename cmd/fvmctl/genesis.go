package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/abi"
	"github.com/filecoin-project/go-fvm-core/builtin"
	"github.com/filecoin-project/go-fvm-core/statetree"
	"github.com/filecoin-project/go-fvm-core/types"
)

// genesisActor is one seed actor entry in a genesis file: everything
// statetree.Tree.SetActor needs, in a JSON-friendly shape.
type genesisActor struct {
	ID      uint64 `json:"id"`
	Code    string `json:"code"`    // code CID string
	Balance string `json:"balance"` // base-10 attoFIL
	Nonce   uint64 `json:"nonce"`
}

// genesisFile is the fvmctl-specific seed-state description: the builtin
// manifest's name->CID table, plus a flat actor list. Not a consensus wire
// format — purely a convenience for driving one message through Apply.
type genesisFile struct {
	Manifest      map[string]string `json:"manifest"` // builtin.Name -> CID string
	Actors        []genesisActor    `json:"actors"`
	BurnActorID   uint64            `json:"burnActorId"`
	RewardActorID uint64            `json:"rewardActorId"`
	FirstFreeID   uint64            `json:"firstFreeId"`
}

func loadGenesis(path string) (*genesisFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genesis file: %w", err)
	}
	defer f.Close()

	var g genesisFile
	if err := json.NewDecoder(f).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode genesis file %q: %w", path, err)
	}
	if g.FirstFreeID == 0 {
		g.FirstFreeID = 1000
	}
	return &g, nil
}

func (g *genesisFile) buildManifest() (*builtin.Manifest, error) {
	entries := make(map[builtin.Name]cid.Cid, len(g.Manifest))
	for name, s := range g.Manifest {
		c, err := cid.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %q: %w", name, err)
		}
		entries[builtin.Name(name)] = c
	}
	return builtin.NewManifest(entries), nil
}

func (g *genesisFile) seed(tree statetree.Tree) error {
	for _, a := range g.Actors {
		code, err := cid.Decode(a.Code)
		if err != nil {
			return fmt.Errorf("actor %d code %q: %w", a.ID, a.Code, err)
		}
		balance, err := parseTokenAmount(a.Balance)
		if err != nil {
			return fmt.Errorf("actor %d balance %q: %w", a.ID, a.Balance, err)
		}
		if err := tree.SetActor(a.ID, types.ActorRecord{
			CodeID:  code,
			Balance: balance,
			Nonce:   a.Nonce,
		}); err != nil {
			return fmt.Errorf("seed actor %d: %w", a.ID, err)
		}
	}
	return nil
}

func parseTokenAmount(s string) (abi.TokenAmount, error) {
	if s == "" {
		s = "0"
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return abi.TokenAmount{}, fmt.Errorf("not a base-10 integer: %q", s)
	}
	return abi.NewTokenAmount(n)
}
