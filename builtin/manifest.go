// Package builtin implements the code-CID <-> well-known-actor-name table
// used by externs/the call manager to resolve builtin code IDs. Grounded
// on fvm/src/machine/manifest.rs (original_source); supplements a feature
// the distilled spec mentions only in passing (§1's "the specific built-in
// actors ... the core is indifferent to their business logic" — the core
// still needs to recognize which code_id IS the init/system/account actor
// to special-case CreateActor/auto-creation, even though it never runs
// their logic here).
package builtin

import "github.com/ipfs/go-cid"

// Name identifies a well-known builtin actor kind.
type Name string

const (
	System  Name = "system"
	Init    Name = "init"
	Account Name = "account"
	Cron    Name = "cron"
	Reward  Name = "reward"
	Burnt   Name = "burnt-funds"
	EAM     Name = "eam"
)

// Manifest is an immutable code-CID <-> Name table for one network version.
type Manifest struct {
	byName map[Name]cid.Cid
	byCID  map[string]Name
}

// NewManifest builds a manifest from an explicit name->CID table (supplied
// by the embedding node at machine construction time; this package does
// not hardcode real network CIDs).
func NewManifest(entries map[Name]cid.Cid) *Manifest {
	m := &Manifest{byName: make(map[Name]cid.Cid, len(entries)), byCID: make(map[string]Name, len(entries))}
	for name, c := range entries {
		m.byName[name] = c
		m.byCID[c.KeyString()] = name
	}
	return m
}

func (m *Manifest) CodeFor(name Name) (cid.Cid, bool) {
	c, ok := m.byName[name]
	return c, ok
}

func (m *Manifest) NameFor(code cid.Cid) (Name, bool) {
	n, ok := m.byCID[code.KeyString()]
	return n, ok
}

// IsInit reports whether code is the init actor's code, the sole actor
// permitted to call kernel.CreateActor (spec.md §4.5.3).
func (m *Manifest) IsInit(code cid.Cid) bool {
	n, ok := m.NameFor(code)
	return ok && n == Init
}

// IsAccountCapable reports whether code belongs to an actor kind allowed a
// delegated_address (account and EAM-created actors), per spec.md §4.5.3's
// "delegated_address is forbidden unless the code permits it".
func (m *Manifest) IsAccountCapable(code cid.Cid) bool {
	n, ok := m.NameFor(code)
	return ok && (n == Account || n == EAM)
}
