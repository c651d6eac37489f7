package enginepool

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// CompiledModule wraps a wazero-compiled module, keyed by code CID. It is
// shared read-only across every engine once compiled.
type CompiledModule struct {
	CodeID cid.Cid
	mod    wazero.CompiledModule
}

// ModuleCache compiles actor bytecode by code_id and hands out the compiled
// module to every engine, bounded by an LRU of the most recently used
// entries, grounded directly on core/state/statedb_arbitrum.go's
// RecentWasms (a hashicorp/golang-lru/v2-backed bounded hot set over
// activated Wasm modules).
type ModuleCache struct {
	runtime wazero.Runtime
	mu      sync.Mutex
	hot     *lru.Cache[string, *CompiledModule]
}

// NewModuleCache builds a cache backed by a fresh wazero runtime and an LRU
// of at most `size` compiled modules.
func NewModuleCache(ctx context.Context, size int) (*ModuleCache, error) {
	rt := wazero.NewRuntime(ctx)
	hot, err := lru.NewWithEvict[string, *CompiledModule](size, func(_ string, mod *CompiledModule) {
		_ = mod.mod.Close(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("enginepool: building module LRU: %w", err)
	}
	return &ModuleCache{runtime: rt, hot: hot}, nil
}

// GetOrCompile returns the cached compiled module for codeID, compiling
// wasmBytes and inserting it if absent.
func (c *ModuleCache) GetOrCompile(ctx context.Context, codeID cid.Cid, wasmBytes []byte) (*CompiledModule, error) {
	key := codeID.KeyString()

	c.mu.Lock()
	if cached, ok := c.hot.Get(key); ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	compiled, err := c.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("enginepool: compiling module %s: %w", codeID, err)
	}
	entry := &CompiledModule{CodeID: codeID, mod: compiled}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.hot.Get(key); ok {
		_ = compiled.Close(ctx)
		return cached, nil
	}
	c.hot.Add(key, entry)
	return entry, nil
}

// Runtime exposes the underlying wazero runtime for instantiation.
func (c *ModuleCache) Runtime() wazero.Runtime { return c.runtime }

// Instantiate creates a fresh instance of the compiled module, named
// uniquely so wazero allows concurrent instances of the same compiled
// module across engines. The caller owns the returned module and must
// close it when the call frame finishes.
func (cm *CompiledModule) Instantiate(ctx context.Context, rt wazero.Runtime, instanceName string) (api.Module, error) {
	cfg := wazero.NewModuleConfig().WithName(instanceName)
	return rt.InstantiateModule(ctx, cm.mod, cfg)
}

// Close releases every cached module and the underlying runtime.
func (c *ModuleCache) Close(ctx context.Context) error {
	c.mu.Lock()
	c.hot.Purge()
	c.mu.Unlock()
	return c.runtime.Close(ctx)
}

// Evict removes codeID's compiled module from the hot set, grounded on
// RecordEvictWasm's journal-entry-driven eviction in the teacher.
func (c *ModuleCache) Evict(codeID cid.Cid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hot.Remove(codeID.KeyString())
}
