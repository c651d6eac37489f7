package enginepool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	waitingEngines = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fvm",
		Subsystem: "enginepool",
		Name:      "waiting_engines",
		Help:      "Number of engines currently blocked waiting for an instance-pool reservation.",
	})
	activeEngines = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fvm",
		Subsystem: "enginepool",
		Name:      "active_engines",
		Help:      "Number of engines currently holding an instance-pool reservation.",
	})
)

func init() {
	prometheus.MustRegister(waitingEngines, activeEngines)
}

// Config parameterizes a Pool; each engine's own instance pool size must be
// at least maxCallDepth plus a small constant slack so a single message can
// always complete (spec.md §9 "Instance pool sizing").
type Config struct {
	PerInstanceBytes int64
	PerMessageBytes  int64
	InstanceSlots    int64
	ModuleCacheSize  int
	MaxCallDepth     int
}

// Pool is the process-wide coordinator: one Limiter gating memory/instance
// reservations, one ModuleCache shared by every engine, and a monotonic
// engine-id counter. Grounded on fvm/src/engine/instance_pool.rs
// (original_source) and on the teacher's acquire/release idiom for scarce
// shared resources.
type Pool struct {
	limiter   *Limiter
	cache     *ModuleCache
	nextID    int64
	cfg       Config
}

// NewPool builds a pool with its own module cache and limiter.
func NewPool(ctx context.Context, cfg Config) (*Pool, error) {
	cache, err := NewModuleCache(ctx, cfg.ModuleCacheSize)
	if err != nil {
		return nil, err
	}
	return &Pool{
		limiter: NewLimiter(cfg.PerInstanceBytes, cfg.PerMessageBytes, cfg.InstanceSlots),
		cache:   cache,
		cfg:     cfg,
	}, nil
}

// Engine is a handle returned by Acquire: a unique monotonic id plus access
// to the shared module cache, bound to one message's execution.
type Engine struct {
	ID    int64
	pool  *Pool
	resv  *Reservation
	mu    sync.Mutex
	instancesInUse int64
}

// Acquire blocks until a slot becomes free (bounded by the configured
// concurrency), reserving enough instance slots for one message to run to
// completion (maxCallDepth of recursion plus slack).
func (p *Pool) Acquire(ctx context.Context) *Engine {
	id := atomic.AddInt64(&p.nextID, 1)
	slotsNeeded := int64(p.cfg.MaxCallDepth) + 4
	bytesNeeded := slotsNeeded * p.cfg.PerInstanceBytes

	waitingEngines.Inc()
	resv := p.limiter.Reserve(id, bytesNeeded, slotsNeeded)
	waitingEngines.Dec()
	activeEngines.Inc()

	return &Engine{ID: id, pool: p, resv: resv}
}

// Release returns the engine's reservation to the pool.
func (e *Engine) Release() {
	e.resv.Release()
	activeEngines.Dec()
}

// ModuleCache exposes the pool's shared compiled-module cache.
func (e *Engine) ModuleCache() *ModuleCache { return e.pool.cache }

// Limiter exposes the pool's shared memory/instance limiter, so per-call
// Wasm memory-grow requests can be checked against it.
func (e *Engine) Limiter() *Limiter { return e.pool.limiter }

// Close releases the pool's module cache (closing the underlying wazero
// runtime and every compiled module).
func (p *Pool) Close(ctx context.Context) error {
	return p.cache.Close(ctx)
}
