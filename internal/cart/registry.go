package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// Registry owns the single Store of every live session. It is constructed
// once at startup and handed to whoever needs a cart.
type Registry struct {
	mu      sync.Mutex
	backend Backend
	stores  map[string]*registryEntry
	idleTTL time.Duration
	now     func() time.Time
	shared  bool
	opts    []Option
	rec     Recorder
	logg    *logger.Logger
}

type registryEntry struct {
	ready    chan struct{}
	store    *Store
	lastSeen time.Time
}

// RegistryConfig tunes session lifetime.
type RegistryConfig struct {
	// IdleTTL is how long an untouched session stays in memory. Zero keeps
	// sessions forever.
	IdleTTL time.Duration
	// SharedBackend is set when other instances write the same backend.
	// Stores then reload the snapshot before each mutation and on cache
	// hits, so one instance never overwrites lines another one added.
	SharedBackend bool
}

// NewRegistry builds a registry persisting through backend. A nil backend
// keeps carts in memory only.
func NewRegistry(backend Backend, cfg RegistryConfig, opts ...Option) *Registry {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	built := buildOptions(opts)
	storeOpts := append(append([]Option{}, opts...), withBackendName(backend.Name()))
	if cfg.SharedBackend {
		storeOpts = append(storeOpts, WithSharedSnapshot())
	}
	return &Registry{
		backend: backend,
		stores:  map[string]*registryEntry{},
		idleTTL: cfg.IdleTTL,
		now:     time.Now,
		shared:  cfg.SharedBackend,
		opts:    storeOpts,
		rec:     built.metrics,
		logg:    built.logg,
	}
}

// Backend exposes the snapshot backend, e.g. for readiness checks.
func (r *Registry) Backend() Backend {
	return r.backend
}

// Get returns the store for sessionID, rehydrating it on first access.
// Concurrent first accesses share one rehydration. With a shared backend a
// cached store is refreshed before it is returned.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id is required")
	}

	r.mu.Lock()
	if entry, ok := r.stores[id]; ok {
		entry.lastSeen = r.now()
		r.mu.Unlock()
		<-entry.ready
		if r.shared {
			entry.store.Refresh(ctx)
		}
		return entry.store, nil
	}
	entry := &registryEntry{ready: make(chan struct{}), lastSeen: r.now()}
	r.stores[id] = entry
	live := len(r.stores)
	r.mu.Unlock()

	r.rec.SetLiveSessions(live)
	entry.store = Open(context.WithoutCancel(ctx), Bind(r.backend, id), r.opts...)
	close(entry.ready)
	return entry.store, nil
}

// Len reports the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep evicts sessions idle since before now-IdleTTL and returns how many
// were dropped. Persisted snapshots are kept and rehydrated on next access.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	evicted := 0
	for id, entry := range r.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(r.stores, id)
			evicted++
		}
	}
	live := len(r.stores)
	r.mu.Unlock()

	if evicted > 0 {
		r.rec.SetLiveSessions(live)
	}
	return evicted
}

// Run sweeps idle sessions and purges expired snapshots every interval
// until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
			r.purge(ctx)
		}
	}
}

type expiringBackend interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func (r *Registry) purge(ctx context.Context) {
	p, ok := r.backend.(expiringBackend)
	if !ok {
		return
	}
	if _, err := p.PurgeExpired(ctx); err != nil {
		r.logg.WarnErr(ctx, "cart.purge_failed", err)
	}
}
