package checkout

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/google/uuid"
)

const defaultLockTTL = 30 * time.Second

// Guard admits one checkout per session at a time.
type Guard interface {
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

func errInFlight() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "a checkout for this cart is already in progress")
}

// LocalGuard tracks in-flight checkouts in process memory. It is enough when
// a single instance serves every session.
type LocalGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{inFlight: map[string]struct{}{}}
}

func (g *LocalGuard) Acquire(_ context.Context, sessionID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[sessionID]; busy {
		return nil, errInFlight()
	}
	g.inFlight[sessionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, sessionID)
			g.mu.Unlock()
		})
	}, nil
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutLockKey(sessionID string) string
}

// RedisGuard shares the in-flight marker across instances with SET NX. The
// TTL bounds how long a crashed instance can block a session.
type RedisGuard struct {
	store lockStore
	ttl   time.Duration
}

func NewRedisGuard(store lockStore, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisGuard{store: store, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := g.store.CheckoutLockKey(sessionID)
	token := uuid.NewString()
	ok, err := g.store.SetNX(ctx, key, token, g.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !ok {
		return nil, errInFlight()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			// Only delete the marker this call set; it may have expired and been retaken.
			if current, err := g.store.Get(releaseCtx, key); err == nil && current == token {
				_ = g.store.Del(releaseCtx, key)
			}
		})
	}, nil
}
