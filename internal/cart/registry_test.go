package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
)

func TestRegistryReturnsOneStorePerSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := NewRegistry(nil, RegistryConfig{})

	var wg sync.WaitGroup
	stores := make([]*Store, 20)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := reg.Get(ctx, "sess-a")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(stores); i++ {
		if stores[i] != stores[0] {
			t.Fatalf("expected every view of the session to share one store")
		}
	}
	other, err := reg.Get(ctx, "sess-b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if other == stores[0] {
		t.Fatalf("expected distinct sessions to get distinct stores")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", reg.Len())
	}
}

func TestRegistryRejectsEmptySession(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil, RegistryConfig{})
	_, err := reg.Get(context.Background(), "  ")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegistrySweepKeepsSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend()
	rec := newCountingRecorder()
	reg := NewRegistry(backend, RegistryConfig{IdleTTL: time.Minute}, WithMetrics(rec))
	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return start }

	s, err := reg.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	s.Add(ctx, burger(), "L", 2)
	if rec.live != 1 {
		t.Fatalf("expected live gauge 1, got %d", rec.live)
	}

	if n := reg.Sweep(start.Add(30 * time.Second)); n != 0 {
		t.Fatalf("expected no eviction before idle ttl, got %d", n)
	}
	if n := reg.Sweep(start.Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if reg.Len() != 0 || rec.live != 0 {
		t.Fatalf("expected registry empty after sweep, len=%d live=%d", reg.Len(), rec.live)
	}

	again, err := reg.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again == s {
		t.Fatalf("expected a fresh store after eviction")
	}
	if got := again.Quantity(); got != 2 {
		t.Fatalf("expected rehydrated quantity 2, got %d", got)
	}
}

func TestRegistrySweepDisabledWithoutTTL(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil, RegistryConfig{})
	if _, err := reg.Get(context.Background(), "sess-a"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if n := reg.Sweep(time.Now().Add(24 * time.Hour)); n != 0 {
		t.Fatalf("expected no eviction without idle ttl, got %d", n)
	}
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil, RegistryConfig{IdleTTL: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Run to return after cancel")
	}
}

func TestRegistryPersistFailureLabelsBackend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := newCountingRecorder()
	reg := NewRegistry(failingBackend{}, RegistryConfig{}, WithMetrics(rec))

	s, err := reg.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	s.Add(ctx, burger(), "", 1)

	if rec.failures["failing/add"] != 1 {
		t.Fatalf("expected failure labelled with backend name, got %+v", rec.failures)
	}
}

func TestRegistriesSharingBackendKeepEachOthersLines(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend()
	cfg := RegistryConfig{SharedBackend: true}
	first := NewRegistry(backend, cfg)
	second := NewRegistry(backend, cfg)

	a, err := first.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, err := second.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	a.Add(ctx, burger(), "", 1)
	b.Add(ctx, Menu{ID: "m2", Name: "Tea", Price: 3000}, "", 1)

	if got := Open(ctx, Bind(backend, "sess-a")).Len(); got != 2 {
		t.Fatalf("expected 2 persisted entries, got %d", got)
	}

	again, err := first.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again != a || again.Len() != 2 {
		t.Fatalf("expected cached store refreshed with the other instance's line, got %+v", again.Items())
	}
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }
func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, ErrSnapshotNotFound
}
func (failingBackend) Put(context.Context, string, []byte) error {
	return context.DeadlineExceeded
}
func (failingBackend) Delete(context.Context, string) error { return nil }
func (failingBackend) Ping(context.Context) error           { return nil }
