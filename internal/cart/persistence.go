package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrSnapshotNotFound reports that no snapshot has been stored yet.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// Snapshotter loads and saves the serialized snapshot of a single cart.
type Snapshotter interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Backend stores serialized snapshots keyed by session id.
type Backend interface {
	Name() string
	Get(ctx context.Context, sessionID string) ([]byte, error)
	Put(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type boundSnapshotter struct {
	backend   Backend
	sessionID string
}

// Bind adapts a keyed backend into the snapshotter of one session.
func Bind(backend Backend, sessionID string) Snapshotter {
	return &boundSnapshotter{backend: backend, sessionID: sessionID}
}

func (b *boundSnapshotter) Load(ctx context.Context) ([]byte, error) {
	return b.backend.Get(ctx, b.sessionID)
}

func (b *boundSnapshotter) Save(ctx context.Context, data []byte) error {
	return b.backend.Put(ctx, b.sessionID, data)
}

// MemoryBackend keeps snapshots in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string][]byte{}}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(ctx context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[sessionID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryBackend) Put(ctx context.Context, sessionID string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.mu.Lock()
	m.data[sessionID] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.data, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Ping(ctx context.Context) error { return nil }
