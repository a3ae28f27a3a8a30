package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

const defaultPersistTimeout = 2 * time.Second

// Operation names reported to the metrics recorder.
const (
	OpLoad     = "load"
	OpAdd      = "add"
	OpIncrease = "increase"
	OpDecrease = "decrease"
	OpRemove   = "remove"
	OpClear    = "clear"
)

// Recorder receives cart instrumentation events.
type Recorder interface {
	IncMutation(op string)
	IncPersistFailure(backend, op string)
	SetLiveSessions(n int)
}

type nopRecorder struct{}

func (nopRecorder) IncMutation(string)              {}
func (nopRecorder) IncPersistFailure(string, string) {}
func (nopRecorder) SetLiveSessions(int)             {}

type storeOptions struct {
	logg           *logger.Logger
	metrics        Recorder
	backendName    string
	persistTimeout time.Duration
	shared         bool
}

// Option configures a Store or Registry.
type Option func(*storeOptions)

func WithLogger(logg *logger.Logger) Option {
	return func(o *storeOptions) {
		if logg != nil {
			o.logg = logg
		}
	}
}

func WithMetrics(rec Recorder) Option {
	return func(o *storeOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithPersistTimeout bounds each snapshot read or write.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.persistTimeout = d
		}
	}
}

// WithSharedSnapshot marks the snapshotter as written by other processes.
// The store then reloads the snapshot before every mutation and on Refresh.
func WithSharedSnapshot() Option {
	return func(o *storeOptions) {
		o.shared = true
	}
}

func withBackendName(name string) Option {
	return func(o *storeOptions) {
		o.backendName = name
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{
		logg:           logger.Nop(),
		metrics:        nopRecorder{},
		backendName:    "memory",
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Store holds the line items a session intends to buy. Every state change
// is written to the snapshotter before the call returns. Mutations never
// fail: absent keys are no-ops and persistence errors leave the store
// running in memory.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	snap    Snapshotter
	durable bool
	opts    storeOptions
}

// Open builds a store and rehydrates it from snap. A nil snapshotter gives a
// memory-only store.
func Open(ctx context.Context, snap Snapshotter, opts ...Option) *Store {
	s := &Store{
		snap:    snap,
		durable: snap != nil,
		opts:    buildOptions(opts),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	if s.snap == nil {
		return
	}
	if items, ok := s.load(ctx, "cart.rehydrate_failed"); ok {
		s.items = items
	}
}

// refresh replaces the in-memory items with the stored snapshot when the
// snapshotter is shared. A failed read keeps the current items. Callers hold
// s.mu.
func (s *Store) refresh(ctx context.Context) {
	if !s.opts.shared || s.snap == nil {
		return
	}
	if items, ok := s.load(ctx, "cart.refresh_failed"); ok {
		s.items = items
	}
}

// load reads and decodes the snapshot. A missing snapshot is an empty cart;
// any other error reports ok=false.
func (s *Store) load(ctx context.Context, event string) ([]LineItem, bool) {
	ioCtx, cancel := s.ioContext(ctx)
	defer cancel()

	data, err := s.snap.Load(ioCtx)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil, true
		}
		s.opts.metrics.IncPersistFailure(s.opts.backendName, OpLoad)
		s.opts.logg.WarnErr(ctx, event, err)
		return nil, false
	}
	items, dropped := DecodeSnapshot(data)
	if dropped > 0 {
		s.opts.logg.Warn(s.opts.logg.WithField(ctx, "dropped_entries", dropped), "cart.snapshot_entries_dropped")
	}
	return items, true
}

// Refresh reloads a shared snapshot so reads see writes made by other
// processes. It is a no-op for stores that own their snapshot.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
}

// Add puts quantity units of menu in the given size into the cart, merging
// with an existing entry of the same key. Quantities below 1 count as 1 and
// a line never exceeds MaxLineQuantity. Menus without an id or priced outside
// [0, MaxUnitPrice] are ignored.
func (s *Store) Add(ctx context.Context, menu Menu, size string, quantity int) {
	menu.ID = MenuID(strings.TrimSpace(string(menu.ID)))
	if !validMenu(menu) {
		s.opts.logg.Debug(ctx, "cart.add_ignored_invalid_menu")
		return
	}
	quantity = clampQuantity(quantity)
	key := Key{MenuID: menu.ID, Size: normalizeSize(size)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	if i := s.indexOf(key); i >= 0 {
		next := addQuantity(s.items[i].Quantity, quantity)
		if next == s.items[i].Quantity {
			return
		}
		s.items[i].Quantity = next
	} else {
		s.items = append(s.items, LineItem{Menu: menu.clone(), Size: key.Size, Quantity: quantity})
	}
	s.commit(ctx, OpAdd)
}

// Increase adds one unit to the matching entry. A line already at
// MaxLineQuantity is left alone.
func (s *Store) Increase(ctx context.Context, menuID MenuID, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(lookupKey(menuID, size))
	if i < 0 || s.items[i].Quantity >= MaxLineQuantity {
		return
	}
	s.items[i].Quantity++
	s.commit(ctx, OpIncrease)
}

// Decrease removes one unit from the matching entry, dropping the entry
// instead of letting it reach zero.
func (s *Store) Decrease(ctx context.Context, menuID MenuID, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(lookupKey(menuID, size))
	if i < 0 {
		return
	}
	if s.items[i].Quantity <= 1 {
		s.removeAt(i)
	} else {
		s.items[i].Quantity--
	}
	s.commit(ctx, OpDecrease)
}

// Remove drops the matching entry regardless of its quantity.
func (s *Store) Remove(ctx context.Context, menuID MenuID, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(lookupKey(menuID, size))
	if i < 0 {
		return
	}
	s.removeAt(i)
	s.commit(ctx, OpRemove)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit(ctx, OpClear)
}

// Consume takes the submitted lines out of the cart once their order is
// acknowledged. Each matching entry loses the submitted quantity and is
// dropped when nothing is left. Entries added after the order snapshot, and
// units added to a submitted line since, stay in the cart.
func (s *Store) Consume(ctx context.Context, submitted []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	changed := false
	for _, line := range submitted {
		i := s.indexOf(line.Key())
		if i < 0 {
			continue
		}
		changed = true
		if s.items[i].Quantity <= line.Quantity {
			s.removeAt(i)
			continue
		}
		s.items[i].Quantity -= line.Quantity
	}
	if !changed {
		return
	}
	s.commit(ctx, OpClear)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Snapshot is a consistent read of the cart contents.
type Snapshot struct {
	Items    []LineItem
	Quantity int
	Subtotal int64
}

// GrandTotal adds the externally supplied delivery fee to the subtotal.
func (v Snapshot) GrandTotal(deliveryFee int64) int64 {
	return addAmount(v.Subtotal, deliveryFee)
}

// Snapshot returns items and derived totals computed under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:    s.copyItems(),
		Quantity: s.quantity(),
		Subtotal: s.subtotal(),
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Quantity is the total number of units across all entries.
func (s *Store) Quantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantity()
}

// Subtotal is the sum of price times quantity, recomputed on every call.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotal()
}

func (s *Store) GrandTotal(deliveryFee int64) int64 {
	return addAmount(s.Subtotal(), deliveryFee)
}

// Durable reports whether the latest snapshot write succeeded.
func (s *Store) Durable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durable
}

func (s *Store) indexOf(key Key) int {
	for i := range s.items {
		if s.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *Store) copyItems() []LineItem {
	out := make([]LineItem, len(s.items))
	for i := range s.items {
		out[i] = s.items[i].clone()
	}
	return out
}

func (s *Store) quantity() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) subtotal() int64 {
	var total int64
	for _, item := range s.items {
		total = addAmount(total, item.Total())
	}
	return total
}

// commit records the mutation and writes the snapshot. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op string) {
	s.opts.metrics.IncMutation(op)
	if s.snap == nil {
		return
	}

	data, err := EncodeSnapshot(s.items)
	if err == nil {
		ioCtx, cancel := s.ioContext(ctx)
		err = s.snap.Save(ioCtx, data)
		cancel()
	}
	if err != nil {
		s.durable = false
		s.opts.metrics.IncPersistFailure(s.opts.backendName, op)
		fields := map[string]any{"op": op, "backend": s.opts.backendName}
		s.opts.logg.WarnErr(s.opts.logg.WithFields(ctx, fields), "cart.persist_failed", err)
		return
	}
	s.durable = true
}

// ioContext detaches snapshot I/O from request cancellation so a client
// disconnect does not abort a write for a mutation already applied.
func (s *Store) ioContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.persistTimeout)
}

func lookupKey(menuID MenuID, size string) Key {
	return Key{MenuID: MenuID(strings.TrimSpace(string(menuID))), Size: normalizeSize(size)}
}
