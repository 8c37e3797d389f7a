package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rcliao/lovejourney/internal/model"
)

// record is one stored row: the record id and its JSON body.
type record struct {
	ID   string
	Body []byte
}

// backend is the raw keyed storage under DB. Implementations run each call
// in a single transaction and return rows in insertion order.
type backend interface {
	get(ctx context.Context, c Collection, id string) ([]byte, error) // nil body when absent
	all(ctx context.Context, c Collection) ([]record, error)
	put(ctx context.Context, c Collection, id string, body []byte) error
	del(ctx context.Context, c Collection, id string) error
	// replace empties every collection and inserts data atomically.
	replace(ctx context.Context, data map[Collection][]record) error
	name() string
	close() error
}

// DB implements Store on top of a backend. Writes are serialised per
// collection; ClearAll, Replace and Close exclude every other operation so
// no reader sees a half-restored store.
type DB struct {
	b    backend
	path string
	log  *slog.Logger

	mu     sync.RWMutex
	closed bool
	writes map[Collection]*sync.Mutex
}

var _ Store = (*DB)(nil)

func newDB(b backend, path string, log *slog.Logger) *DB {
	if log == nil {
		log = slog.Default()
	}
	d := &DB{
		b:      b,
		path:   path,
		log:    log.With("component", "store", "driver", b.name()),
		writes: make(map[Collection]*sync.Mutex, len(Collections)),
	}
	for _, c := range Collections {
		d.writes[c] = &sync.Mutex{}
	}
	return d
}

// Driver returns the backend name.
func (d *DB) Driver() string { return d.b.name() }

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// acquire takes the shared store lock and, for writes, the collection's
// writer lock.
func (d *DB) acquire(write Collection) (func(), error) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return nil, errClosed
	}
	if write == "" {
		return d.mu.RUnlock, nil
	}
	l := d.writes[write]
	l.Lock()
	return func() {
		l.Unlock()
		d.mu.RUnlock()
	}, nil
}

// exclusive takes the store lock for a whole-store rewrite.
func (d *DB) exclusive() (func(), error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, errClosed
	}
	return d.mu.Unlock, nil
}

func (d *DB) GetSettings(ctx context.Context) (*model.Settings, error) {
	release, err := d.acquire("")
	if err != nil {
		return nil, unavailable("get settings", err)
	}
	defer release()

	body, err := d.b.get(ctx, CollectionSettings, model.SettingsID)
	if err != nil {
		return nil, unavailable("get settings", err)
	}
	if body == nil {
		return nil, nil
	}
	var s model.Settings
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

func (d *DB) SaveSettings(ctx context.Context, s model.Settings) error {
	return d.putRecord(ctx, CollectionSettings, model.SettingsID, s)
}

func (d *DB) Memories(ctx context.Context) ([]model.Memory, error) {
	release, err := d.acquire("")
	if err != nil {
		return nil, unavailable("list memories", err)
	}
	defer release()
	return d.memories(ctx)
}

func (d *DB) memories(ctx context.Context) ([]model.Memory, error) {
	rows, err := d.b.all(ctx, CollectionMemories)
	if err != nil {
		return nil, unavailable("list memories", err)
	}
	return decodeRecords[model.Memory](d.log, CollectionMemories, rows), nil
}

func (d *DB) GetMemory(ctx context.Context, id string) (*model.Memory, error) {
	var m model.Memory
	if err := d.getRecord(ctx, CollectionMemories, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *DB) PutMemory(ctx context.Context, m model.Memory) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return d.putRecord(ctx, CollectionMemories, m.ID, m)
}

func (d *DB) DeleteMemory(ctx context.Context, id string) error {
	return d.deleteRecord(ctx, CollectionMemories, id)
}

// RemoveMedia removes ref from the first memory holding it and saves that
// memory. The memory is kept even when its last media reference goes.
func (d *DB) RemoveMedia(ctx context.Context, ref string) (*model.Memory, error) {
	release, err := d.acquire(CollectionMemories)
	if err != nil {
		return nil, unavailable("remove media", err)
	}
	defer release()

	memories, err := d.memories(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range memories {
		if !m.HasMedia(ref) {
			continue
		}
		updated := m.WithoutMedia(ref)
		body, err := json.Marshal(updated)
		if err != nil {
			return nil, fmt.Errorf("encode memory: %w", err)
		}
		if err := d.b.put(ctx, CollectionMemories, updated.ID, body); err != nil {
			return nil, unavailable("remove media", err)
		}
		d.log.Debug("media removed", "memory", updated.ID, "remaining", len(updated.Media()))
		return &updated, nil
	}
	return nil, fmt.Errorf("media %q: %w", ref, ErrRecordNotFound)
}

func (d *DB) Plans(ctx context.Context) ([]model.Plan, error) {
	release, err := d.acquire("")
	if err != nil {
		return nil, unavailable("list plans", err)
	}
	defer release()
	return d.plans(ctx)
}

func (d *DB) plans(ctx context.Context) ([]model.Plan, error) {
	rows, err := d.b.all(ctx, CollectionPlans)
	if err != nil {
		return nil, unavailable("list plans", err)
	}
	return decodeRecords[model.Plan](d.log, CollectionPlans, rows), nil
}

func (d *DB) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	var p model.Plan
	if err := d.getRecord(ctx, CollectionPlans, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DB) PutPlan(ctx context.Context, p model.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.putRecord(ctx, CollectionPlans, p.ID, p)
}

func (d *DB) DeletePlan(ctx context.Context, id string) error {
	return d.deleteRecord(ctx, CollectionPlans, id)
}

func (d *DB) ClearAll(ctx context.Context) error {
	release, err := d.exclusive()
	if err != nil {
		return unavailable("clear", err)
	}
	defer release()

	if err := d.b.replace(ctx, nil); err != nil {
		return unavailable("clear", err)
	}
	d.log.Info("store cleared")
	return nil
}

func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.b.close()
}

func (d *DB) getRecord(ctx context.Context, c Collection, id string, v any) error {
	op := "get " + string(c)
	release, err := d.acquire("")
	if err != nil {
		return unavailable(op, err)
	}
	defer release()

	body, err := d.b.get(ctx, c, id)
	if err != nil {
		return unavailable(op, err)
	}
	if body == nil {
		return fmt.Errorf("%s %s: %w", c, id, ErrRecordNotFound)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s %s: %w", c, id, err)
	}
	return nil
}

func (d *DB) putRecord(ctx context.Context, c Collection, id string, v any) error {
	op := "put " + string(c)
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", c, id, err)
	}
	release, err := d.acquire(c)
	if err != nil {
		return unavailable(op, err)
	}
	defer release()

	if err := d.b.put(ctx, c, id, body); err != nil {
		return unavailable(op, err)
	}
	d.log.Debug("record saved", "collection", c, "id", id)
	return nil
}

func (d *DB) deleteRecord(ctx context.Context, c Collection, id string) error {
	op := "delete " + string(c)
	release, err := d.acquire(c)
	if err != nil {
		return unavailable(op, err)
	}
	defer release()

	if err := d.b.del(ctx, c, id); err != nil {
		return unavailable(op, err)
	}
	d.log.Debug("record deleted", "collection", c, "id", id)
	return nil
}

// decodeRecords skips rows that no longer decode so one corrupt record
// cannot hide the rest of the collection.
func decodeRecords[T any](log *slog.Logger, c Collection, rows []record) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := json.Unmarshal(r.Body, &v); err != nil {
			log.Warn("skipping undecodable record", "collection", c, "id", r.ID, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
