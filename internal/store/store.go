// Package store persists the settings singleton and the memory and plan
// collections. Two backends are available: SQLite (default) and bbolt.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/lovejourney/internal/model"
)

// Collection names a keyed record collection.
type Collection string

const (
	CollectionSettings Collection = "settings"
	CollectionMemories Collection = "memories"
	CollectionPlans    Collection = "plans"
)

// Collections lists every collection in restore order.
var Collections = []Collection{CollectionSettings, CollectionMemories, CollectionPlans}

// Driver names.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// DefaultOpenTimeout bounds how long Open waits for the medium.
const DefaultOpenTimeout = 5 * time.Second

// Dataset is the full content of a store.
type Dataset struct {
	Settings *model.Settings
	Memories []model.Memory
	Plans    []model.Plan
}

// Store defines the persistence contract used by the rest of the app.
type Store interface {
	// GetSettings returns the settings singleton, or nil when none is saved.
	GetSettings(ctx context.Context) (*model.Settings, error)

	// SaveSettings replaces the settings singleton.
	SaveSettings(ctx context.Context, s model.Settings) error

	// Memories returns every memory in insertion order.
	Memories(ctx context.Context) ([]model.Memory, error)

	// GetMemory returns one memory or ErrRecordNotFound.
	GetMemory(ctx context.Context, id string) (*model.Memory, error)

	// PutMemory inserts or fully replaces a memory by id.
	PutMemory(ctx context.Context, m model.Memory) error

	// DeleteMemory removes a memory. Unknown ids are a no-op.
	DeleteMemory(ctx context.Context, id string) error

	// RemoveMedia drops a media reference from the memory holding it.
	RemoveMedia(ctx context.Context, ref string) (*model.Memory, error)

	// Plans returns every plan in insertion order.
	Plans(ctx context.Context) ([]model.Plan, error)

	// GetPlan returns one plan or ErrRecordNotFound.
	GetPlan(ctx context.Context, id string) (*model.Plan, error)

	// PutPlan inserts or fully replaces a plan by id.
	PutPlan(ctx context.Context, p model.Plan) error

	// DeletePlan removes a plan. Unknown ids are a no-op.
	DeletePlan(ctx context.Context, id string) error

	// ClearAll empties all three collections.
	ClearAll(ctx context.Context) error

	// Snapshot reads every collection under one consistent view.
	Snapshot(ctx context.Context) (*Dataset, error)

	// Replace clears the store and inserts d, as one exclusive step.
	Replace(ctx context.Context, d Dataset) error

	// Close closes the store. Later calls fail with ErrStorageUnavailable.
	Close() error
}

// Options configures Open.
type Options struct {
	Driver      string
	Path        string
	OpenTimeout time.Duration
	Logger      *slog.Logger
}

// Open opens the store at opts.Path with the selected driver. Opening is
// bounded by opts.OpenTimeout; failures are UnavailableErrors.
func Open(ctx context.Context, opts Options) (*DB, error) {
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}

	var open func(ctx context.Context) (backend, error)
	switch opts.Driver {
	case "", DriverSQLite:
		open = func(ctx context.Context) (backend, error) {
			return NewSQLiteStore(ctx, opts.Path, timeout)
		}
	case DriverBolt:
		open = func(ctx context.Context) (backend, error) {
			return NewBoltStore(opts.Path, timeout)
		}
	default:
		return nil, fmt.Errorf("unknown driver %q (valid: sqlite, bolt)", opts.Driver)
	}

	b, err := openWithTimeout(ctx, timeout, open)
	if err != nil {
		return nil, unavailable("open "+opts.Path, err)
	}
	return newDB(b, opts.Path, opts.Logger), nil
}

// openWithTimeout gives up on open after timeout even when the driver itself
// blocks. A backend that finishes opening late is closed.
func openWithTimeout(ctx context.Context, timeout time.Duration, open func(context.Context) (backend, error)) (backend, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		b   backend
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := open(ctx)
		done <- result{b, err}
	}()

	select {
	case r := <-done:
		return r.b, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.b != nil {
				r.b.close()
			}
		}()
		return nil, fmt.Errorf("open timed out after %s: %w", timeout, ctx.Err())
	}
}
