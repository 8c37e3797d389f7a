// Package backup exports the whole store as a versioned JSON snapshot and
// restores one.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rcliao/lovejourney/internal/clock"
	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/store"
)

// FormatVersion is the snapshot version written by Export and accepted by
// Import.
const FormatVersion = 1

// timestampLayout matches ISO-8601 with milliseconds in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Snapshot is the portable backup document.
type Snapshot struct {
	Version   int           `json:"version"`
	Timestamp string        `json:"timestamp"`
	Data      *SnapshotData `json:"data"`
}

// SnapshotData holds every record of the store.
type SnapshotData struct {
	Settings *model.Settings `json:"settings"`
	Memories []model.Memory  `json:"memories"`
	Plans    []model.Plan    `json:"plans"`
}

// Summary reports what an import restored.
type Summary struct {
	Settings bool `json:"settings"`
	Memories int  `json:"memories"`
	Plans    int  `json:"plans"`
}

// Store is the part of store.Store the codec needs.
type Store interface {
	Snapshot(ctx context.Context) (*store.Dataset, error)
	Replace(ctx context.Context, d store.Dataset) error
}

// Codec moves snapshots in and out of a store.
type Codec struct {
	store Store
	clock clock.Clock
	log   *slog.Logger
}

// New returns a Codec. A nil clock uses the system clock and a nil logger
// uses slog.Default().
func New(s Store, clk clock.Clock, log *slog.Logger) *Codec {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Codec{store: s, clock: clk, log: log.With("component", "backup")}
}

// Export reads the store into a Snapshot stamped with the current time.
func (c *Codec) Export(ctx context.Context) (*Snapshot, error) {
	ds, err := c.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	data := &SnapshotData{
		Settings: ds.Settings,
		Memories: ds.Memories,
		Plans:    ds.Plans,
	}
	if data.Memories == nil {
		data.Memories = []model.Memory{}
	}
	if data.Plans == nil {
		data.Plans = []model.Plan{}
	}

	c.log.Debug("exported", "memories", len(data.Memories), "plans", len(data.Plans))
	return &Snapshot{
		Version:   FormatVersion,
		Timestamp: c.clock.Now().UTC().Format(timestampLayout),
		Data:      data,
	}, nil
}

// Import validates snap and then replaces the store content with it. A
// snapshot that fails validation leaves the store untouched.
func (c *Codec) Import(ctx context.Context, snap *Snapshot) (*Summary, error) {
	if err := Validate(snap); err != nil {
		return nil, err
	}

	ds := store.Dataset{
		Settings: snap.Data.Settings,
		Memories: snap.Data.Memories,
		Plans:    snap.Data.Plans,
	}
	if err := c.store.Replace(ctx, ds); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	sum := &Summary{
		Settings: ds.Settings != nil,
		Memories: len(ds.Memories),
		Plans:    len(ds.Plans),
	}
	c.log.Info("imported", "settings", sum.Settings, "memories", sum.Memories, "plans", sum.Plans)
	return sum, nil
}

// ImportJSON decodes a snapshot from r and imports it.
func (c *Codec) ImportJSON(ctx context.Context, r io.Reader) (*Summary, error) {
	snap, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return c.Import(ctx, snap)
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Decode parses and validates a snapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, invalid("malformed JSON: %v", err)
	}
	if err := Validate(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// FileName is the suggested file name for a backup taken at t.
func FileName(t time.Time) string {
	return "lovejourney_backup_" + t.Format("2006-01-02") + ".json"
}
