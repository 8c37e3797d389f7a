package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rcliao/lovejourney/internal/model"
)

// Snapshot returns every record in the store, read under one consistent
// view.
func (d *DB) Snapshot(ctx context.Context) (*Dataset, error) {
	release, err := d.acquire("")
	if err != nil {
		return nil, unavailable("snapshot", err)
	}
	defer release()

	ds := &Dataset{}
	body, err := d.b.get(ctx, CollectionSettings, model.SettingsID)
	if err != nil {
		return nil, unavailable("snapshot", err)
	}
	if body != nil {
		var s model.Settings
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		ds.Settings = &s
	}
	if ds.Memories, err = d.memories(ctx); err != nil {
		return nil, err
	}
	if ds.Plans, err = d.plans(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

// Replace empties the store and inserts ds: settings first, then memories,
// then plans, each keeping its id. The backend runs it as one transaction
// under the exclusive lock, so an interrupted restore leaves the previous
// content in place.
func (d *DB) Replace(ctx context.Context, ds Dataset) error {
	data := make(map[Collection][]record, len(Collections))

	if ds.Settings != nil {
		body, err := json.Marshal(*ds.Settings)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		data[CollectionSettings] = []record{{ID: model.SettingsID, Body: body}}
	}
	for _, m := range ds.Memories {
		if err := m.Validate(); err != nil {
			return err
		}
		body, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode memory %s: %w", m.ID, err)
		}
		data[CollectionMemories] = append(data[CollectionMemories], record{ID: m.ID, Body: body})
	}
	for _, p := range ds.Plans {
		if err := p.Validate(); err != nil {
			return err
		}
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode plan %s: %w", p.ID, err)
		}
		data[CollectionPlans] = append(data[CollectionPlans], record{ID: p.ID, Body: body})
	}

	release, err := d.exclusive()
	if err != nil {
		return unavailable("replace", err)
	}
	defer release()

	if err := d.b.replace(ctx, data); err != nil {
		return unavailable("replace", err)
	}
	d.log.Info("store replaced",
		"settings", ds.Settings != nil,
		"memories", len(ds.Memories),
		"plans", len(ds.Plans))
	return nil
}
