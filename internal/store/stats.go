package store

import (
	"context"
	"os"
)

// Stats holds store statistics.
type Stats struct {
	Driver         string `json:"driver"`
	DBPath         string `json:"db_path"`
	DBSizeBytes    int64  `json:"db_size_bytes"`
	HasSettings    bool   `json:"has_settings"`
	Memories       int    `json:"memories"`
	MediaRefs      int    `json:"media_refs"`
	Plans          int    `json:"plans"`
	PinnedPlans    int    `json:"pinned_plans"`
	CompletedPlans int    `json:"completed_plans"`
}

// Stats returns record counts and the database file size.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	ds, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Driver:      d.b.name(),
		DBPath:      d.path,
		HasSettings: ds.Settings != nil,
		Memories:    len(ds.Memories),
		Plans:       len(ds.Plans),
	}
	if info, err := os.Stat(d.path); err == nil {
		st.DBSizeBytes = info.Size()
	}
	for _, m := range ds.Memories {
		st.MediaRefs += len(m.Media())
	}
	for _, p := range ds.Plans {
		if p.IsPinned {
			st.PinnedPlans++
		}
		if p.Completed {
			st.CompletedPlans++
		}
	}
	return st, nil
}
