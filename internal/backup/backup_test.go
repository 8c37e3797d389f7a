package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lovejourney/internal/clock"
	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/store"
)

var exportTime = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestCodec(t *testing.T) (*Codec, *store.DB) {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Path: filepath.Join(t.TempDir(), "backup.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, clock.NewFixed(exportTime), nil), s
}

func seed(t *testing.T, s *store.DB) {
	t.Helper()
	ctx := context.Background()
	settings := model.DefaultSettings(time.Date(2022, 3, 8, 0, 0, 0, 0, time.UTC))
	settings.Partners[0].Name = "Minh"
	require.NoError(t, s.SaveSettings(ctx, settings))

	require.NoError(t, s.PutMemory(ctx, model.Memory{ID: "m1", Date: "2023-03-08", Title: "First date", Images: []string{"a.jpg"}}))
	require.NoError(t, s.PutMemory(ctx, model.Memory{ID: "m2", Date: "2023-07-01", Title: "Beach"}))

	require.NoError(t, s.PutPlan(ctx, model.Plan{ID: "p1", Title: "Trip", Priority: model.PriorityHigh, TargetDate: "2024-08-01"}))
	require.NoError(t, s.PutPlan(ctx, model.Plan{ID: "p2", Title: "Dinner", Priority: model.PriorityLow}))
	require.NoError(t, s.PutPlan(ctx, model.Plan{ID: "p3", Title: "Concert", Completed: true}))
}

func TestExport(t *testing.T) {
	c, s := newTestCodec(t)
	seed(t, s)

	snap, err := c.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, snap.Version)
	assert.Equal(t, "2024-06-01T09:30:00.000Z", snap.Timestamp)
	require.NotNil(t, snap.Data.Settings)
	assert.Equal(t, "Minh", snap.Data.Settings.Partners[0].Name)
	assert.Len(t, snap.Data.Memories, 2)
	assert.Len(t, snap.Data.Plans, 3)
}

func TestExportEmptyStoreUsesEmptyLists(t *testing.T) {
	c, _ := newTestCodec(t)

	snap, err := c.Export(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap))
	out := buf.String()
	assert.Contains(t, out, `"settings": null`)
	assert.Contains(t, out, `"memories": []`)
	assert.Contains(t, out, `"plans": []`)
}

func TestClearAllThenImport(t *testing.T) {
	c, s := newTestCodec(t)
	ctx := context.Background()
	seed(t, s)

	snap, err := c.Export(ctx)
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	sum, err := c.Import(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Settings: true, Memories: 2, Plans: 3}, sum)

	memories, err := s.Memories(ctx)
	require.NoError(t, err)
	plans, err := s.Plans(ctx)
	require.NoError(t, err)
	assert.Len(t, memories, 2)
	assert.Len(t, plans, 3)
	assert.Equal(t, "m1", memories[0].ID, "ids preserved")
}

func TestRoundTripThroughJSON(t *testing.T) {
	src, s := newTestCodec(t)
	ctx := context.Background()
	seed(t, s)

	snap, err := src.Export(ctx)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap))

	dst, other := newTestCodec(t)
	require.NoError(t, other.PutMemory(ctx, model.Memory{ID: "stale"}))
	_, err = dst.ImportJSON(ctx, &buf)
	require.NoError(t, err)

	want, err := s.Snapshot(ctx)
	require.NoError(t, err)
	got, err := other.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestImportRejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing data", `{"version":1,"timestamp":"x"}`},
		{"null data", `{"version":1,"data":null}`},
		{"not json", `hello`},
		{"wrong version", `{"version":2,"data":{"memories":[],"plans":[]}}`},
		{"empty memory id", `{"version":1,"data":{"memories":[{"id":""}],"plans":[]}}`},
		{"duplicate plan id", `{"version":1,"data":{"memories":[],"plans":[{"id":"p"},{"id":"p"}]}}`},
		{"too much media", `{"version":1,"data":{"memories":[{"id":"m","images":["1","2","3","4","5","6","7","8","9","10"]}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newTestCodec(t)
			ctx := context.Background()
			seed(t, s)
			before, err := s.Snapshot(ctx)
			require.NoError(t, err)

			_, err = c.ImportJSON(ctx, strings.NewReader(tt.json))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			var ve *ImportValidationError
			assert.True(t, errors.As(err, &ve))

			after, err := s.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestDecodeLegacySettings(t *testing.T) {
	// Older backups carry the settings id and lack some toggles.
	doc := `{
	  "version": 1,
	  "timestamp": "2024-01-01T00:00:00.000Z",
	  "data": {
	    "settings": {"id": "settings", "startDate": "2023-02-14", "partner1Name": "A",
	                 "notifications": {"anniversary": false}},
	    "memories": [{"id": "m1", "date": "2023-02-14", "title": "t", "mediaUrl": "x.jpg", "tags": []}],
	    "plans": []
	  }
	}`
	snap, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, snap.Data.Settings)
	assert.Equal(t, "A", snap.Data.Settings.Partners[0].Name)
	assert.False(t, snap.Data.Settings.Notifications.Anniversary)
	assert.True(t, snap.Data.Settings.Notifications.OnThisDay)
	assert.Equal(t, []string{"x.jpg"}, snap.Data.Memories[0].Media())
}

func TestEncodeIsIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Snapshot{Version: 1, Data: &SnapshotData{}}))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"version\": 1,"))

	var back Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 1, back.Version)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "lovejourney_backup_2024-06-01.json", FileName(exportTime))
}
