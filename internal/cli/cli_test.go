package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lovejourney/internal/backup"
	"github.com/rcliao/lovejourney/internal/clock"
	"github.com/rcliao/lovejourney/internal/config"
	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/reminder"
	"github.com/rcliao/lovejourney/internal/store"
	"github.com/rcliao/lovejourney/internal/timeline"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	require.NoError(t, RootCmd.Execute())
	return out.Bytes()
}

func TestCommandFlow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{config.EnvDB, config.EnvDriver, config.EnvFormat, config.EnvConfig, config.EnvOpenTimeout, config.EnvLogLevel, config.EnvLogFormat} {
		t.Setenv(k, "")
	}
	clk = clock.NewFixed(time.Date(2024, 6, 10, 10, 0, 0, 0, time.Local))
	t.Cleanup(func() { clk = clock.System{} })
	db := filepath.Join(t.TempDir(), "cli.db")

	var settings model.Settings
	require.NoError(t, json.Unmarshal(run(t, "settings", "set", "--db", db,
		"--start-date", "2024-01-01", "--partner1-name", "An", "--reminder-days", "0,1"), &settings))
	assert.Equal(t, "2024-01-01", settings.StartDate)
	assert.Equal(t, "An", settings.Partners[0].Name)
	assert.Equal(t, []int{0, 1}, settings.ReminderDays)

	var plan model.Plan
	require.NoError(t, json.Unmarshal(run(t, "plan", "put", "--db", db, "--title", "Trip", "--target", "2024-06-11"), &plan))
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, model.PriorityMedium, plan.Priority)

	var feed []reminder.Reminder
	require.NoError(t, json.Unmarshal(run(t, "reminders", "--db", db), &feed))
	require.NotEmpty(t, feed)
	assert.Equal(t, "Trip (1 days left)", feed[0].Title)

	var counter struct {
		Elapsed timeline.Breakdown `json:"elapsed"`
	}
	require.NoError(t, json.Unmarshal(run(t, "counter", "--db", db), &counter))
	assert.Equal(t, 162, counter.Elapsed.TotalDays)

	var snap backup.Snapshot
	require.NoError(t, json.Unmarshal(run(t, "export", "--db", db), &snap))
	require.NotNil(t, snap.Data)
	assert.Len(t, snap.Data.Plans, 1)
	assert.Empty(t, snap.Data.Memories)
	require.NotNil(t, snap.Data.Settings)
	assert.Equal(t, "An", snap.Data.Settings.Partners[0].Name)

	run(t, "settings", "set", "--db", db, "--new-pin", "1234")
	snap = backup.Snapshot{}
	require.NoError(t, json.Unmarshal(run(t, "export", "--db", db, "--pin", "1234"), &snap))
	require.NotNil(t, snap.Data.Settings)
	require.NotNil(t, snap.Data.Settings.SecurityPIN)
	assert.Equal(t, "1234", *snap.Data.Settings.SecurityPIN, "unlocked export keeps the PIN")
}

func TestCheckPIN(t *testing.T) {
	assert.NoError(t, checkPIN(nil, ""), "nothing saved")

	s := model.DefaultSettings(time.Now())
	assert.NoError(t, checkPIN(&s, ""), "no PIN set")

	require.NoError(t, s.SetPIN("1234"))
	assert.NoError(t, checkPIN(&s, "1234"))
	assert.ErrorIs(t, checkPIN(&s, ""), errWrongPIN)
	assert.ErrorIs(t, checkPIN(&s, "4321"), errWrongPIN)
}

func openTestStore(t *testing.T) *store.DB {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Driver: store.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "cli.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	assert.NoError(t, unlock(ctx, s, ""), "fresh store is unlocked")

	settings := model.DefaultSettings(time.Now())
	require.NoError(t, settings.SetPIN("1234"))
	require.NoError(t, s.SaveSettings(ctx, settings))

	assert.ErrorIs(t, unlock(ctx, s, "0000"), errWrongPIN)
	assert.NoError(t, unlock(ctx, s, "1234"))
}

func TestExistingPlan(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	got, err := existingPlan(ctx, s, "p1")
	require.NoError(t, err)
	assert.Nil(t, got, "missing plan is not an error")

	require.NoError(t, s.PutPlan(ctx, model.Plan{ID: "p1", Title: "Trip", Completed: true}))
	got, err = existingPlan(ctx, s, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Completed)

	require.NoError(t, s.Close())
	_, err = existingPlan(ctx, s, "p1")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable, "storage failures surface")
}

func TestSyncWriterKeepsWritesWhole(t *testing.T) {
	var buf bytes.Buffer
	w := newSyncWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fmt.Fprintf(w, "line %02d of the feed\n", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 20)
	for _, l := range lines {
		assert.Regexp(t, `^line \d{2} of the feed$`, l)
	}
}

func TestWatchDispatcherSenders(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = config.Default()
	cfg.Watch.Terminal = true
	cfg.Watch.Log = true
	var names []string
	for _, s := range watchDispatcher(&bytes.Buffer{}).Senders() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"writer", "log"}, names)

	cfg.Watch.Terminal = false
	cfg.Watch.Log = false
	assert.False(t, watchDispatcher(&bytes.Buffer{}).HasSenders())
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("0, 1,7")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 7}, got)

	got, err = parseInts("")
	require.NoError(t, err)
	assert.Equal(t, []int{}, got)

	_, err = parseInts("1,x")
	assert.Error(t, err)
	_, err = parseInts("-1")
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	s := model.DefaultSettings(time.Now())
	require.NoError(t, s.SetPIN("1234"))

	view := redacted(s)
	assert.Equal(t, "****", *view.SecurityPIN)
	assert.Equal(t, "1234", *s.SecurityPIN, "input untouched")
}
