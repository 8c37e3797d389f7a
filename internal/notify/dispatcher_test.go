package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lovejourney/internal/clock"
)

type recordingSender struct {
	name string
	mu   sync.Mutex
	got  []*Notification
	err  error
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingSender) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Title
	}
	return out
}

type panicSender struct{}

func (panicSender) Name() string { return "panic" }
func (panicSender) Send(context.Context, *Notification) error {
	panic("boom")
}

type slowSender struct{}

func (slowSender) Name() string { return "slow" }
func (slowSender) Send(ctx context.Context, _ *Notification) error {
	<-ctx.Done()
	return ctx.Err()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDispatcher_FansOut(t *testing.T) {
	d := NewDispatcher(false, nil, quietLogger())
	a := &recordingSender{name: "a"}
	b := &recordingSender{name: "b"}
	d.Register(a)
	d.Register(b)

	d.Notify(context.Background(), "Anniversary", "Happy anniversary!")

	assert.Equal(t, []string{"Anniversary"}, a.titles())
	assert.Equal(t, []string{"Anniversary"}, b.titles())
	assert.Equal(t, DefaultTag, a.got[0].Tag)
	assert.Equal(t, "Happy anniversary!", a.got[0].Body)
}

func TestDispatcher_Async(t *testing.T) {
	d := NewDispatcher(true, nil, quietLogger())
	a := &recordingSender{name: "a"}
	d.Register(a)

	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), "t", "")
	}
	d.Wait()
	assert.Len(t, a.titles(), 5)
}

func TestDispatcher_ErrorsAndPanicsAreContained(t *testing.T) {
	var logs bytes.Buffer
	d := NewDispatcher(false, nil, slog.New(slog.NewTextHandler(&logs, nil)))
	ok := &recordingSender{name: "ok"}
	d.Register(&recordingSender{name: "failing", err: errors.New("denied")})
	d.Register(panicSender{})
	d.Register(ok)

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), "Valentine", "")
	})
	assert.Equal(t, []string{"Valentine"}, ok.titles(), "later senders still run")
	assert.Contains(t, logs.String(), "denied")
	assert.Contains(t, logs.String(), "panic in sender")
}

func TestDispatcher_SendTimeout(t *testing.T) {
	d := NewDispatcher(false, nil, quietLogger())
	d.SetTimeout(20 * time.Millisecond)
	d.Register(slowSender{})

	start := time.Now()
	d.Notify(context.Background(), "t", "")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatcher_Senders(t *testing.T) {
	d := NewDispatcher(false, nil, quietLogger())
	assert.False(t, d.HasSenders())
	assert.NotPanics(t, func() { d.Notify(context.Background(), "nobody", "") })

	d.Register(&recordingSender{name: "a"})
	d.Register(&recordingSender{name: "b"})
	require.True(t, d.HasSenders())

	got := d.Senders()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name())
	got[0] = nil
	assert.NotNil(t, d.Senders()[0], "callers get a copy")
}

func TestDispatcher_StampsWithClock(t *testing.T) {
	at := time.Date(2024, 2, 14, 8, 5, 0, 0, time.UTC)
	d := NewDispatcher(false, clock.NewFixed(at), quietLogger())
	a := &recordingSender{name: "a"}
	d.Register(a)

	d.Notify(context.Background(), "Valentine's Day", "")
	require.Len(t, a.got, 1)
	assert.True(t, at.Equal(a.got[0].Timestamp))
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSender(&buf, false)
	ts := time.Date(2024, 2, 14, 8, 5, 0, 0, time.UTC)

	require.NoError(t, s.Send(context.Background(), &Notification{Title: "Valentine's Day", Timestamp: ts}))
	require.NoError(t, s.Send(context.Background(), &Notification{Title: "Trip", Body: "Time for: Trip", Timestamp: ts}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"[08:05] Valentine's Day", "[08:05] Trip: Time for: Trip"}, lines)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.Send(context.Background(), &Notification{Title: "New Year", Tag: DefaultTag}))
	assert.Contains(t, buf.String(), `title="New Year"`)
	assert.Contains(t, buf.String(), "tag=lovejourney")
}
