package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rcliao/lovejourney/internal/clock"
	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/notify"
	"github.com/rcliao/lovejourney/internal/timeline"
)

// Source is the part of store.Store the evaluator reads.
type Source interface {
	GetSettings(ctx context.Context) (*model.Settings, error)
	Plans(ctx context.Context) ([]model.Plan, error)
	Memories(ctx context.Context) ([]model.Memory, error)
}

type dispatchKey struct {
	title string
	day   string
}

// Evaluator runs reminder passes against a store and notifies at most once
// per title per calendar day. The dedup markers live only as long as the
// Evaluator.
type Evaluator struct {
	src      Source
	clock    clock.Clock
	notifier notify.Notifier
	log      *slog.Logger

	mu       sync.Mutex
	notified map[dispatchKey]struct{}
}

// NewEvaluator returns an Evaluator. A nil notifier disables dispatching.
func NewEvaluator(src Source, clk clock.Clock, n notify.Notifier, log *slog.Logger) *Evaluator {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{
		src:      src,
		clock:    clk,
		notifier: n,
		log:      log.With("component", "reminder"),
		notified: make(map[dispatchKey]struct{}),
	}
}

// Run loads the current records, computes the feed and sends any dispatch
// not yet sent today. Storage errors are returned; bad dates never are.
func (e *Evaluator) Run(ctx context.Context) ([]Reminder, error) {
	settings, err := e.src.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	plans, err := e.src.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	memories, err := e.src.Memories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	now := e.clock.Now()
	s := model.DefaultSettings(now)
	if settings != nil {
		s = *settings
	}

	feed, dispatches := Compute(now, s, plans, memories)
	sent := e.dispatch(ctx, now.Format(timeline.DateLayout), dispatches)
	e.log.Debug("reminder pass", "entries", len(feed), "dispatched", sent)
	return feed, nil
}

func (e *Evaluator) dispatch(ctx context.Context, day string, dispatches []Dispatch) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	for k := range e.notified {
		if k.day != day {
			delete(e.notified, k)
		}
	}

	sent := 0
	for _, d := range dispatches {
		key := dispatchKey{title: d.Title, day: day}
		if _, done := e.notified[key]; done {
			continue
		}
		e.notified[key] = struct{}{}
		if e.notifier != nil {
			e.notifier.Notify(ctx, d.Title, d.Body)
		}
		sent++
	}
	return sent
}
