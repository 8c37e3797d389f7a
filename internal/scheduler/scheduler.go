// Package scheduler drives the periodic work of a long-running session: a
// fast tick for the elapsed-time counter, a daily reminder pass and a
// minute-level check for reminders due later in the day.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/lovejourney/internal/clock"
	"github.com/rcliao/lovejourney/internal/timeline"
)

const (
	// DefaultTickInterval refreshes the counter once a second.
	DefaultTickInterval = time.Second
	// DefaultCheckInterval re-evaluates reminders once a minute.
	DefaultCheckInterval = time.Minute
)

// Options configures a Scheduler. Nil callbacks disable their loop.
type Options struct {
	Clock        clock.Clock
	TickInterval time.Duration
	// OnTick runs on every tick with the clock's current time.
	OnTick func(now time.Time)
	// Daily runs once at start-up and again at each local midnight. Errors
	// are logged and the loop keeps going.
	Daily func(ctx context.Context) error
	// Check runs every CheckInterval. Errors are logged.
	Check         func(ctx context.Context) error
	CheckInterval time.Duration
	Logger        *slog.Logger
}

// Scheduler runs its loops until its context ends.
type Scheduler struct {
	clock         clock.Clock
	interval      time.Duration
	onTick        func(time.Time)
	daily         func(context.Context) error
	check         func(context.Context) error
	checkInterval time.Duration
	log           *slog.Logger
}

func New(opts Options) *Scheduler {
	s := &Scheduler{
		clock:         opts.Clock,
		interval:      opts.TickInterval,
		onTick:        opts.OnTick,
		daily:         opts.Daily,
		check:         opts.Check,
		checkInterval: opts.CheckInterval,
		log:           opts.Logger,
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.interval <= 0 {
		s.interval = DefaultTickInterval
	}
	if s.checkInterval <= 0 {
		s.checkInterval = DefaultCheckInterval
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "scheduler")
	return s
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	if s.onTick != nil {
		g.Go(func() error { return s.tickLoop(ctx) })
	}
	if s.daily != nil {
		g.Go(func() error { return s.dailyLoop(ctx) })
	}
	if s.check != nil {
		g.Go(func() error { return s.checkLoop(ctx) })
	}
	s.log.Info("scheduler started", "tick", s.interval, "check", s.checkInterval)
	err := g.Wait()
	s.log.Info("scheduler stopped")
	return err
}

func (s *Scheduler) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.onTick(s.clock.Now())
		}
	}
}

func (s *Scheduler) dailyLoop(ctx context.Context) error {
	for {
		if err := s.daily(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("daily pass failed", "err", err)
		}

		timer := time.NewTimer(UntilMidnight(s.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) checkLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.check(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("reminder check failed", "err", err)
			}
		}
	}
}

// UntilMidnight returns the wait from now to the next local midnight.
func UntilMidnight(now time.Time) time.Duration {
	next := timeline.Midnight(now).AddDate(0, 0, 1)
	return next.Sub(now)
}
