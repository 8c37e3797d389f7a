package cli

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/notify"
	"github.com/rcliao/lovejourney/internal/reminder"
	"github.com/rcliao/lovejourney/internal/scheduler"
	"github.com/rcliao/lovejourney/internal/timeline"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the live counter and reminders until interrupted",
		Long: "Keep the store open, refresh the elapsed-time counter every tick, print the reminder feed " +
			"at start-up and at every local midnight, and check for due plan reminders every minute. " +
			"Notifications go to the terminal and/or the log.",
		Run: runWatch,
	}
	cmd.Flags().Duration("tick", 0, "Counter refresh interval (default from config, 1s)")
	cmd.Flags().Duration("check", 0, "Reminder check interval (default from config, 1m)")

	RootCmd.AddCommand(cmd)
}

// watchDispatcher registers the senders enabled in the config. Terminal
// notifications share w with the counter and the feed.
func watchDispatcher(w io.Writer) *notify.Dispatcher {
	d := notify.NewDispatcher(cfg.Watch.Async, clk, logger)
	if cfg.Watch.Terminal {
		d.Register(notify.NewWriterSender(w, textOutput()))
	}
	if cfg.Watch.Log {
		d.Register(notify.NewLogSender(logger))
	}

	if !d.HasSenders() {
		logger.Warn("no notification senders enabled; reminders will only be listed")
		return d
	}
	names := make([]string, 0, 2)
	for _, s := range d.Senders() {
		names = append(names, s.Name())
	}
	logger.Info("notification senders", "senders", names)
	return d
}

func runWatch(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tick, _ := cmd.Flags().GetDuration("tick")
	if tick <= 0 {
		tick = cfg.Watch.TickInterval
	}
	check, _ := cmd.Flags().GetDuration("check")
	if check <= 0 {
		check = cfg.Watch.CheckInterval
	}

	s, err := openStore(ctx)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	w := newSyncWriter(cmd.OutOrStdout())
	d := watchDispatcher(w)
	defer d.Wait()

	ev := reminder.NewEvaluator(s, clk, d, logger)

	var current atomic.Pointer[model.Settings]
	reload := func(ctx context.Context) error {
		settings, err := s.GetSettings(ctx)
		if err != nil {
			return err
		}
		if settings == nil {
			def := model.DefaultSettings(clk.Now())
			settings = &def
		}
		current.Store(settings)
		return nil
	}
	if err := reload(ctx); err != nil {
		exitErr("get settings", err)
	}

	sched := scheduler.New(scheduler.Options{
		Clock:         clk,
		TickInterval:  tick,
		CheckInterval: check,
		Logger:        logger,
		OnTick: func(now time.Time) {
			if !textOutput() {
				return
			}
			st := current.Load()
			b := timeline.Elapsed(st.StartDate, st.CountFromDayOne, now)
			fmt.Fprintf(w, "\r%s  %s ", headerStyle.Render(fmt.Sprintf("%d days", b.TotalDays)), formatBreakdown(b))
		},
		Daily: func(ctx context.Context) error {
			if err := reload(ctx); err != nil {
				return err
			}
			feed, err := ev.Run(ctx)
			if err != nil {
				return err
			}
			if textOutput() {
				fmt.Fprint(w, "\n"+renderFeed(feed))
				return nil
			}
			writeJSON(w, map[string]any{
				"date":      clk.Now().Format(timeline.DateLayout),
				"reminders": feed,
				"milestone": timeline.NextMilestone(current.Load().StartDate, clk.Now()),
			})
			return nil
		},
		// Exact-time plan reminders come due during the day; the evaluator
		// sends each one once.
		Check: func(ctx context.Context) error {
			if err := reload(ctx); err != nil {
				return err
			}
			_, err := ev.Run(ctx)
			return err
		},
	})

	if err := sched.Run(ctx); err != nil {
		exitErr("watch", err)
	}
	if textOutput() {
		fmt.Fprintln(w)
	}
}
