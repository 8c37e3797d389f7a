package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/notify"
	"github.com/rcliao/lovejourney/internal/reminder"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Show today's reminder feed",
		Long:  "Evaluate countdowns, exact-time plan reminders, anniversaries, birthdays, holidays and on-this-day memories for today.",
		Run:   runReminders,
	}
	cmd.Flags().Bool("notify", false, "Also send today's notifications to the log")

	RootCmd.AddCommand(cmd)
}

func runReminders(cmd *cobra.Command, args []string) {
	sendNotifications, _ := cmd.Flags().GetBool("notify")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var n notify.Notifier
	if sendNotifications {
		d := notify.NewDispatcher(false, clk, logger)
		d.Register(notify.NewLogSender(logger))
		n = d
	}

	feed, err := reminder.NewEvaluator(s, clk, n, logger).Run(cmd.Context())
	if err != nil {
		exitErr("reminders", err)
	}

	if !textOutput() {
		printJSON(cmd, feed)
		return
	}
	printFeed(cmd, feed)
}

func printFeed(cmd *cobra.Command, feed []reminder.Reminder) {
	fmt.Fprint(cmd.OutOrStdout(), renderFeed(feed))
}

// renderFeed formats the feed as one block so it is written in a single call.
func renderFeed(feed []reminder.Reminder) string {
	if len(feed) == 0 {
		return dimStyle.Render("No reminders today.") + "\n"
	}
	var b strings.Builder
	for _, r := range feed {
		fmt.Fprintf(&b, "%s %s  %s\n", labelStyle.Render(padRight(string(r.Kind), 6)), r.Title, dimStyle.Render(r.Date))
	}
	return b.String()
}
