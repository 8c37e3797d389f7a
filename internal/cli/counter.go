package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/timeline"
)

func init() {
	counter := &cobra.Command{
		Use:   "counter",
		Short: "Show the time spent together",
		Run:   runCounter,
	}

	milestone := &cobra.Command{
		Use:   "milestone",
		Short: "Show the next milestone",
		Run:   runMilestone,
	}

	RootCmd.AddCommand(counter, milestone)
}

type counterView struct {
	StartDate string             `json:"startDate"`
	Elapsed   timeline.Breakdown `json:"elapsed"`
	Next      timeline.Milestone `json:"nextMilestone"`
}

func computeCounter(s *model.Settings) counterView {
	now := clk.Now()
	return counterView{
		StartDate: s.StartDate,
		Elapsed:   timeline.Elapsed(s.StartDate, s.CountFromDayOne, now),
		Next:      timeline.NextMilestone(s.StartDate, now),
	}
}

func formatBreakdown(b timeline.Breakdown) string {
	return fmt.Sprintf("%dy %dm %dw %dd %02d:%02d:%02d", b.Years, b.Months, b.Weeks, b.Days, b.Hours, b.Minutes, b.Seconds)
}

func runCounter(cmd *cobra.Command, args []string) {
	settings, _ := loadSettings(cmd)
	v := computeCounter(settings)

	if !textOutput() {
		printJSON(cmd, v)
		return
	}
	w := cmd.OutOrStdout()
	names := settings.Partners[0].Name + " & " + settings.Partners[1].Name
	fmt.Fprintln(w, headerStyle.Render(names))
	printKV(w, "Together", fmt.Sprintf("%d days", v.Elapsed.TotalDays))
	printKV(w, "Breakdown", formatBreakdown(v.Elapsed))
}

func runMilestone(cmd *cobra.Command, args []string) {
	settings, _ := loadSettings(cmd)
	m := timeline.NextMilestone(settings.StartDate, clk.Now())

	if !textOutput() {
		printJSON(cmd, m)
		return
	}
	w := cmd.OutOrStdout()
	printKV(w, "Next", m.Label)
	printKV(w, "Date", m.TargetDate)
	printKV(w, "Days left", m.DaysLeft)
}
