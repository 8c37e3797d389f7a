package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/store"
)

func init() {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage future plans",
	}

	put := &cobra.Command{
		Use:   "put",
		Short: "Add or replace a plan",
		Run:   runPlanPut,
	}
	put.Flags().String("id", "", "Plan id (default: new id)")
	put.Flags().StringP("title", "T", "", "Title (required)")
	put.Flags().String("description", "", "Description")
	put.Flags().StringP("priority", "p", string(model.PriorityMedium), "Priority: low, medium, high")
	put.Flags().String("target", "", "Target date (YYYY-MM-DD)")
	put.Flags().String("remind-at", "", "Exact reminder time (YYYY-MM-DDTHH:MM); enables the reminder")
	put.Flags().Bool("pinned", false, "Pin the plan")
	put.MarkFlagRequired("title")

	list := &cobra.Command{
		Use:   "list",
		Short: "List plans, soonest first",
		Run:   runPlanList,
	}
	list.Flags().Bool("by-priority", false, "Sort by priority, high first")
	list.Flags().Bool("pinned", false, "Only pinned, incomplete plans")
	list.Flags().Bool("open", false, "Hide completed plans")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one plan",
		Args:  cobra.ExactArgs(1),
		Run:   runPlanGet,
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		Run:   runPlanRm,
	}

	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a plan's completed flag",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			updatePlan(cmd, args[0], func(p *model.Plan) { p.Completed = !p.Completed })
		},
	}

	pin := &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle a plan's pinned flag",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			updatePlan(cmd, args[0], func(p *model.Plan) { p.IsPinned = !p.IsPinned })
		},
	}

	planCmd.AddCommand(put, list, get, rm, done, pin)
	RootCmd.AddCommand(planCmd)
}

func runPlanPut(cmd *cobra.Command, args []string) {
	f := cmd.Flags()
	id, _ := f.GetString("id")
	title, _ := f.GetString("title")
	desc, _ := f.GetString("description")
	priority, _ := f.GetString("priority")
	target, _ := f.GetString("target")
	remindAt, _ := f.GetString("remind-at")
	pinned, _ := f.GetBool("pinned")

	if id == "" {
		id = model.NewID()
	}
	p := model.Plan{
		ID:              id,
		Title:           title,
		Description:     desc,
		Priority:        model.Priority(priority),
		TargetDate:      target,
		IsPinned:        pinned,
		ReminderEnabled: remindAt != "",
		ReminderTime:    remindAt,
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	// Replacing keeps the completion state unless the caller resets it.
	existing, err := existingPlan(cmd.Context(), s, id)
	if err != nil {
		exitErr("get plan", err)
	}
	if existing != nil {
		p.Completed = existing.Completed
		if !f.Changed("pinned") {
			p.IsPinned = existing.IsPinned
		}
	}

	if err := s.PutPlan(cmd.Context(), p); err != nil {
		exitErr("put plan", err)
	}
	printJSON(cmd, p)
}

// existingPlan returns nil without error when id is not stored yet.
func existingPlan(ctx context.Context, s *store.DB, id string) (*model.Plan, error) {
	p, err := s.GetPlan(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil
	}
	return p, err
}

func runPlanList(cmd *cobra.Command, args []string) {
	f := cmd.Flags()
	byPriority, _ := f.GetBool("by-priority")
	pinnedOnly, _ := f.GetBool("pinned")
	openOnly, _ := f.GetBool("open")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	plans, err := s.Plans(cmd.Context())
	if err != nil {
		exitErr("list plans", err)
	}

	loc := clk.Now().Location()
	if pinnedOnly {
		plans = model.PinnedPlans(plans, loc)
	} else {
		if openOnly {
			open := plans[:0]
			for _, p := range plans {
				if !p.Completed {
					open = append(open, p)
				}
			}
			plans = open
		}
		model.SortPlans(plans, byPriority, loc)
	}

	if !textOutput() {
		if plans == nil {
			plans = []model.Plan{}
		}
		printJSON(cmd, plans)
		return
	}

	now := clk.Now()
	w := cmd.OutOrStdout()
	for _, p := range plans {
		mark := "[ ]"
		if p.Completed {
			mark = okStyle.Render("[x]")
		}
		pin := ""
		if p.IsPinned {
			pin = " *"
		}
		due := dimStyle.Render("no date")
		if p.TargetDate != "" {
			due = fmt.Sprintf("%s (%d days)", p.TargetDate, model.DaysUntil(p.TargetDate, now))
		}
		fmt.Fprintf(w, "%s %s%s  %s  %s  %s\n", mark, headerStyle.Render(p.Title), pin, p.Priority, due, dimStyle.Render(p.ID))
	}
}

func runPlanGet(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.GetPlan(cmd.Context(), args[0])
	if err != nil {
		exitErr("get plan", err)
	}
	printJSON(cmd, p)
}

func runPlanRm(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeletePlan(cmd.Context(), args[0]); err != nil {
		exitErr("delete plan", err)
	}
	printOK(cmd, map[string]any{"deleted": args[0]})
}

func updatePlan(cmd *cobra.Command, id string, change func(*model.Plan)) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := getAndChange(cmd, s, id, change)
	if err != nil {
		exitErr("update plan", err)
	}
	printJSON(cmd, p)
}

func getAndChange(cmd *cobra.Command, s store.Store, id string, change func(*model.Plan)) (*model.Plan, error) {
	p, err := s.GetPlan(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	change(p)
	if err := s.PutPlan(cmd.Context(), *p); err != nil {
		return nil, err
	}
	return p, nil
}
