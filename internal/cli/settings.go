package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/store"
	"github.com/rcliao/lovejourney/internal/timeline"
)

var errWrongPIN = errors.New("wrong PIN")

// checkPIN fails with errWrongPIN when settings carry a PIN that pin does not
// match. Nil settings lock nothing.
func checkPIN(settings *model.Settings, pin string) error {
	if settings != nil && !settings.CheckPIN(pin) {
		return errWrongPIN
	}
	return nil
}

// unlock reads the saved settings and checks pin against them.
func unlock(ctx context.Context, s *store.DB, pin string) error {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	return checkPIN(settings, pin)
}

func init() {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the couple's settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show settings (defaults when none are saved)",
		Run:   runSettingsShow,
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long:  "Change settings. Only the flags given are applied. When a PIN is set, --pin must match it.",
		Run:   runSettingsSet,
	}
	f := set.Flags()
	f.String("start-date", "", "Date the relationship started (YYYY-MM-DD)")
	f.Bool("count-from-day-one", true, "Count the start date itself as day 1")
	f.String("reminder-days", "", "Comma-separated day offsets for countdown reminders, e.g. 0,1,7")
	f.String("partner1-name", "", "First partner's name")
	f.String("partner1-dob", "", "First partner's date of birth")
	f.String("partner2-name", "", "Second partner's name")
	f.String("partner2-dob", "", "Second partner's date of birth")
	f.Bool("anniversary", true, "Anniversary reminders")
	f.Bool("valentine", true, "Valentine's Day reminders")
	f.Bool("holidays", true, "Holiday reminders")
	f.Bool("on-this-day", true, "On-this-day memory reminders")
	f.Bool("birthdays", true, "Partner birthday reminders")
	f.String("theme-color", "", "Theme color")
	f.String("theme-effect", "", "Theme effect")
	f.String("font-style", "", "Font style")
	f.String("new-pin", "", "Set a 4-digit PIN; pass an empty value to remove it")
	f.String("pin", "", "Current PIN, required when one is set")

	resetPIN := &cobra.Command{
		Use:   "reset-pin",
		Short: "Forgotten PIN: erase all data",
		Long:  "A forgotten PIN cannot be recovered. This erases settings, memories and plans so the journal can be used again.",
		Run:   runSettingsResetPIN,
	}
	resetPIN.Flags().Bool("yes", false, "Confirm erasing all data")

	settingsCmd.AddCommand(show, set, resetPIN)
	RootCmd.AddCommand(settingsCmd)
}

// loadSettings returns the saved settings or the defaults.
func loadSettings(cmd *cobra.Command) (*model.Settings, bool) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	settings, err := s.GetSettings(cmd.Context())
	if err != nil {
		exitErr("get settings", err)
	}
	if settings == nil {
		d := model.DefaultSettings(clk.Now())
		return &d, false
	}
	return settings, true
}

// redacted hides the PIN value from output.
func redacted(s model.Settings) model.Settings {
	if s.PINEnabled() {
		masked := strings.Repeat("*", model.PINLength)
		s.SecurityPIN = &masked
	}
	return s
}

func runSettingsShow(cmd *cobra.Command, args []string) {
	settings, saved := loadSettings(cmd)
	view := redacted(*settings)

	if !textOutput() {
		printJSON(cmd, view)
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, headerStyle.Render("Settings"))
	if !saved {
		fmt.Fprintln(w, dimStyle.Render("(defaults, nothing saved yet)"))
	}
	printKV(w, "Start date", view.StartDate)
	printKV(w, "Count day one", view.CountFromDayOne)
	printKV(w, "Reminder days", view.ReminderOffsets())
	for i, p := range view.Partners {
		printKV(w, fmt.Sprintf("Partner %d", i+1), strings.TrimSpace(p.Name+" "+p.DOB))
	}
	n := view.Notifications
	printKV(w, "Notifications", fmt.Sprintf("anniversary=%t valentine=%t holidays=%t onThisDay=%t birthdays=%t",
		n.Anniversary, n.Valentine, n.Holidays, n.OnThisDay, n.Birthdays))
	printKV(w, "PIN", view.PINEnabled())
	printKV(w, "Theme", fmt.Sprintf("%s %s %s", view.Display.ThemeColor, view.Display.ThemeEffect, view.Display.FontStyle))
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	f := cmd.Flags()

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	current, err := s.GetSettings(cmd.Context())
	if err != nil {
		exitErr("get settings", err)
	}
	settings := model.DefaultSettings(clk.Now())
	if current != nil {
		settings = *current
	}

	pin, _ := f.GetString("pin")
	if err := checkPIN(&settings, pin); err != nil {
		exitErr("settings", err)
	}

	if f.Changed("start-date") {
		v, _ := f.GetString("start-date")
		if _, ok := timeline.ParseDate(v, clk.Now().Location()); !ok {
			exitErr("settings", fmt.Errorf("invalid start date %q", v))
		}
		settings.StartDate = v
	}
	if f.Changed("count-from-day-one") {
		settings.CountFromDayOne, _ = f.GetBool("count-from-day-one")
	}
	if f.Changed("reminder-days") {
		v, _ := f.GetString("reminder-days")
		days, err := parseInts(v)
		if err != nil {
			exitErr("reminder days", err)
		}
		settings.ReminderDays = days
	}

	for i, prefix := range []string{"partner1", "partner2"} {
		if f.Changed(prefix + "-name") {
			settings.Partners[i].Name, _ = f.GetString(prefix + "-name")
		}
		if f.Changed(prefix + "-dob") {
			v, _ := f.GetString(prefix + "-dob")
			if v != "" {
				if _, ok := timeline.ParseDate(v, clk.Now().Location()); !ok {
					exitErr("settings", fmt.Errorf("invalid date of birth %q", v))
				}
			}
			settings.Partners[i].DOB = v
		}
	}

	toggles := map[string]*bool{
		"anniversary": &settings.Notifications.Anniversary,
		"valentine":   &settings.Notifications.Valentine,
		"holidays":    &settings.Notifications.Holidays,
		"on-this-day": &settings.Notifications.OnThisDay,
		"birthdays":   &settings.Notifications.Birthdays,
	}
	for name, dst := range toggles {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}

	display := map[string]*string{
		"theme-color":  &settings.Display.ThemeColor,
		"theme-effect": &settings.Display.ThemeEffect,
		"font-style":   &settings.Display.FontStyle,
	}
	for name, dst := range display {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}

	if f.Changed("new-pin") {
		v, _ := f.GetString("new-pin")
		if err := settings.SetPIN(v); err != nil {
			exitErr("settings", err)
		}
	}

	if err := s.SaveSettings(cmd.Context(), settings); err != nil {
		exitErr("save settings", err)
	}
	logger.Info("settings saved")
	printJSON(cmd, redacted(settings))
}

func runSettingsResetPIN(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("reset-pin", errors.New("this erases all data; pass --yes to confirm"))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.ClearAll(cmd.Context()); err != nil {
		exitErr("clear", err)
	}
	printOK(cmd, map[string]any{"cleared": true})
}
