// Package cli implements the lovejourney CLI commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/clock"
	"github.com/rcliao/lovejourney/internal/config"
	"github.com/rcliao/lovejourney/internal/store"
)

var (
	dbPath     string
	driverFlag string
	configFile string
	formatFlag string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger = slog.Default()
)

var clk clock.Clock = clock.System{}

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lovejourney",
	Short: "A journal for two",
	Long: "Keep the couple's settings, memories and plans in a local database, " +
		"count the days together and surface anniversaries, birthdays and plan reminders.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $LOVEJOURNEY_DB or ~/.lovejourney/lovejourney.db)")
	RootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Storage driver: sqlite or bolt")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.lovejourney/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// setup resolves the configuration and installs the logger. Flags override
// every other source.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(config.LoadOptions{File: configFile})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("driver") {
		c.Driver = driverFlag
	}
	if flags.Changed("format") {
		c.Format = formatFlag
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	lvl, _ := c.SlogLevel()
	logger = newLogger(os.Stderr, c.LogFormat, lvl)
	slog.SetDefault(logger)
	cfg = c
	return nil
}

func newLogger(w io.Writer, format string, lvl slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openStore(ctx context.Context) (*store.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return store.Open(ctx, cfg.StoreOptions(logger))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
