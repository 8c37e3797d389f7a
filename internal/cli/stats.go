package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if !textOutput() {
		printJSON(cmd, stats)
		return
	}
	w := cmd.OutOrStdout()
	printKV(w, "Driver", stats.Driver)
	printKV(w, "Path", stats.DBPath)
	printKV(w, "Size", fmt.Sprintf("%d bytes", stats.DBSizeBytes))
	printKV(w, "Settings", stats.HasSettings)
	printKV(w, "Memories", fmt.Sprintf("%d (%d media)", stats.Memories, stats.MediaRefs))
	printKV(w, "Plans", fmt.Sprintf("%d (%d pinned, %d done)", stats.Plans, stats.PinnedPlans, stats.CompletedPlans))
}
