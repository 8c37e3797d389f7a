package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/backup"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export everything as a JSON backup",
		Long: "Export settings, memories and plans as one versioned JSON snapshot. Writes to stdout, or to a file with -o. " +
			"When a PIN is set, --pin must match it.",
		Run:   runExport,
	}

	cmd.Flags().String("pin", "", "Current PIN, required when one is set")
	cmd.Flags().StringP("output", "o", "", "Output file; \"auto\" names it lovejourney_backup_YYYY-MM-DD.json")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	pin, _ := cmd.Flags().GetString("pin")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := unlock(cmd.Context(), s, pin); err != nil {
		exitErr("export", err)
	}

	snap, err := backup.New(s, clk, logger).Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	if output == "" {
		if err := backup.Encode(cmd.OutOrStdout(), snap); err != nil {
			exitErr("export", err)
		}
		return
	}

	if output == "auto" {
		output = backup.FileName(clk.Now())
	}
	f, err := os.Create(output)
	if err != nil {
		exitErr("create file", err)
	}
	if err := backup.Encode(f, snap); err != nil {
		f.Close()
		exitErr("export", err)
	}
	if err := f.Close(); err != nil {
		exitErr("export", err)
	}
	printOK(cmd, map[string]any{
		"file":     output,
		"memories": len(snap.Data.Memories),
		"plans":    len(snap.Data.Plans),
	})
}
