package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/backup"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Restore a JSON backup",
		Long: "Restore a backup produced by export (stdin or file). The current data is replaced. " +
			"An invalid backup is rejected before anything is changed. When a PIN is set, --pin must match it.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().String("pin", "", "Current PIN, required when one is set")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	pin, _ := cmd.Flags().GetString("pin")

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open file", err)
		}
		defer f.Close()
		r = f
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := unlock(cmd.Context(), s, pin); err != nil {
		exitErr("import", err)
	}

	sum, err := backup.New(s, clk, logger).ImportJSON(cmd.Context(), r)
	if err != nil {
		exitErr("import", err)
	}

	printOK(cmd, map[string]any{
		"settings": sum.Settings,
		"memories": sum.Memories,
		"plans":    sum.Plans,
	})
}
