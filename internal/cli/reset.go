package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all data",
		Long:  "Erase settings, memories and plans. When a PIN is set, --pin must match it.",
		Run:   runReset,
	}

	cmd.Flags().String("pin", "", "Current PIN, required when one is set")
	cmd.Flags().Bool("yes", false, "Confirm erasing all data")

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	pin, _ := cmd.Flags().GetString("pin")
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("reset", errors.New("this erases all data; pass --yes to confirm"))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := unlock(cmd.Context(), s, pin); err != nil {
		exitErr("reset", err)
	}

	if err := s.ClearAll(cmd.Context()); err != nil {
		exitErr("clear", err)
	}
	printOK(cmd, map[string]any{"cleared": true})
}
