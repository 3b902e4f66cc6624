package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for focusfeed.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focusfeed",
		Short: "Dim feed entries that do not match your focus goal",
		Long: `focusfeed classifies the video entries of a feed page against a short
focus goal and dims the ones that are off-goal.

The goal and the on/off toggle live in a small settings store. Saved pages
can be scanned once with "scan", or kept annotated while they change with
"watch".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .focusfeed in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory of the settings store (default: XDG data directory)")

	cmd.AddCommand(NewKeywordsCmd())
	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewGoalCmd())
	cmd.AddCommand(NewToggleCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
