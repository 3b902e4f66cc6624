package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/focusfeed/internal/keyword"
	"github.com/nao1215/focusfeed/internal/settings"
)

// NewGoalCmd creates the goal command and its subcommands.
func NewGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Show or change the stored focus goal",
		Long: `Goal manages the focus goal kept in the settings store. A running
"focusfeed watch" picks up changes within one poll interval.

Examples:
  focusfeed goal show
  focusfeed goal set "I want to learn Rust programming"
  focusfeed goal clear`,
	}
	cmd.AddCommand(newGoalShowCmd(), newGoalSetCmd(), newGoalClearCmd())
	return cmd
}

// withStore runs fn against the settings store selected by the global flags.
func withStore(cmd *cobra.Command, fn func(*settings.Store) error) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cmd, cfg.Verbose)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newGoalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the goal, its keywords and the toggle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *settings.Store) error {
				st, err := store.FetchState(cmd.Context())
				if err != nil {
					return err
				}
				snap := st.Snapshot()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Goal:     %s\n", orNone(st.Goal))
				fmt.Fprintf(out, "Keywords: %s\n", orNone(snap.Keywords.String()))
				fmt.Fprintf(out, "Enabled:  %t\n", st.Enabled)
				if !snap.Filtering() {
					fmt.Fprintln(out, "Filtering is inactive.")
				}
				return nil
			})
		},
	}
}

func newGoalSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <goal>...",
		Short: "Store a new goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.Join(args, " ")
			return withStore(cmd, func(store *settings.Store) error {
				if err := store.SetGoal(cmd.Context(), goal); err != nil {
					return err
				}
				keywords := keyword.Extract(goal)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Goal set: %s\n", goal)
				if keywords.IsEmpty() {
					fmt.Fprintln(out, "Warning: the goal has no keywords, so nothing will be dimmed.")
					return nil
				}
				fmt.Fprintf(out, "Keywords: %s\n", keywords)
				return nil
			})
		},
	}
}

func newGoalClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *settings.Store) error {
				if err := store.SetGoal(cmd.Context(), ""); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Goal cleared.")
				return nil
			})
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
