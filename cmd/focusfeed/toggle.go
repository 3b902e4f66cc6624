package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/focusfeed/internal/settings"
)

// NewToggleCmd creates the toggle command.
func NewToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle [on|off]",
		Short:     "Show or switch filtering on and off",
		Long:      `Toggle prints whether filtering is enabled, or switches it with "on" or "off".`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE:      runToggleCmd,
	}
}

func runToggleCmd(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(store *settings.Store) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			st, err := store.FetchState(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Filtering is %s.\n", onOff(st.Enabled))
			return nil
		}

		enabled := args[0] == "on"
		if err := store.SetEnabled(cmd.Context(), enabled); err != nil {
			return err
		}
		fmt.Fprintf(out, "Filtering turned %s.\n", onOff(enabled))
		return nil
	})
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
