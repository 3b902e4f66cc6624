package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/focusfeed/internal/keyword"
)

// NewKeywordsCmd creates the keywords command.
func NewKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords <goal>...",
		Short: "Show the keywords derived from a goal",
		Long: `Keywords prints the keywords focusfeed derives from a goal, one per line
in lexical order. Arguments are joined with spaces.

Words shorter than three letters, stop words and punctuation are dropped.
A goal without keywords turns filtering off.

Examples:
  focusfeed keywords "I want to learn Rust programming"
  focusfeed keywords --json cooking recipes`,
		Args: cobra.MinimumNArgs(1),
		RunE: runKeywordsCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output a JSON array")
	return cmd
}

func runKeywordsCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	keywords := keyword.Extract(strings.Join(args, " ")).Sorted()
	out := cmd.OutOrStdout()
	if asJSON {
		if keywords == nil {
			keywords = []string{}
		}
		return json.NewEncoder(out).Encode(keywords)
	}
	for _, k := range keywords {
		fmt.Fprintln(out, k)
	}
	return nil
}
