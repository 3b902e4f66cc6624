package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/focusfeed/internal/keyword"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/relevance"
	"github.com/nao1215/focusfeed/internal/settings"
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [title]...",
		Short: "Classify titles against a goal",
		Long: `Classify decides for each title whether it is on goal and, for relevant
titles, which keyword matched. Without arguments titles are read from
standard input, one per line. The goal defaults to the stored one.

Examples:
  focusfeed classify -g "learn rust" "Rust ownership explained" "Cat video"
  cat titles.txt | focusfeed classify --plain -g "cooking"`,
		RunE: runClassifyCmd,
	}
	cmd.Flags().StringP("goal", "g", "", "Goal to classify against (default: the stored goal)")
	cmd.Flags().Bool("plain", false, "Print one line per title instead of a table")
	cmd.Flags().BoolP("json", "j", false, "Output a JSON report")
	return cmd
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return err
	}
	setupLogger(cmd, cfg.Verbose)

	goal, err := cmd.Flags().GetString("goal")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("goal") {
		if err := withStore(cmd, func(store *settings.Store) error {
			st, err := store.FetchState(cmd.Context())
			goal = st.Goal
			return err
		}); err != nil {
			return err
		}
	}

	titles := args
	if len(titles) == 0 {
		if titles, err = readTitles(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	result := classifyTitles(goal, titles)
	if plain {
		writePlain(cmd.OutOrStdout(), result)
		return nil
	}
	return outputReport(cmd, cfg, []*model.ScanResult{result})
}

func readTitles(r io.Reader) ([]string, error) {
	var titles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			titles = append(titles, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read titles: %w", err)
	}
	return titles, nil
}

// classifyTitles classifies titles as a scan pass over bare titles would.
func classifyTitles(goal string, titles []string) *model.ScanResult {
	keywords := keyword.Extract(goal)
	result := &model.ScanResult{
		Source:    "classify",
		Goal:      goal,
		Keywords:  keywords.Sorted(),
		Enabled:   true,
		Mode:      model.ModeClassify,
		StartedAt: time.Now(),
	}
	for _, title := range titles {
		item := model.ItemResult{Title: title, Verdict: model.VerdictIrrelevant}
		if relevance.IsRelevant(keywords, title) {
			item.Verdict = model.VerdictRelevant
			item.Keyword = relevance.MatchingKeyword(keywords, title)
		}
		result.Record(item)
	}
	result.Duration = time.Since(result.StartedAt)
	return result
}

func writePlain(out io.Writer, result *model.ScanResult) {
	for _, item := range result.Items {
		if item.Keyword != "" {
			fmt.Fprintf(out, "%-10s %s [%s]\n", item.Verdict, item.Title, item.Keyword)
			continue
		}
		fmt.Fprintf(out, "%-10s %s\n", item.Verdict, item.Title)
	}
}
