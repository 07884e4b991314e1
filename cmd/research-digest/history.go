// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/history"
	"github.com/pdiddy/research-digest/internal/sources"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show how many identifiers each topic has already published",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("topic", "", "show only this topic")
	historyCmd.Flags().Int("recent", 5, "number of newest identifiers to list per topic")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	srcs, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetString("topic")
	recent, _ := cmd.Flags().GetInt("recent")

	st := &history.Store{Path: historyPath(cfg.Output), Limit: cfg.Output.HistoryLimit, Logger: log}
	set := st.Load(srcs.TopicKeys(), nil)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-24s  %6s  %s\n", "Topic", "Count", "Newest")
	for _, key := range set.Topics() {
		if only != "" && key != only {
			continue
		}
		ids := set.IDs(key)
		fmt.Fprintf(out, "%-24s  %6d  %v\n", key, len(ids), newest(ids, recent))
	}
	return nil
}

// newest returns up to n identifiers, most recent first.
func newest(ids []string, n int) []string {
	var out []string
	for i := len(ids) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, ids[i])
	}
	return out
}
