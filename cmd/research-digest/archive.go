// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/archive"
	"github.com/pdiddy/research-digest/internal/markup"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Search and export records from past runs",
	Long: `Archive queries the SQLite database that update fills with every record and
news item it publishes. Records are indexed with FTS5 over title, abstract and
summary.

FTS5 is compiled into go-sqlite3 only with the sqlite_fts5 build tag. Build
with "mage build" or "go build -tags sqlite_fts5 ./cmd/research-digest";
without it the archive cannot be opened.`,
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over archived records",
	RunE:  runArchiveSearch,
}

var archiveRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived runs, newest first",
	RunE:  runArchiveRuns,
}

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write archived records as YAML or JSON to stdout",
	RunE:  runArchiveExport,
}

func init() {
	archiveSearchCmd.Flags().String("topic", "", "filter by topic key")
	archiveSearchCmd.Flags().Int("limit", 0, "maximum number of results (default from config)")
	archiveSearchCmd.Flags().Bool("json", false, "output results as JSON")

	archiveRunsCmd.Flags().Int("limit", 0, "maximum number of runs (default from config)")

	archiveExportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	archiveExportCmd.Flags().String("topic", "", "filter by topic key")

	archiveCmd.AddCommand(archiveSearchCmd, archiveRunsCmd, archiveExportCmd)
	rootCmd.AddCommand(archiveCmd)
}

func openArchive() (*archive.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return archive.Open(cfg.Archive)
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	topicKey, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")
	opts := archive.SearchOptions{
		Query:      strings.Join(args, " "),
		Topic:      topicKey,
		MaxResults: limit,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query or --topic")
	}

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	hits, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHits(cmd.OutOrStdout(), hits, jsonOutput)
}

func formatHits(w io.Writer, hits []archive.Hit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-10s  %-50s  %s\n", "Rank", "Topic", "PMID", "Title", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for i, h := range hits {
		fmt.Fprintf(w, "%-4d  %-20s  %-10s  %-50s  %s\n", i+1, h.Topic, h.PMID, markup.Clip(h.Title, 47), h.URL)
	}
	fmt.Fprintf(w, "\n%d result(s)\n", len(hits))
	return nil
}

func runArchiveRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(context.Background(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs archived.")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-20s  %7s  %5s\n", "Run", "Generated", "Records", "News")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-20s  %7d  %5d\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Records, r.News)
	}
	return nil
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	topicKey, _ := cmd.Flags().GetString("topic")

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Export(context.Background(), cmd.OutOrStdout(), format, archive.SearchOptions{Topic: topicKey})
}
