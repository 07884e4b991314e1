// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/archive"
	"github.com/pdiddy/research-digest/internal/history"
	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/news"
	"github.com/pdiddy/research-digest/internal/pipeline"
	"github.com/pdiddy/research-digest/internal/pubmed"
	"github.com/pdiddy/research-digest/internal/snapshot"
	"github.com/pdiddy/research-digest/internal/sources"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/internal/topic"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run one refresh and write the snapshot and history files",
	Long: `Update ingests every topic and then every news category, one at a time.
Each source that fails keeps its entries from the previous snapshot. The
snapshot is written first, then the history file; either failure exits 1.
Fresh records are also added to the archive unless it is disabled.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Bool("dry-run", false, "ingest and print the report without writing any file")
	updateCmd.Flags().String("summary-mode", "", "summary strategy: heuristic or translate")
	updateCmd.Flags().String("data-dir", "", "directory for the snapshot and history files")
	updateCmd.Flags().Bool("no-archive", false, "skip recording the run in the archive")
	viper.BindPFlag("summary.mode", updateCmd.Flags().Lookup("summary-mode"))
	viper.BindPFlag("output.data_dir", updateCmd.Flags().Lookup("data-dir"))

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	srcs, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noArchive, _ := cmd.Flags().GetBool("no-archive")

	client := httputil.NewClient(cfg.HTTP, log)
	localizer := &summary.TranslatingLocalizer{
		Translator: &summary.GoogleTranslator{Fetcher: client, BaseURL: cfg.Summary.TranslateURL},
		From:       cfg.Summary.SourceLang,
		To:         cfg.Summary.TargetLang,
		Logger:     log,
	}
	summarizer, err := summary.New(cfg.Summary.Mode, localizer)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Sources: srcs,
		Topics: &topic.Ingester{
			PubMed:     &pubmed.Client{Fetcher: client, Config: cfg.PubMed},
			Summarizer: summarizer,
			Logger:     log,
		},
		News: &news.Ingester{
			Fetcher:   client,
			Localizer: localizer,
			Config:    cfg.News,
			Logger:    log,
		},
		Snapshots:   &snapshot.Store{Path: snapshotPath(cfg.Output), Logger: log},
		History:     &history.Store{Path: historyPath(cfg.Output), Limit: cfg.Output.HistoryLimit, Logger: log},
		RecordLimit: cfg.PubMed.RecordLimit,
		ItemLimit:   cfg.News.ItemLimit,
		RunID:       runID,
		DryRun:      dryRun,
		Out:         cmd.OutOrStdout(),
		Logger:      log,
	}

	if cfg.Archive.Enabled && !noArchive && !dryRun {
		store, err := archive.Open(cfg.Archive)
		if err != nil {
			log.Warn("archive unavailable, continuing without it", "path", cfg.Archive.Path, "error", err)
		} else {
			defer store.Close()
			runner.Archive = store
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = runner.Run(ctx)
	return err
}
