// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-digest CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/logger"
	"github.com/pdiddy/research-digest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// runID identifies this invocation in logs, the snapshot and the archive.
	runID string

	// loadedSecrets holds NCBI credentials loaded from the secrets directory.
	loadedSecrets secrets.Secrets

	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "research-digest",
	Short: "Refresh a digest of new medical research and headline news",
	Long: `research-digest runs a batch refresh: it searches PubMed for each configured
topic, keeps only records it has not published before, summarizes them in
Chinese, merges localized headlines from news feeds, and writes a JSON
snapshot for a static display page.

A failing topic or feed never fails the run; its previous entries are kept.
The command exits non-zero only when the snapshot or history cannot be written.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		runID = uuid.NewString()
		l, err := logger.New(os.Stderr, viper.GetString("log_level"), runID)
		if err != nil {
			return err
		}
		log = l
		slog.SetDefault(l)

		s, err := secrets.Load(viper.GetString("secrets_dir"), log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.Debug("loaded secrets", "keys", s.Names())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-digest.yaml or ~/.config/research-digest/research-digest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("sources", "", "sources file with topics and feeds (default sources.yaml)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("sources_file", rootCmd.PersistentFlags().Lookup("sources"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-digest"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
