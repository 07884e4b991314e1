// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/archive"
	"github.com/pdiddy/research-digest/internal/history"
	"github.com/pdiddy/research-digest/internal/news"
	"github.com/pdiddy/research-digest/internal/pubmed"
	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/internal/topic"
	"github.com/pdiddy/research-digest/pkg/types"
)

const defaultUserAgent = "research-digest/0.1"

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("sources_file", "sources.yaml")
	viper.SetDefault("secrets_dir", ".secrets")

	viper.SetDefault("http.timeout", 20*time.Second)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("http.max_attempts", 3)
	viper.SetDefault("http.retry_delay", time.Second)

	viper.SetDefault("pubmed.base_url", pubmed.DefaultBaseURL)
	viper.SetDefault("pubmed.language", "english")
	viper.SetDefault("pubmed.search_limit", 40)
	viper.SetDefault("pubmed.record_limit", topic.DefaultRecordLimit)
	viper.SetDefault("pubmed.excluded_types", topic.DefaultExcludedTypes)
	viper.SetDefault("pubmed.api_key", "")
	viper.SetDefault("pubmed.tool", "research-digest")
	viper.SetDefault("pubmed.email", "")

	viper.SetDefault("news.item_limit", news.DefaultItemLimit)
	viper.SetDefault("news.source_lang", news.DefaultSourceLang)

	viper.SetDefault("summary.mode", string(types.SummaryTranslate))
	viper.SetDefault("summary.source_lang", "en")
	viper.SetDefault("summary.target_lang", "zh-CN")
	viper.SetDefault("summary.translate_url", summary.DefaultTranslateURL)

	viper.SetDefault("output.data_dir", "data")
	viper.SetDefault("output.snapshot_file", "latest.json")
	viper.SetDefault("output.history_file", "research-history.json")
	viper.SetDefault("output.history_limit", history.DefaultLimit)

	viper.SetDefault("archive.enabled", true)
	viper.SetDefault("archive.path", archive.DefaultPath)
	viper.SetDefault("archive.max_results", 20)
}

// loadConfig unmarshals the merged configuration and fills NCBI
// credentials from the secrets directory when config leaves them empty.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.PubMed.APIKey = loadedSecrets.Or(secrets.NCBIAPIKey, cfg.PubMed.APIKey)
	cfg.PubMed.Email = loadedSecrets.Or(secrets.NCBIEmail, cfg.PubMed.Email)

	switch cfg.Summary.Mode {
	case types.SummaryHeuristic, types.SummaryTranslate:
	default:
		return cfg, fmt.Errorf("summary.mode must be %q or %q, got %q",
			types.SummaryHeuristic, types.SummaryTranslate, cfg.Summary.Mode)
	}
	return cfg, nil
}

func snapshotPath(cfg types.OutputConfig) string {
	return filepath.Join(cfg.DataDir, cfg.SnapshotFile)
}

func historyPath(cfg types.OutputConfig) string {
	return filepath.Join(cfg.DataDir, cfg.HistoryFile)
}
