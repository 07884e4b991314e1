// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound request.
type HTTPConfig struct {
	// Timeout is the per-attempt HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxAttempts is the number of attempts per request (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// RetryDelay is the base backoff unit; attempt i waits i × RetryDelay (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// PubMedConfig holds settings for the research topic stage.
type PubMedConfig struct {
	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Language restricts the search (default "english").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// SearchLimit caps the candidate id list per topic (default 40).
	SearchLimit int `json:"search_limit" yaml:"search_limit" mapstructure:"search_limit"`

	// RecordLimit caps the records emitted per topic (default 5).
	RecordLimit int `json:"record_limit" yaml:"record_limit" mapstructure:"record_limit"`

	// ExcludedTypes lists publication types that are not primary research.
	ExcludedTypes []string `json:"excluded_types" yaml:"excluded_types" mapstructure:"excluded_types"`

	// APIKey, Tool and Email are optional NCBI identification parameters.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	Tool   string `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
}

// NewsConfig holds settings for the news category stage.
type NewsConfig struct {
	// ItemLimit caps the items emitted per category (default 5).
	ItemLimit int `json:"item_limit" yaml:"item_limit" mapstructure:"item_limit"`

	// SourceLang is the language tag stamped on every item (default "English").
	SourceLang string `json:"source_lang" yaml:"source_lang" mapstructure:"source_lang"`
}

// SummaryMode selects the summary strategy for the whole run.
type SummaryMode string

const (
	SummaryHeuristic SummaryMode = "heuristic"
	SummaryTranslate SummaryMode = "translate"
)

// SummaryConfig holds settings for localized summaries.
type SummaryConfig struct {
	// Mode selects heuristic or translate (default translate).
	Mode SummaryMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// SourceLang and TargetLang are translation language codes (default en → zh-CN).
	SourceLang string `json:"source_lang" yaml:"source_lang" mapstructure:"source_lang"`
	TargetLang string `json:"target_lang" yaml:"target_lang" mapstructure:"target_lang"`

	// TranslateURL is the translation endpoint.
	TranslateURL string `json:"translate_url" yaml:"translate_url" mapstructure:"translate_url"`
}

// OutputConfig names the persisted files.
type OutputConfig struct {
	// DataDir holds the snapshot and history files (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// SnapshotFile and HistoryFile are file names inside DataDir.
	SnapshotFile string `json:"snapshot_file" yaml:"snapshot_file" mapstructure:"snapshot_file"`
	HistoryFile  string `json:"history_file" yaml:"history_file" mapstructure:"history_file"`

	// HistoryLimit caps identifiers kept per topic (default 1000).
	HistoryLimit int `json:"history_limit" yaml:"history_limit" mapstructure:"history_limit"`
}

// ArchiveConfig holds settings for the SQLite run archive.
type ArchiveConfig struct {
	// Enabled turns archiving on (default true).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the database file (default "data/archive.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default search result cap (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	LogLevel    string        `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	SourcesFile string        `json:"sources_file" yaml:"sources_file" mapstructure:"sources_file"`
	SecretsDir  string        `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
	HTTP        HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	PubMed      PubMedConfig  `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	News        NewsConfig    `json:"news" yaml:"news" mapstructure:"news"`
	Summary     SummaryConfig `json:"summary" yaml:"summary" mapstructure:"summary"`
	Output      OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Archive     ArchiveConfig `json:"archive" yaml:"archive" mapstructure:"archive"`
}
