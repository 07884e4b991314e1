// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SearchOptions holds parameters for archive queries.
type SearchOptions struct {
	// Query is an FTS5 expression over title, abstract and summary.
	Query string

	// Topic restricts results to one topic key.
	Topic string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the options name neither a query nor a topic.
func (o SearchOptions) IsEmpty() bool {
	return o.Query == "" && o.Topic == ""
}

// Hit is one archived record.
type Hit struct {
	Topic     string `json:"topic" yaml:"topic"`
	PMID      string `json:"pmid" yaml:"pmid"`
	RunID     string `json:"runId" yaml:"run_id"`
	Title     string `json:"title" yaml:"title"`
	Journal   string `json:"journal" yaml:"journal"`
	PubDate   string `json:"pubDate" yaml:"pub_date"`
	StudyType string `json:"studyType" yaml:"study_type"`
	Summary   string `json:"zhSummary" yaml:"summary"`
	URL       string `json:"url" yaml:"url"`
}

// Search returns archived records ranked by relevance for full-text
// queries, or newest first for topic-only queries.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]Hit, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)
	if useFTS {
		qb.WriteString(
			`SELECT r.topic, r.pmid, r.run_id, r.title, r.journal, r.pub_date, r.study_type, r.summary, r.url
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.topic, r.pmid, r.run_id, r.title, r.journal, r.pub_date, r.study_type, r.summary, r.url
			FROM records r
			WHERE 1=1`)
	}
	if opts.Topic != "" {
		qb.WriteString(` AND r.topic = ?`)
		args = append(args, opts.Topic)
	}
	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.rowid DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Topic, &h.PMID, &h.RunID, &h.Title, &h.Journal,
			&h.PubDate, &h.StudyType, &h.Summary, &h.URL); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Run is one archived pipeline run.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generated_at"`
	Records     int       `json:"records" yaml:"records"`
	News        int       `json:"news" yaml:"news"`
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, records, news FROM runs ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			at string
		)
		if err := rows.Scan(&r.ID, &at, &r.Records, &r.News); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.GeneratedAt, _ = time.Parse(time.RFC3339, at)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
