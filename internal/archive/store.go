// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps every record and news item a run emitted in a
// SQLite database with an FTS5 index over record text, so past digests
// stay searchable after the snapshot has moved on.
//
// FTS5 requires building with the sqlite_fts5 tag.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	// DefaultPath is used when the config leaves the path empty.
	DefaultPath = "data/archive.db"

	defaultMaxResults = 20
)

// Store is an open archive database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the archive at cfg.Path and ensures the schema.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			generated_at TEXT NOT NULL,
			records INTEGER NOT NULL,
			news INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			pmid TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			title TEXT,
			journal TEXT,
			pub_date TEXT,
			study_type TEXT,
			authors TEXT,
			abstract TEXT,
			summary TEXT,
			url TEXT,
			UNIQUE(topic, pmid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_topic ON records(topic)`,
		`CREATE TABLE IF NOT EXISTS news_items (
			url TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			title TEXT,
			summary TEXT,
			source TEXT,
			published_at TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE records_fts USING fts5(title, abstract, summary, content=records, content_rowid=rowid)`,
		`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, title, abstract, summary) VALUES (new.rowid, new.title, new.abstract, new.summary);
		END`,
		`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract, summary) VALUES('delete', old.rowid, old.title, old.abstract, old.summary);
		END`,
		`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract, summary) VALUES('delete', old.rowid, old.title, old.abstract, old.summary);
			INSERT INTO records_fts(rowid, title, abstract, summary) VALUES (new.rowid, new.title, new.abstract, new.summary);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Record stores a run and the records and items it freshly ingested. A
// record already archived under the same topic is updated in place.
func (s *Store) Record(ctx context.Context, runID string, at time.Time, fresh *types.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	nRecords, nNews := 0, 0
	for _, recs := range fresh.Topics {
		nRecords += len(recs)
	}
	for _, items := range fresh.News {
		nNews += len(items)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, records, news) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET generated_at=excluded.generated_at,
			records=excluded.records, news=excluded.news`,
		runID, at.UTC().Format(time.RFC3339), nRecords, nNews,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (topic, pmid, run_id, title, journal, pub_date, study_type, authors, abstract, summary, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(topic, pmid) DO UPDATE SET
			run_id=excluded.run_id, title=excluded.title, journal=excluded.journal,
			pub_date=excluded.pub_date, study_type=excluded.study_type, authors=excluded.authors,
			abstract=excluded.abstract, summary=excluded.summary, url=excluded.url`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer recStmt.Close()

	for topic, recs := range fresh.Topics {
		for _, r := range recs {
			if _, err := recStmt.ExecContext(ctx,
				topic, r.PMID, runID, r.Title, r.Journal, r.PubDate, r.StudyType,
				r.Authors, r.Abstract, r.Summary, r.URL,
			); err != nil {
				return fmt.Errorf("inserting record %s: %w", r.PMID, err)
			}
		}
	}

	newsStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO news_items (url, category, run_id, title, summary, source, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			category=excluded.category, run_id=excluded.run_id, title=excluded.title,
			summary=excluded.summary, source=excluded.source, published_at=excluded.published_at`)
	if err != nil {
		return fmt.Errorf("preparing news insert: %w", err)
	}
	defer newsStmt.Close()

	for category, items := range fresh.News {
		for _, it := range items {
			if _, err := newsStmt.ExecContext(ctx,
				it.URL, category, runID, it.Title, it.Summary, it.Source, it.PublishedAt,
			); err != nil {
				return fmt.Errorf("inserting news item %s: %w", it.URL, err)
			}
		}
	}

	return tx.Commit()
}
