// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one refresh: every topic, then every news category,
// each isolated so that a failing source keeps its previous snapshot entry,
// followed by persistence of the snapshot and the history.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/history"
	"github.com/pdiddy/research-digest/internal/snapshot"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	defaultRecordLimit = 5
	defaultItemLimit   = 5
)

// TopicIngester produces new records for a topic.
type TopicIngester interface {
	Ingest(ctx context.Context, topic types.Topic, seen map[string]struct{}, tr types.StateTracker) ([]types.ResearchRecord, error)
}

// NewsIngester produces localized items for a news category.
type NewsIngester interface {
	Ingest(ctx context.Context, category types.Category, tr types.StateTracker) ([]types.NewsItem, error)
}

// Recorder receives the freshly ingested part of a persisted run.
type Recorder interface {
	Record(ctx context.Context, runID string, at time.Time, fresh *types.Snapshot) error
}

// Runner wires the stages of one run. Archive may be nil.
type Runner struct {
	Sources   types.Sources
	Topics    TopicIngester
	News      NewsIngester
	Snapshots *snapshot.Store
	History   *history.Store
	Archive   Recorder

	RecordLimit int
	ItemLimit   int

	RunID  string
	DryRun bool
	Now    func() time.Time
	Out    io.Writer
	Logger *slog.Logger
}

// SourceResult is the outcome of one topic or category.
type SourceResult struct {
	Kind  string            `json:"kind"`
	Key   string            `json:"key"`
	State types.SourceState `json:"state"`
	Count int               `json:"count"`
	Error string            `json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	RunID       string         `json:"runId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Sources     []SourceResult `json:"sources"`
	Persisted   bool           `json:"persisted"`
}

// Fallbacks counts sources that kept their previous entries.
func (r Report) Fallbacks() int {
	n := 0
	for _, s := range r.Sources {
		if s.State == types.StateFallback {
			n++
		}
	}
	return n
}

// Run performs one refresh. Source failures are absorbed into the report;
// the returned error is non-nil only when the snapshot or history could not
// be written. The snapshot is written first, and a history write failure
// does not roll it back.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	log := r.logger()
	now := r.now()

	previous := r.Snapshots.Load()
	seen := r.History.Load(r.Sources.TopicKeys(), previous)
	tracker := NewTracker(log)

	next := types.NewSnapshot()
	next.RunID = r.RunID
	next.GeneratedAt = now
	fresh := types.NewSnapshot()

	report := Report{RunID: r.RunID, GeneratedAt: now}

	for _, t := range r.Sources.Topics {
		tracker.Register(t.Key)
		res := SourceResult{Kind: "topic", Key: t.Key}

		records, err := r.Topics.Ingest(ctx, t, seen.Seen(t.Key), tracker)
		if err != nil {
			records = capRecords(previous.Topics[t.Key], r.recordLimit())
			tracker.Transition(t.Key, types.StateFallback)
			res.Error = err.Error()
			log.Warn("topic failed, keeping previous entries", "topic", t.Key, "kept", len(records), "error", err)
		} else {
			if records == nil {
				records = []types.ResearchRecord{}
			}
			ids := make([]string, len(records))
			for i, rec := range records {
				ids[i] = rec.PMID
			}
			seen.Append(t.Key, ids...)
			fresh.Topics[t.Key] = records
			tracker.Transition(t.Key, types.StateDone)
			log.Info("topic ingested", "topic", t.Key, "records", len(records))
		}
		next.Topics[t.Key] = records
		res.State = tracker.State(t.Key)
		res.Count = len(records)
		report.Sources = append(report.Sources, res)
	}

	for _, c := range r.Sources.Categories {
		tracker.Register(c.Key)
		res := SourceResult{Kind: "news", Key: c.Key}

		items, err := r.News.Ingest(ctx, c, tracker)
		if err != nil {
			items = capItems(previous.News[c.Key], r.itemLimit())
			tracker.Transition(c.Key, types.StateFallback)
			res.Error = err.Error()
			log.Warn("news category failed, keeping previous entries", "category", c.Key, "kept", len(items), "error", err)
		} else {
			if items == nil {
				items = []types.NewsItem{}
			}
			fresh.News[c.Key] = items
			tracker.Transition(c.Key, types.StateDone)
			log.Info("news ingested", "category", c.Key, "items", len(items))
		}
		next.News[c.Key] = items
		res.State = tracker.State(c.Key)
		res.Count = len(items)
		report.Sources = append(report.Sources, res)
	}

	if r.DryRun {
		log.Info("dry run, nothing written")
		r.printReport(report)
		return report, nil
	}

	if err := r.Snapshots.Write(next); err != nil {
		return report, fmt.Errorf("writing snapshot: %w", err)
	}
	if err := r.History.Save(seen, now); err != nil {
		return report, fmt.Errorf("writing history: %w", err)
	}
	report.Persisted = true
	log.Info("run persisted", "snapshot", r.Snapshots.Path, "history", r.History.Path)

	if r.Archive != nil {
		if err := r.Archive.Record(ctx, r.RunID, now, fresh); err != nil {
			log.Warn("archiving run failed", "error", err)
		}
	}

	r.printReport(report)
	return report, nil
}

func (r *Runner) printReport(rep Report) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, "%-6s  %-22s  %-9s  %5s  %s\n", "Kind", "Source", "State", "Count", "Error")
	fmt.Fprintln(r.Out, strings.Repeat("-", 64))
	for _, s := range rep.Sources {
		fmt.Fprintf(r.Out, "%-6s  %-22s  %-9s  %5d  %s\n", s.Kind, s.Key, s.State, s.Count, s.Error)
	}
	fmt.Fprintf(r.Out, "\nRun %s: %d sources, %d fallback\n", rep.RunID, len(rep.Sources), rep.Fallbacks())
}

func (r *Runner) recordLimit() int {
	if r.RecordLimit <= 0 {
		return defaultRecordLimit
	}
	return r.RecordLimit
}

func (r *Runner) itemLimit() int {
	if r.ItemLimit <= 0 {
		return defaultItemLimit
	}
	return r.ItemLimit
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func capRecords(prev []types.ResearchRecord, limit int) []types.ResearchRecord {
	if len(prev) > limit {
		prev = prev[:limit]
	}
	return append([]types.ResearchRecord{}, prev...)
}

func capItems(prev []types.NewsItem, limit int) []types.NewsItem {
	if len(prev) > limit {
		prev = prev[:limit]
	}
	return append([]types.NewsItem{}, prev...)
}
