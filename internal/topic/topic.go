// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topic turns one PubMed topic query into a short list of new,
// summarized research records.
package topic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/internal/markup"
	"github.com/pdiddy/research-digest/internal/pubmed"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	// DefaultRecordLimit caps records emitted per topic.
	DefaultRecordLimit = 5

	abstractMaxRunes = 700
	maxAuthors       = 3
	maxStudyTypes    = 3

	noAbstract    = "No abstract available from PubMed."
	noTitle       = "无标题"
	noJournal     = "未知期刊"
	noDate        = "日期未知"
	noAuthors     = "Unknown"
	noStudyType   = "Not specified"
	defaultLangEN = "english"
)

// DefaultExcludedTypes are publication types that carry no primary findings.
var DefaultExcludedTypes = []string{"Published Erratum", "Comment", "Editorial", "Letter", "News"}

// Ingester runs the search, metadata and abstract requests for a topic.
type Ingester struct {
	PubMed     *pubmed.Client
	Summarizer summary.Summarizer
	Logger     *slog.Logger
}

// Ingest returns up to the configured record limit of records whose PMID
// is not in seen, in PubMed ranking order. Any request failure fails the
// whole topic; an empty search result is not an error.
func (in *Ingester) Ingest(ctx context.Context, topic types.Topic, seen map[string]struct{}, tr types.StateTracker) ([]types.ResearchRecord, error) {
	if tr == nil {
		tr = types.NopTracker{}
	}
	cfg := in.PubMed.Config
	log := in.logger().With("topic", topic.Key)

	language := cfg.Language
	if language == "" {
		language = defaultLangEN
	}

	tr.Transition(topic.Key, types.StateFetching)
	ids, err := in.PubMed.Search(ctx, pubmed.Term(topic.Query, language))
	if err != nil {
		return nil, fmt.Errorf("searching topic %s: %w", topic.Key, err)
	}
	log.Debug("search complete", "candidates", len(ids))
	if len(ids) == 0 {
		tr.Transition(topic.Key, types.StateParsing)
		tr.Transition(topic.Key, types.StateFiltering)
		return []types.ResearchRecord{}, nil
	}

	var (
		summaries map[string]pubmed.Summary
		abstracts map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summaries, err = in.PubMed.Summaries(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		abstracts, err = in.PubMed.Abstracts(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching records for topic %s: %w", topic.Key, err)
	}

	tr.Transition(topic.Key, types.StateParsing)
	log.Debug("records fetched", "summaries", len(summaries), "abstracts", len(abstracts))

	tr.Transition(topic.Key, types.StateFiltering)
	limit := cfg.RecordLimit
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	excluded := excludedSet(cfg.ExcludedTypes)

	records := make([]types.ResearchRecord, 0, limit)
	for _, id := range ids {
		if len(records) >= limit {
			break
		}
		if _, ok := seen[id]; ok {
			continue
		}
		s, ok := summaries[id]
		if !ok {
			continue
		}
		if hasAny(s.PubTypes, excluded) {
			log.Debug("skipping excluded publication type", "pmid", id, "pubtypes", s.PubTypes)
			continue
		}
		records = append(records, in.record(ctx, topic, id, s, abstracts[id]))
	}
	return records, nil
}

func (in *Ingester) record(ctx context.Context, topic types.Topic, id string, s pubmed.Summary, abstract string) types.ResearchRecord {
	title := orDefault(s.Title, noTitle)
	studyType := noStudyType
	if len(s.PubTypes) > 0 {
		studyType = strings.Join(head(s.PubTypes, maxStudyTypes), " / ")
	}

	clipped := ""
	if strings.TrimSpace(abstract) != "" {
		clipped = markup.Clip(abstract, abstractMaxRunes)
	}

	pubmedURL := pubmed.RecordURL(id)
	doiURL := pubmed.DOIURL(pubmed.ParseDOI(s.ELocationID))
	link := pubmedURL
	if doiURL != "" {
		link = doiURL
	}

	label := topic.Label
	if label == "" {
		label = topic.Key
	}

	return types.ResearchRecord{
		PMID:      id,
		Title:     title,
		Journal:   orDefault(firstNonEmpty(s.FullJournalName, s.Source), noJournal),
		PubDate:   orDefault(s.PubDate, noDate),
		StudyType: studyType,
		Authors:   authors(s.Authors),
		Abstract:  orDefault(clipped, noAbstract),
		Summary: in.Summarizer.Summarize(ctx, summary.Input{
			TopicLabel: label,
			Title:      s.Title,
			StudyType:  studyType,
			Abstract:   clipped,
		}),
		URL:       link,
		PubMedURL: pubmedURL,
		DOIURL:    doiURL,
	}
}

func (in *Ingester) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

func authors(list []pubmed.Author) string {
	var names []string
	for _, a := range list {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return noAuthors
	}
	return strings.Join(head(names, maxAuthors), ", ")
}

func excludedSet(configured []string) map[string]struct{} {
	if len(configured) == 0 {
		configured = DefaultExcludedTypes
	}
	set := make(map[string]struct{}, len(configured))
	for _, t := range configured {
		set[t] = struct{}{}
	}
	return set
}

func hasAny(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
