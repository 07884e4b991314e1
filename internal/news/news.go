// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package news merges the feeds of one category into a short list of
// localized news items.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-digest/internal/feed"
	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/markup"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	// DefaultItemLimit caps items emitted per category.
	DefaultItemLimit = 5

	// DefaultSourceLang labels the language of the upstream feeds.
	DefaultSourceLang = "English"

	synopsisMaxRunes = 80
	noKeyPoint       = "核心要点：报道聚焦最新进展与潜在影响。"
)

// ErrAllFeedsFailed is returned when no feed of a category could be loaded.
var ErrAllFeedsFailed = errors.New("every feed failed")

// Ingester loads and localizes news categories.
type Ingester struct {
	Fetcher   httputil.Fetcher
	Localizer summary.Localizer
	Config    types.NewsConfig
	Logger    *slog.Logger
}

type sourced struct {
	feed.Item
	source string
}

// Ingest fetches every feed of category in order, skipping feeds that fail,
// and returns the first items by link with the earliest feed winning ties.
// Items without both a title and a link are dropped.
func (in *Ingester) Ingest(ctx context.Context, category types.Category, tr types.StateTracker) ([]types.NewsItem, error) {
	if tr == nil {
		tr = types.NopTracker{}
	}
	log := in.logger().With("category", category.Key)

	tr.Transition(category.Key, types.StateFetching)
	var (
		merged []sourced
		failed int
		seen   = map[string]struct{}{}
	)
	for _, f := range category.Feeds {
		items, err := feed.Load(ctx, in.Fetcher, f.URL)
		if err != nil {
			failed++
			log.Warn("feed unavailable, skipping", "source", f.Source, "url", f.URL, "error", err)
			continue
		}
		for _, it := range items {
			if it.Link == "" || it.Title == "" {
				continue
			}
			if _, dup := seen[it.Link]; dup {
				continue
			}
			seen[it.Link] = struct{}{}
			merged = append(merged, sourced{Item: it, source: f.Source})
		}
	}
	if len(category.Feeds) > 0 && failed == len(category.Feeds) {
		return nil, fmt.Errorf("category %s: %w", category.Key, ErrAllFeedsFailed)
	}

	tr.Transition(category.Key, types.StateParsing)
	limit := in.Config.ItemLimit
	if limit <= 0 {
		limit = DefaultItemLimit
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}

	tr.Transition(category.Key, types.StateFiltering)
	lang := in.Config.SourceLang
	if lang == "" {
		lang = DefaultSourceLang
	}
	label := category.Label
	if label == "" {
		label = category.Key
	}

	out := make([]types.NewsItem, 0, len(merged))
	for _, it := range merged {
		titleZh := in.Localizer.Localize(ctx, it.Title)
		desc := it.Description
		if desc == "" {
			desc = it.Title
		}
		descZh := in.Localizer.Localize(ctx, desc)

		out = append(out, types.NewsItem{
			Title:       titleZh,
			Summary:     Synopsis(label, titleZh, descZh),
			Source:      it.source,
			SourceLang:  lang,
			PublishedAt: it.Published,
			URL:         it.Link,
		})
	}
	return out, nil
}

func (in *Ingester) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

// Synopsis is the two-sentence localized summary of a news item.
func Synopsis(label, titleZh, descZh string) string {
	desc := strings.TrimSpace(descZh)
	keyPoint := noKeyPoint
	if desc != "" {
		keyPoint = "核心要点：" + markup.Head(desc, synopsisMaxRunes)
		if utf8.RuneCountInString(desc) > synopsisMaxRunes {
			keyPoint += "..."
		}
	}
	return fmt.Sprintf("这是一条%s新闻，重点围绕“%s”。%s", label, titleZh, keyPoint)
}
