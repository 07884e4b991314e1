// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed fetches and parses RSS and Atom documents into plain-text items.
package feed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/markup"
)

// Item is one feed entry. Title and Description are plain text; Link and
// Published are kept as the feed published them.
type Item struct {
	Title       string
	Link        string
	Published   string
	Description string
}

// Parse reads a feed document and returns its items in document order.
// Items with neither a title nor a link are dropped.
func Parse(r io.Reader) ([]Item, error) {
	f, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	items := make([]Item, 0, len(f.Items))
	for _, it := range f.Items {
		if it == nil {
			continue
		}
		desc := it.Description
		if strings.TrimSpace(desc) == "" {
			desc = it.Content
		}
		item := Item{
			Title:       plain(it.Title),
			Link:        strings.TrimSpace(markup.Unwrap(it.Link)),
			Published:   strings.TrimSpace(markup.Unwrap(it.Published)),
			Description: clean(desc),
		}
		if item.Title == "" && item.Link == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Load fetches url through f and parses the response.
func Load(ctx context.Context, f httputil.Fetcher, url string) ([]Item, error) {
	body, err := f.GetText(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(strings.NewReader(body))
}

// plain collapses whitespace in a field gofeed has already entity-decoded.
// Decoding again would turn escaped literals into markup.
func plain(s string) string {
	return strings.Join(strings.Fields(markup.Unwrap(s)), " ")
}

// clean reduces an HTML field (description or content) to text.
func clean(s string) string {
	return markup.Text(markup.Unwrap(s))
}
