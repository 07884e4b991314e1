// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Topic is a fixed research subject with its PubMed query.
type Topic struct {
	// Key identifies the topic in the snapshot and history files (e.g. "htn_kidney").
	Key string `json:"key" yaml:"key"`

	// Label is the localized display name used in summaries (e.g. "高血压肾病").
	Label string `json:"label" yaml:"label"`

	// Query is the PubMed search expression, without the language filter.
	Query string `json:"query" yaml:"query"`
}

// Feed is one RSS endpoint inside a news category.
type Feed struct {
	Source string `json:"source" yaml:"source"`
	URL    string `json:"url" yaml:"url"`
}

// Category is a news category with its ordered feed list.
type Category struct {
	// Key identifies the category in the snapshot (e.g. "world").
	Key string `json:"key" yaml:"key"`

	// Label is the localized category name used in synopses (e.g. "世界时事").
	Label string `json:"label" yaml:"label"`

	Feeds []Feed `json:"feeds" yaml:"feeds"`
}

// Sources lists everything a run ingests.
type Sources struct {
	Topics     []Topic    `json:"topics" yaml:"topics"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// TopicKeys returns the topic keys in configuration order.
func (s Sources) TopicKeys() []string {
	keys := make([]string, len(s.Topics))
	for i, t := range s.Topics {
		keys[i] = t.Key
	}
	return keys
}
