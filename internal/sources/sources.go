// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources loads the topic and news-feed definitions.
package sources

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Default returns the built-in topics and categories.
func Default() types.Sources {
	return types.Sources{
		Topics: []types.Topic{
			{
				Key:   "htn_kidney",
				Label: "高血压肾病",
				Query: `("hypertensive nephropathy"[Title/Abstract] OR "hypertensive kidney disease"[Title/Abstract] OR "hypertension-related chronic kidney disease"[Title/Abstract])`,
			},
			{
				Key:   "portal_hypertension",
				Label: "门静脉高压症",
				Query: `("portal hypertension"[Title/Abstract] OR "portopulmonary hypertension"[Title/Abstract] OR "hepatic venous pressure gradient"[Title/Abstract])`,
			},
		},
		Categories: []types.Category{
			{
				Key:   "world",
				Label: "世界时事",
				Feeds: []types.Feed{
					{Source: "Reuters", URL: "https://feeds.reuters.com/reuters/worldNews"},
					{Source: "BBC", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
				},
			},
			{
				Key:   "finance",
				Label: "金融市场",
				Feeds: []types.Feed{
					{Source: "Reuters", URL: "https://feeds.reuters.com/reuters/businessNews"},
					{Source: "BBC", URL: "https://feeds.bbci.co.uk/news/business/rss.xml"},
				},
			},
		},
	}
}

// Load reads the sources file at path. An empty path or a missing file
// yields Default.
func Load(path string) (types.Sources, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return types.Sources{}, fmt.Errorf("reading sources file: %w", err)
	}

	var s types.Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return types.Sources{}, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	if err := Validate(s); err != nil {
		return types.Sources{}, fmt.Errorf("sources file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks that keys are present and unique and that every topic
// has a query and every feed a URL.
func Validate(s types.Sources) error {
	if len(s.Topics) == 0 && len(s.Categories) == 0 {
		return errors.New("no topics or categories defined")
	}
	topicKeys := map[string]bool{}
	for i, t := range s.Topics {
		switch {
		case t.Key == "":
			return fmt.Errorf("topic %d has no key", i)
		case topicKeys[t.Key]:
			return fmt.Errorf("duplicate topic key %q", t.Key)
		case t.Query == "":
			return fmt.Errorf("topic %q has no query", t.Key)
		}
		topicKeys[t.Key] = true
	}
	catKeys := map[string]bool{}
	for i, c := range s.Categories {
		switch {
		case c.Key == "":
			return fmt.Errorf("category %d has no key", i)
		case catKeys[c.Key]:
			return fmt.Errorf("duplicate category key %q", c.Key)
		}
		catKeys[c.Key] = true
		for _, f := range c.Feeds {
			if f.URL == "" {
				return fmt.Errorf("category %q has a feed without url", c.Key)
			}
		}
	}
	return nil
}
