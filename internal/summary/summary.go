// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary builds short localized synopses for research records and
// localizes news text.
//
// Two record strategies share the Summarizer interface: Heuristic composes
// fixed templates around an extracted English finding, and Translating also
// picks an implication sentence and localizes both sentences. The strategy
// is chosen once per run from configuration.
package summary

import (
	"context"
	"fmt"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Input is what a record summary is derived from.
type Input struct {
	// TopicLabel is the localized topic name.
	TopicLabel string

	Title string

	// StudyType is the joined publication-type label (e.g. "Journal Article / Review").
	StudyType string

	// Abstract is the plain-text abstract, empty when the source had none.
	Abstract string
}

// Summarizer produces a localized synopsis. Implementations never return
// an empty string.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) string
}

// Localizer renders source-language text in the target language. It never
// fails: when translation is unavailable it returns a fallback built from
// the source text. Empty input yields "".
type Localizer interface {
	Localize(ctx context.Context, text string) string
}

// New returns the Summarizer for mode. An empty mode selects SummaryTranslate.
func New(mode types.SummaryMode, loc Localizer) (Summarizer, error) {
	switch mode {
	case types.SummaryHeuristic:
		return Heuristic{}, nil
	case types.SummaryTranslate, "":
		if loc == nil {
			return nil, fmt.Errorf("summary mode %q requires a localizer", types.SummaryTranslate)
		}
		return &Translating{Localizer: loc}, nil
	default:
		return nil, fmt.Errorf("unknown summary mode %q (want %q or %q)", mode, types.SummaryHeuristic, types.SummaryTranslate)
	}
}
