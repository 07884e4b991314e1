// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Snapshot is the single artifact consumed by the display layer. It is
// rewritten wholesale each run.
type Snapshot struct {
	RunID       string                      `json:"runId,omitempty"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Topics      map[string][]ResearchRecord `json:"topics"`
	News        map[string][]NewsItem       `json:"news"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Topics: map[string][]ResearchRecord{},
		News:   map[string][]NewsItem{},
	}
}

// History is the persisted set of identifiers already emitted, per topic,
// oldest first.
type History struct {
	UpdatedAt time.Time           `json:"updatedAt"`
	Topics    map[string][]string `json:"topics"`
}
