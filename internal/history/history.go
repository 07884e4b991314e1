// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists the identifiers already emitted per topic so a
// run only surfaces records it has not shown before.
package history

import (
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/pdiddy/research-digest/internal/fsutil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultLimit is the number of identifiers kept per topic.
const DefaultLimit = 1000

// Set is the in-memory history for one run. Each topic list is ordered
// oldest first and holds no duplicates.
type Set struct {
	topics map[string][]string
	limit  int
}

// NewSet returns an empty history with a list for every key.
func NewSet(topicKeys []string, limit int) *Set {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Set{topics: make(map[string][]string, len(topicKeys)), limit: limit}
	for _, k := range topicKeys {
		s.topics[k] = []string{}
	}
	return s
}

// Seen returns the identifiers recorded for topic as a lookup set.
func (s *Set) Seen(topic string) map[string]struct{} {
	ids := s.topics[topic]
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen
}

// IDs returns a copy of the identifiers recorded for topic, oldest first.
func (s *Set) IDs(topic string) []string {
	return append([]string(nil), s.topics[topic]...)
}

// Topics returns the topic keys present, sorted.
func (s *Set) Topics() []string {
	keys := make([]string, 0, len(s.topics))
	for k := range s.topics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether no topic has any identifier.
func (s *Set) Empty() bool {
	for _, ids := range s.topics {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// Append records ids for topic after the existing ones, drops repeats
// (the earliest occurrence keeps its position) and evicts the oldest
// entries beyond the limit.
func (s *Set) Append(topic string, ids ...string) {
	s.topics[topic] = normalize(append(s.topics[topic], ids...), s.limit)
}

// Document returns the persisted form stamped with now.
func (s *Set) Document(now time.Time) types.History {
	doc := types.History{UpdatedAt: now.UTC(), Topics: make(map[string][]string, len(s.topics))}
	for k, ids := range s.topics {
		doc.Topics[k] = normalize(ids, s.limit)
	}
	return doc
}

// Store loads and saves the history file.
type Store struct {
	Path   string
	Limit  int
	Logger *slog.Logger
}

// Load reads the history file. A missing or unparseable file yields an
// empty history; neither is an error. When every topic is empty the history
// is seeded from the identifiers in the previous snapshot so records already
// on display are not reported as new.
func (st *Store) Load(topicKeys []string, previous *types.Snapshot) *Set {
	set := NewSet(topicKeys, st.Limit)
	log := st.logger()

	var doc types.History
	err := fsutil.ReadJSON(st.Path, &doc)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("no history file, starting fresh", "path", st.Path)
	case err != nil:
		log.Warn("history file unreadable, starting fresh", "path", st.Path, "error", err)
	default:
		for k, ids := range doc.Topics {
			set.topics[k] = normalize(ids, set.limit)
		}
	}

	if set.Empty() && previous != nil {
		seeded := 0
		for _, k := range topicKeys {
			for _, rec := range previous.Topics[k] {
				if rec.PMID != "" {
					set.Append(k, rec.PMID)
					seeded++
				}
			}
		}
		if seeded > 0 {
			log.Info("history seeded from previous snapshot", "identifiers", seeded)
		}
	}
	return set
}

// Save writes the history file atomically.
func (st *Store) Save(set *Set, now time.Time) error {
	doc := set.Document(now)
	return fsutil.WriteJSON(st.Path, &doc)
}

func (st *Store) logger() *slog.Logger {
	if st.Logger == nil {
		return slog.Default()
	}
	return st.Logger
}

// normalize removes duplicates keeping first occurrences, then keeps the
// last limit entries.
func normalize(ids []string, limit int) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
