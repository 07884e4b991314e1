// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot reads and writes the published snapshot file.
package snapshot

import (
	"errors"
	"log/slog"
	"os"

	"github.com/pdiddy/research-digest/internal/fsutil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Store is the snapshot file at Path.
type Store struct {
	Path   string
	Logger *slog.Logger
}

// Load returns the previous snapshot. A missing or unparseable file yields
// an empty snapshot so every source falls back to nothing.
func (s *Store) Load() *types.Snapshot {
	snap := types.NewSnapshot()
	err := fsutil.ReadJSON(s.Path, snap)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger().Info("no previous snapshot", "path", s.Path)
		return types.NewSnapshot()
	case err != nil:
		s.logger().Warn("previous snapshot unreadable, ignoring", "path", s.Path, "error", err)
		return types.NewSnapshot()
	}
	if snap.Topics == nil {
		snap.Topics = map[string][]types.ResearchRecord{}
	}
	if snap.News == nil {
		snap.News = map[string][]types.NewsItem{}
	}
	return snap
}

// Write replaces the snapshot file atomically.
func (s *Store) Write(snap *types.Snapshot) error {
	return fsutil.WriteJSON(s.Path, snap)
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
