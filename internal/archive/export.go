// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// Export writes archived records matching opts to w as "yaml" or "json".
// Empty options export everything.
func (s *Store) Export(ctx context.Context, w io.Writer, format string, opts SearchOptions) error {
	opts.MaxResults = exportLimit
	hits, err := s.Search(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if hits == nil {
		hits = []Hit{}
	}

	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(hits); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}
