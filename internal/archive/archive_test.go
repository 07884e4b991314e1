// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-digest/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.ArchiveConfig{Path: filepath.Join(t.TempDir(), "db", "archive.db")})
	if err != nil && strings.Contains(err.Error(), "no such module: fts5") {
		t.Skip("go-sqlite3 built without FTS5; run with -tags sqlite_fts5 (mage test)")
	}
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func freshSnapshot() *types.Snapshot {
	snap := types.NewSnapshot()
	snap.Topics["htn_kidney"] = []types.ResearchRecord{
		{PMID: "100", Title: "Albuminuria in hypertensive nephropathy", Abstract: "Proteinuria declined with intensive control.", Summary: "该文聚焦高血压肾病", URL: "https://doi.org/10.1/a"},
		{PMID: "101", Title: "Renal denervation outcomes", Abstract: "Blood pressure fell at six months.", URL: "https://pubmed.ncbi.nlm.nih.gov/101/"},
	}
	snap.Topics["portal_hypertension"] = []types.ResearchRecord{
		{PMID: "200", Title: "Hepatic venous pressure gradient and bleeding", Abstract: "HVPG predicted variceal bleeding."},
	}
	snap.News["world"] = []types.NewsItem{{Title: "标题", URL: "https://news.example/1", Source: "BBC"}}
	return snap
}

var runAt = time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC)

func TestRecordAndSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "run-1", runAt, freshSnapshot()))

	hits, err := s.Search(ctx, SearchOptions{Query: "proteinuria"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "100", hits[0].PMID)
	assert.Equal(t, "htn_kidney", hits[0].Topic)
	assert.Equal(t, "run-1", hits[0].RunID)

	hits, err = s.Search(ctx, SearchOptions{Query: "pressure", Topic: "portal_hypertension"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "200", hits[0].PMID)
}

func TestSearch_TopicOnlyNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "run-1", runAt, freshSnapshot()))

	hits, err := s.Search(ctx, SearchOptions{Topic: "htn_kidney", MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "101", hits[0].PMID)
}

func TestRecord_UpdatesExistingRecord(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "run-1", runAt, freshSnapshot()))

	again := types.NewSnapshot()
	again.Topics["htn_kidney"] = []types.ResearchRecord{{PMID: "100", Title: "Retitled cohort on albuminuria"}}
	require.NoError(t, s.Record(ctx, "run-2", runAt.Add(24*time.Hour), again))

	hits, err := s.Search(ctx, SearchOptions{Query: "retitled"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "run-2", hits[0].RunID)

	hits, err = s.Search(ctx, SearchOptions{Query: "proteinuria"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "run-1", runAt, freshSnapshot()))
	require.NoError(t, s.Record(ctx, "run-2", runAt.Add(time.Hour), types.NewSnapshot()))

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, Run{ID: "run-1", GeneratedAt: runAt, Records: 3, News: 1}, runs[1])
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "run-1", runAt, freshSnapshot()))

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf, "json", SearchOptions{Topic: "htn_kidney"}))
	var hits []Hit
	require.NoError(t, json.Unmarshal(buf.Bytes(), &hits))
	assert.Len(t, hits, 2)

	buf.Reset()
	require.NoError(t, s.Export(ctx, &buf, "yaml", SearchOptions{}))
	var all []Hit
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &all))
	assert.Len(t, all, 3)

	assert.Error(t, s.Export(ctx, &buf, "csv", SearchOptions{}))
}
