// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/pubmed"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/pkg/types"
)

const searchJSON = `{"esearchresult": {"count": "5", "idlist": ["12345", "67890", "11111", "22222", "33333"]}}`

const summaryJSON = `{
  "result": {
    "uids": ["12345", "67890", "11111", "22222"],
    "12345": {"uid": "12345", "title": "Already delivered.", "pubtype": ["Journal Article"]},
    "67890": {
      "uid": "67890",
      "title": "Intensive control in hypertensive nephropathy.",
      "pubdate": "2024 Mar",
      "source": "Kidney Int",
      "fulljournalname": "Kidney international",
      "authors": [{"name": "Smith J"}, {"name": "Lee K"}, {"name": "Wang L"}, {"name": "Kim H"}],
      "pubtype": ["Journal Article", "Randomized Controlled Trial", "Multicenter Study", "Research Support"],
      "elocationid": "doi: 10.1016/j.kint.2024.01.001"
    },
    "11111": {"uid": "11111", "title": "An opinion.", "pubtype": ["Editorial"]},
    "22222": {"uid": "22222"}
  }
}`

const efetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>67890</PMID><Article><Abstract>
<AbstractText>We enrolled 245 patients with hypertensive nephropathy in this trial.</AbstractText>
<AbstractText>Intensive control significantly reduced proteinuria at two years.</AbstractText>
</Abstract></Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`

func newServer(t *testing.T, failSummary bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "esearch.fcgi"):
			assert.Equal(t, `("x"[Title/Abstract]) AND english[Language]`, r.URL.Query().Get("term"))
			fmt.Fprint(w, searchJSON)
		case strings.HasSuffix(r.URL.Path, "esummary.fcgi"):
			if failSummary {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, summaryJSON)
		case strings.HasSuffix(r.URL.Path, "efetch.fcgi"):
			fmt.Fprint(w, efetchXML)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newIngester(url string, cfg types.PubMedConfig) *Ingester {
	cfg.BaseURL = url
	return &Ingester{
		PubMed:     &pubmed.Client{Fetcher: &httputil.Client{MaxAttempts: 1}, Config: cfg},
		Summarizer: summary.Heuristic{},
	}
}

var testTopic = types.Topic{Key: "htn_kidney", Label: "高血压肾病", Query: `("x"[Title/Abstract])`}

type recordingTracker struct {
	mu     sync.Mutex
	states []types.SourceState
}

func (r *recordingTracker) Transition(_ string, to types.SourceState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, to)
}

func TestIngest_FiltersSeenExcludedAndMissing(t *testing.T) {
	ts := newServer(t, false)
	defer ts.Close()

	seen := map[string]struct{}{"12345": {}}
	tr := &recordingTracker{}
	records, err := newIngester(ts.URL, types.PubMedConfig{}).Ingest(context.Background(), testTopic, seen, tr)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "67890", records[0].PMID)
	assert.Equal(t, "22222", records[1].PMID)
	for _, r := range records {
		assert.NotEqual(t, "12345", r.PMID)
		assert.NotEqual(t, "11111", r.PMID)
	}
	assert.Equal(t, []types.SourceState{types.StateFetching, types.StateParsing, types.StateFiltering}, tr.states)
}

func TestIngest_BuildsRecord(t *testing.T) {
	ts := newServer(t, false)
	defer ts.Close()

	records, err := newIngester(ts.URL, types.PubMedConfig{}).Ingest(context.Background(), testTopic, nil, nil)
	require.NoError(t, err)
	r := records[1]
	require.Equal(t, "67890", r.PMID)

	assert.Equal(t, "Intensive control in hypertensive nephropathy.", r.Title)
	assert.Equal(t, "Kidney international", r.Journal)
	assert.Equal(t, "2024 Mar", r.PubDate)
	assert.Equal(t, "Smith J, Lee K, Wang L", r.Authors)
	assert.Equal(t, "Journal Article / Randomized Controlled Trial / Multicenter Study", r.StudyType)
	assert.Equal(t, "We enrolled 245 patients with hypertensive nephropathy in this trial. Intensive control significantly reduced proteinuria at two years.", r.Abstract)
	assert.Equal(t, "https://doi.org/10.1016/j.kint.2024.01.001", r.DOIURL)
	assert.Equal(t, r.DOIURL, r.URL)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/67890/", r.PubMedURL)
	assert.True(t, strings.HasPrefix(r.Summary, "该文聚焦高血压肾病，属于多中心临床研究（样本量约为 245）。"), r.Summary)
}

func TestIngest_AppliesSentinels(t *testing.T) {
	ts := newServer(t, false)
	defer ts.Close()

	records, err := newIngester(ts.URL, types.PubMedConfig{}).Ingest(context.Background(), testTopic, map[string]struct{}{"12345": {}, "67890": {}}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, "无标题", r.Title)
	assert.Equal(t, "未知期刊", r.Journal)
	assert.Equal(t, "日期未知", r.PubDate)
	assert.Equal(t, "Unknown", r.Authors)
	assert.Equal(t, "Not specified", r.StudyType)
	assert.Equal(t, "No abstract available from PubMed.", r.Abstract)
	assert.Empty(t, r.DOIURL)
	assert.Equal(t, r.PubMedURL, r.URL)
	assert.NotEmpty(t, r.Summary)
}

func TestIngest_RecordLimit(t *testing.T) {
	ts := newServer(t, false)
	defer ts.Close()

	records, err := newIngester(ts.URL, types.PubMedConfig{RecordLimit: 1}).Ingest(context.Background(), testTopic, nil, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "12345", records[0].PMID)
}

func TestIngest_ConfiguredExclusions(t *testing.T) {
	ts := newServer(t, false)
	defer ts.Close()

	cfg := types.PubMedConfig{ExcludedTypes: []string{"Randomized Controlled Trial"}}
	records, err := newIngester(ts.URL, cfg).Ingest(context.Background(), testTopic, nil, nil)
	require.NoError(t, err)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.PMID)
	}
	assert.Equal(t, []string{"12345", "11111", "22222"}, ids)
}

func TestIngest_EmptySearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "esearch.fcgi"), "unexpected request %s", r.URL.Path)
		fmt.Fprint(w, `{"esearchresult": {"idlist": []}}`)
	}))
	defer ts.Close()

	records, err := newIngester(ts.URL, types.PubMedConfig{}).Ingest(context.Background(), testTopic, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIngest_SummaryFailureFailsTopic(t *testing.T) {
	ts := newServer(t, true)
	defer ts.Close()

	_, err := newIngester(ts.URL, types.PubMedConfig{}).Ingest(context.Background(), testTopic, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "htn_kidney")
}
