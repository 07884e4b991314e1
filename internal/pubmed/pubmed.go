// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI E-utilities (esearch, esummary, efetch)
// and parses their responses.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultBaseURL is the E-utilities root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

var doiPattern = regexp.MustCompile(`(?i)\bdoi:\s*([^\s;]+)`)

// Client wraps the three E-utilities endpoints used per topic.
type Client struct {
	Fetcher httputil.Fetcher
	Config  types.PubMedConfig
}

// Summary is the per-record metadata returned by esummary.
type Summary struct {
	UID             string   `json:"uid"`
	Title           string   `json:"title"`
	PubDate         string   `json:"pubdate"`
	Source          string   `json:"source"`
	FullJournalName string   `json:"fulljournalname"`
	Authors         []Author `json:"authors"`
	PubTypes        []string `json:"pubtype"`
	ELocationID     string   `json:"elocationid"`
}

// Author is one esummary author entry.
type Author struct {
	Name     string `json:"name"`
	AuthType string `json:"authtype"`
}

type searchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type summaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// Term appends the language restriction to a topic query.
func Term(query, language string) string {
	if language == "" {
		return query
	}
	return fmt.Sprintf("%s AND %s[Language]", query, language)
}

// Search returns candidate PMIDs for term, newest first, capped at the
// configured search limit.
func (c *Client) Search(ctx context.Context, term string) ([]string, error) {
	retmax := c.Config.SearchLimit
	if retmax <= 0 {
		retmax = 40
	}
	params := c.params()
	params.Set("retmode", "json")
	params.Set("sort", "pub date")
	params.Set("retmax", fmt.Sprintf("%d", retmax))
	params.Set("term", term)

	var sr searchResponse
	if err := c.Fetcher.GetJSON(ctx, c.endpoint("esearch.fcgi", params), &sr); err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	return sr.Result.IDList, nil
}

// Summaries returns esummary metadata keyed by PMID. Entries that fail to
// decode are omitted.
func (c *Client) Summaries(ctx context.Context, ids []string) (map[string]Summary, error) {
	params := c.params()
	params.Set("retmode", "json")
	params.Set("id", strings.Join(ids, ","))

	var sr summaryResponse
	if err := c.Fetcher.GetJSON(ctx, c.endpoint("esummary.fcgi", params), &sr); err != nil {
		return nil, fmt.Errorf("esummary: %w", err)
	}

	out := make(map[string]Summary, len(ids))
	for key, raw := range sr.Result {
		if key == "uids" {
			continue
		}
		var s Summary
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		out[key] = s
	}
	return out, nil
}

// Abstracts fetches the efetch XML for ids and returns abstract text keyed by PMID.
func (c *Client) Abstracts(ctx context.Context, ids []string) (map[string]string, error) {
	params := c.params()
	params.Set("retmode", "xml")
	params.Set("id", strings.Join(ids, ","))

	body, err := c.Fetcher.GetText(ctx, c.endpoint("efetch.fcgi", params))
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	return ParseAbstracts(strings.NewReader(body)), nil
}

// RecordURL is the PubMed page for pmid.
func RecordURL(pmid string) string {
	return "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
}

// DOIURL resolves a bare DOI. An empty doi yields "".
func DOIURL(doi string) string {
	if doi == "" {
		return ""
	}
	return "https://doi.org/" + doi
}

// ParseDOI extracts the DOI from an esummary elocationid string such as
// "pii: S0000. doi: 10.1000/xyz.123". It returns "" when none is present.
func ParseDOI(elocation string) string {
	m := doiPattern.FindStringSubmatch(elocation)
	if m == nil {
		return ""
	}
	return m[1]
}

func (c *Client) params() url.Values {
	p := url.Values{"db": {"pubmed"}}
	if c.Config.APIKey != "" {
		p.Set("api_key", c.Config.APIKey)
	}
	if c.Config.Tool != "" {
		p.Set("tool", c.Config.Tool)
	}
	if c.Config.Email != "" {
		p.Set("email", c.Config.Email)
	}
	return p
}

func (c *Client) endpoint(name string, params url.Values) string {
	base := c.Config.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + name + "?" + params.Encode()
}
