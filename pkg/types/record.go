// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-digest pipeline:
// configuration, sources, emitted records and the persisted snapshot and
// history documents.
package types

// ResearchRecord is one PubMed article emitted into a snapshot. Field names
// follow the snapshot format the display layer reads; any string field may
// hold a fallback sentinel.
type ResearchRecord struct {
	PMID      string `json:"pmid"`
	Title     string `json:"title"`
	Journal   string `json:"journal"`
	PubDate   string `json:"pubDate"`
	StudyType string `json:"studyType"`

	// Authors holds the first few author names joined with ", ".
	Authors string `json:"authors"`

	// Abstract is clipped to a fixed length and never empty.
	Abstract string `json:"abstract"`

	// Summary is the localized synopsis.
	Summary string `json:"zhSummary"`

	// URL is the DOI URL when known, else PubMedURL.
	URL       string `json:"url"`
	PubMedURL string `json:"pubmedUrl"`
	DOIURL    string `json:"doiUrl"`
}

// NewsItem is one localized news story emitted into a snapshot.
type NewsItem struct {
	Title       string `json:"titleZh"`
	Summary     string `json:"summaryZh"`
	Source      string `json:"source"`
	SourceLang  string `json:"sourceLang"`
	PublishedAt string `json:"publishedAt"`
	URL         string `json:"url"`
}
