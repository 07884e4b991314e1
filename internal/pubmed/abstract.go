// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pdiddy/research-digest/internal/markup"
)

// efetch PubmedArticleSet structures. Only the fields the digest needs.
type pubmedArticle struct {
	PMID     string         `xml:"MedlineCitation>PMID"`
	Abstract []abstractText `xml:"MedlineCitation>Article>Abstract>AbstractText"`
}

type abstractText struct {
	Inner string `xml:",innerxml"`
}

// ParseAbstracts reads an efetch PubmedArticleSet document and returns the
// abstract of every record keyed by PMID. Multiple AbstractText segments are
// joined with single spaces; a record without segments maps to "". Records
// without a numeric PMID are skipped. A record that fails to decode is
// skipped, and a document that breaks off mid-stream yields the records read
// up to that point.
func ParseAbstracts(r io.Reader) map[string]string {
	out := make(map[string]string)

	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "PubmedArticle" {
			continue
		}

		var a pubmedArticle
		if err := dec.DecodeElement(&a, &se); err != nil {
			continue
		}

		pmid := strings.TrimSpace(a.PMID)
		if !isNumeric(pmid) {
			continue
		}

		segments := make([]string, 0, len(a.Abstract))
		for _, seg := range a.Abstract {
			if text := markup.Text(seg.Inner); text != "" {
				segments = append(segments, text)
			}
		}
		out[pmid] = strings.Join(segments, " ")
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
