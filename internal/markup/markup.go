// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup turns XML and HTML fragments into plain text.
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var cdataReplacer = strings.NewReplacer("<![CDATA[", "", "]]>", "")

// Text decodes character entities (named, decimal and hex), replaces every
// tag with a space, collapses whitespace runs and trims the result. Plain
// text passes through unchanged apart from whitespace normalization.
func Text(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}

	var b strings.Builder
	writeText(&b, doc.Selection)
	return collapse(b.String())
}

// writeText appends the text nodes below s, separating elements by spaces.
func writeText(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			b.WriteString(c.Text())
		case "#comment":
			b.WriteByte(' ')
		default:
			b.WriteByte(' ')
			writeText(b, c)
			b.WriteByte(' ')
		}
	})
}

// Unwrap removes literal CDATA markers that survive feed decoding.
func Unwrap(s string) string {
	return cdataReplacer.Replace(s)
}

// Clip truncates s to max runes and appends "..." when it was cut.
func Clip(s string, max int) string {
	r := []rune(s)
	if max < 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// Head returns the first max runes of s without an ellipsis.
func Head(s string, max int) string {
	r := []rune(s)
	if max < 0 || len(r) <= max {
		return s
	}
	return string(r[:max])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
