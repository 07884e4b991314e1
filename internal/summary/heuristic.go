// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/research-digest/internal/markup"
)

const (
	minSentenceRunes = 30
	coreMaxRunes     = 260
	hintMaxRunes     = 220

	noConclusion   = "No abstract conclusion available."
	noImplication  = "This study provides additional evidence for clinical evaluation."
	defaultMethod  = "临床研究"
	defaultTopicZh = "相关研究主题"
)

var (
	coreKeywords = []string{
		"significant", "improved", "reduced", "decreased", "associated", "risk",
		"effective", "conclusion", "suggest", "found", "predict",
	}
	implicationKeywords = []string{
		"conclusion", "suggest", "indicate", "therefore", "may", "could", "associated", "predict",
	}

	samplePrefixed = regexp.MustCompile(`(?i)\b(?:n\s*=\s*|enrolled\s+|included\s+|patients?\s*[:=]?\s*)(\d{2,5})\b`)
	sampleSuffixed = regexp.MustCompile(`(?i)\b(\d{2,5})\s+(?:patients?|participants?|subjects?)\b`)
)

// Heuristic summarizes without any network call. The finding sentence is
// kept in the source language.
type Heuristic struct{}

// Summarize implements Summarizer.
func (Heuristic) Summarize(_ context.Context, in Input) string {
	core := markup.Head(CoreSentence(in.Title, in.Abstract), coreMaxRunes)
	return lead(in) + "核心发现：" + core
}

// lead is the first template sentence: topic, method and sample size.
func lead(in Input) string {
	topic := strings.TrimSpace(in.TopicLabel)
	if topic == "" {
		topic = defaultTopicZh
	}
	sample := ""
	if hint := SampleHint(in.Abstract); hint != "" {
		sample = "（" + hint + "）"
	}
	return fmt.Sprintf("该文聚焦%s，属于%s%s。", topic, Method(in.StudyType), sample)
}

// Method maps a publication-type label to a localized study design.
func Method(studyType string) string {
	t := strings.ToLower(studyType)
	switch {
	case strings.Contains(t, "review"):
		return "综述研究"
	case strings.Contains(t, "multicenter"):
		return "多中心临床研究"
	case strings.Contains(t, "clinical trial"):
		return "临床试验"
	case strings.Contains(t, "case"):
		return "病例研究"
	default:
		return defaultMethod
	}
}

// SampleHint returns "样本量约为 N" when text mentions a sample size, else "".
func SampleHint(text string) string {
	m := samplePrefixed.FindStringSubmatch(text)
	if m == nil {
		m = sampleSuffixed.FindStringSubmatch(text)
	}
	if m == nil {
		return ""
	}
	return "样本量约为 " + m[1]
}

// Sentences splits text after '.', '!' or '?' followed by whitespace and
// keeps sentences of at least 30 characters.
func Sentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && text[i+1] == ' ' {
			out = appendSentence(out, text[start:i+1])
			start = i + 2
		}
	}
	if start < len(text) {
		out = appendSentence(out, text[start:])
	}
	return out
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if utf8.RuneCountInString(s) >= minSentenceRunes {
		out = append(out, s)
	}
	return out
}

// CoreSentence picks the abstract sentence that most likely states the
// main result: the first one containing a result keyword, else the first
// sentence, else the title.
func CoreSentence(title, abstract string) string {
	candidates := Sentences(abstract)
	for _, s := range candidates {
		if containsAny(s, coreKeywords) {
			return s
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	if strings.TrimSpace(title) != "" {
		return title
	}
	return noConclusion
}

// ImplicationSentence picks a sentence other than core that states an
// implication, else any other sentence, else the title.
func ImplicationSentence(title, abstract, core string) string {
	candidates := Sentences(abstract)
	for _, s := range candidates {
		if s != core && containsAny(s, implicationKeywords) {
			return s
		}
	}
	for _, s := range candidates {
		if s != core {
			return s
		}
	}
	if strings.TrimSpace(title) != "" {
		return title
	}
	return noImplication
}

func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
