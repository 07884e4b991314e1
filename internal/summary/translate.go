// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/markup"
)

// DefaultTranslateURL is the public Google Translate endpoint.
const DefaultTranslateURL = "https://translate.googleapis.com/translate_a/single"

const fallbackExcerptRunes = 80

// Translating summarizes like Heuristic but also selects an implication
// sentence and localizes both.
type Translating struct {
	Localizer Localizer
}

// Summarize implements Summarizer.
func (t *Translating) Summarize(ctx context.Context, in Input) string {
	coreEn := markup.Head(CoreSentence(in.Title, in.Abstract), coreMaxRunes)
	hintEn := markup.Head(ImplicationSentence(in.Title, in.Abstract, coreEn), hintMaxRunes)

	var coreZh, hintZh string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		coreZh = t.Localizer.Localize(ctx, coreEn)
	}()
	go func() {
		defer wg.Done()
		hintZh = t.Localizer.Localize(ctx, hintEn)
	}()
	wg.Wait()

	return lead(in) + "核心观点：" + coreZh + " 临床提示：" + hintZh
}

// Translator calls an external translation service.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// GoogleTranslator uses the keyless translate_a/single endpoint.
type GoogleTranslator struct {
	Fetcher httputil.Fetcher
	BaseURL string
}

// Translate implements Translator.
func (g *GoogleTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{
		"client": {"gtx"},
		"sl":     {from},
		"tl":     {to},
		"dt":     {"t"},
		"q":      {text},
	}
	base := g.BaseURL
	if base == "" {
		base = DefaultTranslateURL
	}

	var resp []any
	if err := g.Fetcher.GetJSON(ctx, base+"?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	return parseGoogleResponse(resp)
}

// parseGoogleResponse joins the translated segments of a response shaped
// [[["译文", "source", ...], ...], ...].
func parseGoogleResponse(resp []any) (string, error) {
	if len(resp) == 0 {
		return "", errors.New("empty translate response")
	}
	segments, ok := resp[0].([]any)
	if !ok {
		return "", errors.New("unexpected translate response format")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("translate response had no text")
	}
	return out, nil
}

// TranslatingLocalizer localizes through a Translator and falls back to a
// short source-language excerpt when translation fails.
type TranslatingLocalizer struct {
	Translator Translator
	From       string
	To         string
	Logger     *slog.Logger
}

// Localize implements Localizer.
func (l *TranslatingLocalizer) Localize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if l.Translator != nil {
		out, err := l.Translator.Translate(ctx, text, l.From, l.To)
		if err == nil {
			return out
		}
		l.logger().Warn("translation unavailable, using excerpt", "error", err)
	}
	return Excerpt(text)
}

func (l *TranslatingLocalizer) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// Excerpt is the offline fallback for untranslated text.
func Excerpt(text string) string {
	return "该英文报道关注最新动态：" + markup.Head(text, fallbackExcerptRunes) + "..."
}
