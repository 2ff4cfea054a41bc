// Package textnorm holds the pure string helpers shared by the fetch and
// format stages: HTML stripping, whitespace collapsing and URL fix-ups.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictExpr = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)
	// Tags that separate words when rendered; inline tags such as <a> or <b>
	// are stripped without leaving a gap.
	blockTagExpr = regexp.MustCompile(`(?i)</?(?:p|br|div|li|ul|ol|h[1-6]|blockquote|tr|td|th|table|section|article|header|footer|hr|pre|figcaption)\b`)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Clean strips HTML markup, unescapes entities, collapses every whitespace
// run into a single space and trims the result.
func Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if strings.ContainsAny(text, "<&") {
		text = blockTagExpr.ReplaceAllString(text, " $0")
		text = html.UnescapeString(stripPolicy().Sanitize(text))
	}
	return strings.Join(strings.Fields(text), " ")
}

// CleanStrict is Clean followed by removal of anything that is not a word
// character, whitespace or basic punctuation.
func CleanStrict(text string) string {
	cleaned := strictExpr.ReplaceAllString(Clean(text), "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// Absolutize makes sure a non-empty URL carries an explicit scheme.
func Absolutize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return "https://" + raw
}

// ExtractImageURL returns the og:image of an HTML document, falling back to
// the first <img> source. Empty when nothing is found.
func ExtractImageURL(document string) string {
	if strings.TrimSpace(document) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return ""
	}
	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		if content = strings.TrimSpace(content); content != "" {
			return content
		}
	}
	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		return strings.TrimSpace(src)
	}
	return ""
}

// Truncate shortens text to at most limit runes, cutting at the last word
// boundary when one is available.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}
