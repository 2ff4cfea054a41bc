package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"Paperboy/internal/domain"
	"Paperboy/internal/scanner"
)

// Generic fallback used when a page source has no configured selectors.
const (
	heuristicItem    = "article.article, article.story, article.post, div.article, div.story, div.post"
	heuristicTitle   = "h1, h2, h3"
	heuristicLink    = "a"
	heuristicSummary = "p.summary, p.excerpt, div.summary, div.excerpt"
)

// PageScanner extracts story blocks from an HTML listing page.
type PageScanner struct {
	client    *http.Client
	userAgent string
}

var _ scanner.Scanner = (*PageScanner)(nil)

// NewPageScanner wires an HTTP client; nil falls back to a bounded default.
func NewPageScanner(client *http.Client, userAgent string) *PageScanner {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &PageScanner{client: client, userAgent: userAgent}
}

// Kind identifies the strategy inside the registry.
func (p *PageScanner) Kind() domain.SourceKind {
	return domain.KindPage
}

// Scan fetches the page and returns up to req.Limit story blocks.
func (p *PageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawStory, error) {
	base, err := url.Parse(req.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", req.Source.URL, err)
	}

	doc, err := p.fetchDocument(ctx, req.Source.URL)
	if err != nil {
		return nil, err
	}

	return extractStories(doc, base, req.Source, req.Limit), nil
}

func (p *PageScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := get(ctx, p.client, p.userAgent, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractStories(doc *goquery.Document, base *url.URL, src domain.SourceDescriptor, limit int) []domain.RawStory {
	sel := selectorsFor(src)

	var stories []domain.RawStory
	doc.Find(sel.Item).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if limit > 0 && len(stories) >= limit {
			return false
		}

		story, ok := parseBlock(block, sel, base)
		if !ok {
			return true
		}
		story.Source = src.Name
		stories = append(stories, story)
		return true
	})

	return stories
}

func selectorsFor(src domain.SourceDescriptor) domain.Selectors {
	if src.Selectors.Empty() {
		return domain.Selectors{
			Item:    heuristicItem,
			Title:   heuristicTitle,
			Link:    heuristicLink,
			Summary: heuristicSummary,
		}
	}
	return src.Selectors
}

func parseBlock(block *goquery.Selection, sel domain.Selectors, base *url.URL) (domain.RawStory, bool) {
	titleNode := block.Find(sel.Title).First()
	title := strings.TrimSpace(titleNode.Text())
	if title == "" {
		return domain.RawStory{}, false
	}

	href := linkHref(block, sel.Link)
	if href == "" {
		return domain.RawStory{}, false
	}

	story := domain.RawStory{
		Title: title,
		URL:   resolveHref(base, href),
	}

	if sel.Summary != "" {
		story.Summary = strings.TrimSpace(block.Find(sel.Summary).First().Text())
	}

	return story, true
}

// linkHref returns the href of the first element matching selector, looking
// into its descendants when the match itself is not an anchor.
func linkHref(block *goquery.Selection, selector string) string {
	node := block.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	if href, ok := node.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := node.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil || ref.IsAbs() {
		return href
	}
	if base.Scheme == "" || base.Host == "" {
		return href
	}
	return base.ResolveReference(ref).String()
}
