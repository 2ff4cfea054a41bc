package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"Paperboy/internal/domain"
	"Paperboy/internal/scanner"
)

// FeedScanner reads RSS, Atom and JSON feeds.
type FeedScanner struct {
	client    *http.Client
	userAgent string
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires an HTTP client; nil falls back to a bounded default.
func NewFeedScanner(client *http.Client, userAgent string) *FeedScanner {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &FeedScanner{client: client, userAgent: userAgent}
}

// Kind identifies the strategy inside the registry.
func (f *FeedScanner) Kind() domain.SourceKind {
	return domain.KindFeed
}

// Scan parses the feed and returns up to req.Limit entries in feed order.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawStory, error) {
	body, err := get(ctx, f.client, f.userAgent, req.Source.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = req.Source.Name
	}

	items := feed.Items
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}

	stories := make([]domain.RawStory, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		stories = append(stories, domain.RawStory{
			Title:     item.Title,
			URL:       itemLink(item),
			Summary:   itemSummary(item),
			Published: itemPublished(item),
			Source:    source,
			Image:     itemImage(item),
		})
	}

	return stories, nil
}

func itemLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}

func itemSummary(item *gofeed.Item) string {
	if strings.TrimSpace(item.Description) != "" {
		return item.Description
	}
	return item.Content
}

func itemPublished(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.Format(time.RFC3339)
	case item.Published != "":
		return item.Published
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.Format(time.RFC3339)
	default:
		return item.Updated
	}
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
