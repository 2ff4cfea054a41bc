package enricher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"Paperboy/internal/domain"
	"Paperboy/internal/infrastructure/parser"
	"Paperboy/internal/ports"
	"Paperboy/internal/textnorm"
)

const (
	defaultSentences = 3
	maxBodyBytes     = 5 << 20
)

// Enricher downloads full articles and extracts their readable content.
type Enricher struct {
	client    *http.Client
	userAgent string
	sentences int
	logger    *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// New wires an HTTP client; nil falls back to the scanners' bounded default.
func New(client *http.Client, agent string, logger *slog.Logger) *Enricher {
	if client == nil {
		client = parser.NewHTTPClient(0)
	}
	if agent == "" {
		agent = parser.DefaultUserAgent
	}
	return &Enricher{
		client:    client,
		userAgent: agent,
		sentences: defaultSentences,
		logger:    logger,
	}
}

// Enrich returns title, text, top image and an extractive summary for the
// article at rawURL. Any failure yields the zero Enrichment.
func (e *Enricher) Enrich(ctx context.Context, rawURL string) domain.Enrichment {
	result, err := e.extract(ctx, rawURL)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("enrich article failed", "url", rawURL, "error", err)
		}
		return domain.Enrichment{}
	}
	return result
}

func (e *Enricher) extract(ctx context.Context, rawURL string) (domain.Enrichment, error) {
	pageURL, err := url.Parse(textnorm.Absolutize(rawURL))
	if err != nil || pageURL.Host == "" {
		return domain.Enrichment{}, fmt.Errorf("invalid article url %q", rawURL)
	}

	body, err := e.download(ctx, pageURL.String())
	if err != nil {
		return domain.Enrichment{}, err
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("extract article: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	text := strings.TrimSpace(article.TextContent)

	image := strings.TrimSpace(article.Image)
	if image == "" {
		image = textnorm.ExtractImageURL(string(body))
	}

	summary := Summarize(title, text, e.sentences)
	if summary == "" {
		summary = strings.TrimSpace(article.Excerpt)
	}

	return domain.Enrichment{
		Title:   title,
		Text:    text,
		Image:   resolve(pageURL, image),
		Summary: summary,
	}, nil
}

func (e *Enricher) download(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return body, nil
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
