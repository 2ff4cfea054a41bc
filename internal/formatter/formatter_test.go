package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paperboy/internal/domain"
)

var fixedNow = time.Date(2025, time.June, 3, 12, 0, 0, 0, time.UTC)

func hasScheme(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func TestFormatNormalizes(t *testing.T) {
	t.Parallel()

	src := domain.SourceDescriptor{Name: "Wire", Tags: []string{"tech"}, IncludeImages: true}
	raw := domain.RawStory{
		Title:     "  <b>Big</b>\n news ",
		URL:       "example.com/big",
		Summary:   "<p>Line one.</p>\r\n<p>Line two.</p>",
		Published: "Mon, 02 Jun 2025 10:00:00 +0000",
		Source:    "Example Wire",
		Image:     "//cdn.example.com/big.png",
	}

	story := Format(raw, src, nil, fixedNow)

	assert.Equal(t, "Big news", story.Title)
	assert.Equal(t, "https://example.com/big", story.URL)
	assert.Equal(t, "Line one. Line two.", story.Summary)
	assert.Equal(t, "https://cdn.example.com/big.png", story.Image)
	assert.Equal(t, "Example Wire", story.Source)
	assert.Equal(t, []string{"tech"}, story.Tags)
	assert.Equal(t, "2025-06-02T10:00:00Z", story.Published)
	assert.False(t, story.PublishedAt.IsZero())
}

func TestFormatUsesEnrichmentWhenSummaryMissing(t *testing.T) {
	t.Parallel()

	src := domain.SourceDescriptor{Name: "Page", IncludeImages: true}
	raw := domain.RawStory{Title: "Headline", URL: "https://example.com/a"}
	enrichment := &domain.Enrichment{
		Title:   "Ignored",
		Text:    "Full body text.",
		Image:   "https://example.com/a.jpg",
		Summary: "Extractive summary.",
	}

	story := Format(raw, src, enrichment, fixedNow)

	assert.Equal(t, "Headline", story.Title)
	assert.Equal(t, "Extractive summary.", story.Summary)
	assert.Equal(t, "Full body text.", story.Text)
	assert.Equal(t, "https://example.com/a.jpg", story.Image)
	assert.Equal(t, "Page", story.Source)
}

func TestFormatRespectsIncludeImages(t *testing.T) {
	t.Parallel()

	src := domain.SourceDescriptor{Name: "NoImg", IncludeImages: false}
	raw := domain.RawStory{Title: "t", URL: "https://x.com", Image: "https://x.com/i.png"}
	story := Format(raw, src, &domain.Enrichment{Image: "https://x.com/j.png"}, fixedNow)

	assert.Empty(t, story.Image)
}

func TestFormatStampsMissingDate(t *testing.T) {
	t.Parallel()

	for _, published := range []string{"", "sometime last week"} {
		story := Format(domain.RawStory{Title: "t", URL: "x.com", Published: published}, domain.SourceDescriptor{}, nil, fixedNow)

		assert.Equal(t, "2025-06-03T12:00:00Z", story.Published)
		assert.True(t, story.PublishedAt.IsZero())
	}
}

func TestFormatURLsAlwaysCarryScheme(t *testing.T) {
	t.Parallel()

	inputs := []string{"example.com", "http://a.b", "https://c.d/e", "//cdn.x/y", "www.site.org/path?q=1"}
	for _, in := range inputs {
		story := Format(domain.RawStory{URL: in, Image: in}, domain.SourceDescriptor{IncludeImages: true}, nil, fixedNow)
		assert.True(t, hasScheme(story.URL), "url %q", story.URL)
		assert.True(t, hasScheme(story.Image), "image %q", story.Image)
	}

	empty := Format(domain.RawStory{}, domain.SourceDescriptor{IncludeImages: true}, nil, fixedNow)
	assert.Empty(t, empty.URL)
	assert.Empty(t, empty.Image)
	assert.NotNil(t, empty.Tags)
}

func TestFormatCopiesTags(t *testing.T) {
	t.Parallel()

	tags := []string{"a", "b"}
	story := Format(domain.RawStory{}, domain.SourceDescriptor{Tags: tags}, nil, fixedNow)
	tags[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, story.Tags)
}

func TestParsePublished(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"2025-06-02T10:00:00Z",
		"2025-06-02T10:00:00+02:00",
		"Mon, 02 Jun 2025 10:00:00 +0000",
		"Mon, 02 Jun 2025 10:00:00 GMT",
		"Mon, 2 Jun 2025 10:00:00 -0400",
		"2025-06-02",
	} {
		_, ok := ParsePublished(in)
		assert.True(t, ok, "layout for %q", in)
	}

	_, ok := ParsePublished("yesterday")
	assert.False(t, ok)
}

func TestSortAndCap(t *testing.T) {
	t.Parallel()

	at := func(day int) time.Time { return time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC) }
	stories := []domain.Story{
		{Title: "undated-1"},
		{Title: "june-1", PublishedAt: at(1)},
		{Title: "june-3", PublishedAt: at(3)},
		{Title: "undated-2"},
		{Title: "june-2", PublishedAt: at(2)},
	}

	sorted := SortAndCap(stories, 0)
	titles := make([]string, 0, len(sorted))
	for _, s := range sorted {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"june-3", "june-2", "june-1", "undated-1", "undated-2"}, titles)

	capped := SortAndCap(stories, 2)
	require.Len(t, capped, 2)
	assert.Equal(t, "june-3", capped[0].Title)
	assert.Equal(t, "undated-1", stories[0].Title, "input must not be reordered")
}
