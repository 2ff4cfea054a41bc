// Package formatter turns raw scanner output into canonical stories.
package formatter

import (
	"sort"
	"strings"
	"time"

	"Paperboy/internal/domain"
	"Paperboy/internal/textnorm"
)

var publishedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.ANSIC,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Format normalizes raw into a Story. enrichment may be nil. The result
// never carries markup in title or summary and its URLs always have a scheme.
func Format(raw domain.RawStory, src domain.SourceDescriptor, enrichment *domain.Enrichment, now time.Time) (story domain.Story) {
	defer func() {
		if recover() != nil {
			story = domain.Story{
				Source:    src.Name,
				Tags:      copyTags(src.Tags),
				Published: now.Format(time.RFC3339),
			}
		}
	}()

	summary := raw.Summary
	title := raw.Title
	var text, image string

	if src.IncludeImages {
		image = raw.Image
	}
	if enrichment != nil {
		if strings.TrimSpace(summary) == "" {
			summary = enrichment.Summary
		}
		if strings.TrimSpace(title) == "" {
			title = enrichment.Title
		}
		text = enrichment.Text
		if image == "" && src.IncludeImages {
			image = enrichment.Image
		}
	}

	source := raw.Source
	if source == "" {
		source = src.Name
	}

	publishedAt, ok := ParsePublished(raw.Published)
	published := now.Format(time.RFC3339)
	if ok {
		published = publishedAt.Format(time.RFC3339)
	}

	return domain.Story{
		Title:       textnorm.Clean(title),
		URL:         textnorm.Absolutize(raw.URL),
		Summary:     textnorm.Clean(summary),
		Image:       textnorm.Absolutize(image),
		Source:      strings.TrimSpace(source),
		Tags:        copyTags(src.Tags),
		Published:   published,
		Text:        textnorm.Clean(text),
		PublishedAt: publishedAt,
	}
}

// ParsePublished parses the date formats commonly found in feeds. It reports
// false for empty or unrecognized input.
func ParsePublished(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortAndCap orders stories newest first and keeps at most max of them.
// Stories without a source date sort as oldest and keep their fetch order.
func SortAndCap(stories []domain.Story, max int) []domain.Story {
	out := append([]domain.Story(nil), stories...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func copyTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	return append([]string(nil), tags...)
}
