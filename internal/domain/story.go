package domain

import "time"

// SourceKind enumerates the supported fetch strategies.
type SourceKind string

const (
	KindFeed SourceKind = "feed"
	KindPage SourceKind = "page"
)

// Selectors configures explicit extraction for a page source.
type Selectors struct {
	Item    string
	Title   string
	Link    string
	Summary string
}

// Empty reports whether no custom extraction was configured.
func (s Selectors) Empty() bool {
	return s.Item == ""
}

// SourceDescriptor is a configured news source, immutable for a run.
type SourceDescriptor struct {
	Name          string
	Kind          SourceKind
	URL           string
	Tags          []string
	IncludeImages bool
	Selectors     Selectors
}

// RawStory is a story as produced by a source scanner, before normalization.
type RawStory struct {
	Title     string
	URL       string
	Summary   string
	Published string
	Source    string
	Image     string
}

// SourceBatch groups the raw stories fetched from one source.
type SourceBatch struct {
	Source  SourceDescriptor
	Stories []RawStory
}

// Enrichment holds what full-text extraction found for an article.
// The zero value means nothing could be extracted.
type Enrichment struct {
	Title   string
	Text    string
	Image   string
	Summary string
}

// Story is the canonical, normalized story handed to every downstream stage.
type Story struct {
	Title     string
	URL       string
	Summary   string
	Image     string
	Source    string
	Tags      []string
	Published string
	// Text is the article body used for prompting; it is never rendered.
	Text string
	// PublishedAt is zero when the source did not provide a parseable date.
	PublishedAt time.Time
}

// Newsletter is the rendered document ready for archiving and dispatch.
type Newsletter struct {
	HTML    string
	Text    string
	Date    string
	Year    string
	Stories int
}

// Envelope carries addressing for a single send.
type Envelope struct {
	From    string
	To      []string
	Subject string
}
