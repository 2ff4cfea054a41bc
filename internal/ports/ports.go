package ports

import (
	"context"
	"time"

	"Paperboy/internal/domain"
)

// StorySource pulls raw stories from every configured source.
type StorySource interface {
	FetchAll(ctx context.Context) []domain.SourceBatch
}

// Enricher fetches a full article and extracts text, image and summary.
type Enricher interface {
	Enrich(ctx context.Context, url string) domain.Enrichment
}

// TextGenerator sends a prompt to a generative model and returns its text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Renderer turns the final story list into a newsletter document.
type Renderer interface {
	Render(ctx context.Context, stories []domain.Story, date, year string) (domain.Newsletter, error)
}

// MarkupConverter compiles email markup (MJML) into final HTML.
type MarkupConverter interface {
	Convert(ctx context.Context, markup string) (string, error)
}

// Archive persists the rendered newsletter as an audit artifact.
type Archive interface {
	Save(ctx context.Context, letter domain.Newsletter) ([]string, error)
}

// Mailer dispatches a rendered newsletter and returns the delivery id.
type Mailer interface {
	Send(ctx context.Context, letter domain.Newsletter, env domain.Envelope) (string, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
