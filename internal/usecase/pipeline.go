package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"Paperboy/internal/domain"
	"Paperboy/internal/formatter"
	"Paperboy/internal/ports"
)

const dateLayout = "January 02, 2006"

// StorySummarizer rewrites the summaries of an ordered story list.
type StorySummarizer interface {
	Summarize(ctx context.Context, stories []domain.Story) []domain.Story
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.StorySource
	Enricher   ports.Enricher
	Summarizer StorySummarizer
	Renderer   ports.Renderer
	Archive    ports.Archive
	Mailer     ports.Mailer

	Envelope    domain.Envelope
	APIKey      string
	MaxArticles int
	DryRun      bool
	Location    *time.Location
	Logger      *slog.Logger
}

// Pipeline implements one newsletter run: fetch, enrich, format, summarize,
// render and send.
type Pipeline struct {
	source     ports.StorySource
	enricher   ports.Enricher
	summarizer StorySummarizer
	renderer   ports.Renderer
	archive    ports.Archive
	mailer     ports.Mailer

	envelope    domain.Envelope
	apiKey      string
	maxArticles int
	dryRun      bool
	location    *time.Location
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		source:      deps.Source,
		enricher:    deps.Enricher,
		summarizer:  deps.Summarizer,
		renderer:    deps.Renderer,
		archive:     deps.Archive,
		mailer:      deps.Mailer,
		envelope:    deps.Envelope,
		apiKey:      deps.APIKey,
		maxArticles: deps.MaxArticles,
		dryRun:      deps.DryRun,
		location:    loc,
		logger:      logger,
	}
}

// Run executes the pipeline once. Fatal failures are returned as
// *domain.RunError; the report's Stage is StageFailed in that case.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunReport, error) {
	report := domain.RunReport{Stage: domain.StageConfigLoaded}
	p.logger.Info("pipeline started", "stage", report.Stage, "dry_run", p.dryRun)

	if !p.dryRun && (strings.TrimSpace(p.apiKey) == "" || p.mailer == nil) {
		return p.fail(report, domain.Fail(domain.ReasonNoCredentials, domain.ErrNoCredentials))
	}
	if p.source == nil {
		return p.fail(report, domain.Fail(domain.ReasonNoStories, domain.ErrNoStories))
	}

	batches := p.source.FetchAll(ctx)
	for _, batch := range batches {
		report.Fetched += len(batch.Stories)
	}
	if report.Fetched == 0 {
		return p.fail(report, domain.Fail(domain.ReasonNoStories, domain.ErrNoStories))
	}
	p.advance(&report, domain.StageFetched, "stories", report.Fetched, "sources", len(batches))

	stories := formatter.SortAndCap(p.format(ctx, batches, now), p.maxArticles)
	report.Stories = len(stories)
	p.advance(&report, domain.StageFormatted, "stories", report.Stories)

	if p.summarizer != nil {
		stories = p.summarizer.Summarize(ctx, stories)
	}
	p.advance(&report, domain.StageSummarized, "stories", len(stories))

	if p.renderer == nil {
		return p.fail(report, domain.Fail(domain.ReasonRender, errors.New("renderer not configured")))
	}
	local := now.In(p.location)
	letter, err := p.renderer.Render(ctx, stories, local.Format(dateLayout), local.Format("2006"))
	if err != nil {
		if domain.ReasonOf(err) == "" {
			err = domain.Fail(domain.ReasonRender, err)
		}
		return p.fail(report, err)
	}
	p.advance(&report, domain.StageRendered, "date", letter.Date)

	if p.archive != nil {
		files, aErr := p.archive.Save(ctx, letter)
		report.Files = files
		if aErr != nil {
			p.logger.Warn("archive newsletter failed", "error", aErr)
		}
	}

	if p.dryRun {
		p.logger.Info("dry run, email not sent", "stage", report.Stage, "files", report.Files)
		return report, nil
	}

	id, err := p.mailer.Send(ctx, letter, p.envelope)
	if err != nil {
		return p.fail(report, domain.Fail(domain.ReasonDispatch, err))
	}
	report.EmailID = id
	p.advance(&report, domain.StageSent, "email_id", id, "recipients", len(p.envelope.To))

	return report, nil
}

func (p *Pipeline) format(ctx context.Context, batches []domain.SourceBatch, now time.Time) []domain.Story {
	var stories []domain.Story
	for _, batch := range batches {
		for _, raw := range batch.Stories {
			var enrichment *domain.Enrichment
			if p.enricher != nil && strings.TrimSpace(raw.Summary) == "" && raw.URL != "" {
				e := p.enricher.Enrich(ctx, raw.URL)
				enrichment = &e
			}
			stories = append(stories, formatter.Format(raw, batch.Source, enrichment, now))
		}
	}
	return stories
}

func (p *Pipeline) advance(report *domain.RunReport, stage domain.Stage, args ...any) {
	report.Stage = stage
	p.logger.Info("pipeline stage", append([]any{"stage", stage}, args...)...)
}

func (p *Pipeline) fail(report domain.RunReport, err error) (domain.RunReport, error) {
	p.logger.Error("pipeline failed", "stage", domain.StageFailed, "after", report.Stage, "reason", domain.ReasonOf(err), "error", err)
	report.Stage = domain.StageFailed
	return report, err
}
