package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Paperboy/internal/config"
	"Paperboy/internal/domain"
	"Paperboy/internal/infrastructure/enricher"
	"Paperboy/internal/infrastructure/llm"
	"Paperboy/internal/infrastructure/mail"
	"Paperboy/internal/infrastructure/parser"
	"Paperboy/internal/infrastructure/render"
	"Paperboy/internal/infrastructure/scheduler"
	"Paperboy/internal/infrastructure/storage"
	"Paperboy/internal/logging"
	"Paperboy/internal/ports"
	"Paperboy/internal/scanner"
	"Paperboy/internal/usecase"
)

// Options are the command-line switches layered over the config file.
type Options struct {
	DryRun   bool
	Schedule string
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	opts     Options
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds the full adapter graph for one configuration.
func New(cfg config.Config, opts Options, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, false)
	}
	if opts.Schedule == "" {
		opts.Schedule = cfg.Project.Schedule
	}

	client := parser.NewHTTPClient(cfg.HTTP.Timeout)

	registry := scanner.NewRegistry(
		parser.NewFeedScanner(client, cfg.HTTP.UserAgent),
		parser.NewPageScanner(client, cfg.HTTP.UserAgent),
	)
	source := parser.NewStrategySource(registry, cfg.Descriptors(), cfg.Project.MaxArticles, baseLogger.With("component", "source"))

	enricher.Initialize()
	contentEnricher := enricher.New(client, cfg.HTTP.UserAgent, baseLogger.With("component", "enricher"))

	generator, err := llm.NewGenerator(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}
	summarizer := usecase.NewSummarizer(generator, cfg.Model.MaxInputChars, baseLogger.With("component", "summarizer"))

	renderer, err := render.New(render.NewMJMLConverter(cfg.Render.MJMLPath), cfg.Render.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	var mailer ports.Mailer
	if cfg.Email.APIKey != "" {
		mailer = mail.NewResendMailer(cfg.Email.APIKey)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Enricher:   contentEnricher,
		Summarizer: summarizer,
		Renderer:   renderer,
		Archive:    storage.NewFileArchive(cfg.Project.OutputDir),
		Mailer:     mailer,
		Envelope: domain.Envelope{
			From:    cfg.Email.From,
			To:      cfg.Email.To,
			Subject: cfg.Email.Subject,
		},
		APIKey:      cfg.Email.APIKey,
		MaxArticles: cfg.Project.MaxArticles,
		DryRun:      opts.DryRun,
		Location:    cfg.Project.Location(),
		Logger:      baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, opts: opts, logger: baseLogger, pipeline: pipeline}, nil
}

// Run performs a single newsletter run, or blocks running on the configured
// schedule until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.opts.Schedule != "" {
		return a.RunScheduled(ctx, a.opts.Schedule)
	}

	report, err := a.pipeline.Run(ctx, time.Now())
	if err != nil {
		return err
	}
	a.logger.Info("newsletter run finished", "stage", report.Stage, "stories", report.Stories, "email_id", report.EmailID, "files", report.Files)
	return nil
}

// RunScheduled runs the pipeline on spec until ctx is cancelled. Individual
// run failures are logged, never returned.
func (a *Application) RunScheduled(ctx context.Context, spec string) error {
	if err := scheduler.Validate(spec); err != nil {
		return err
	}

	driver := scheduler.NewCronScheduler(spec, a.cfg.Project.Location(), a.logger.With("component", "scheduler"))
	jobs := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := jobs.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := jobs.Stop(stopCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
