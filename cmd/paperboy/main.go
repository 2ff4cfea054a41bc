package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"Paperboy/internal/app"
	"Paperboy/internal/config"
	"Paperboy/internal/domain"
	"Paperboy/internal/infrastructure/mail"
	"Paperboy/internal/logging"
	"Paperboy/internal/ports"
)

type flags struct {
	configPath string
	verbose    bool
	dryRun     bool
	schedule   string
}

// reportedError marks an error that has already been logged.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// newMailer is swapped in tests.
var newMailer = func(apiKey string) ports.Mailer {
	return mail.NewResendMailer(apiKey)
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "paperboy",
		Short: "Build and email a newsletter from RSS feeds and news pages",
		Long: `paperboy fetches the configured sources, summarizes each story with a
text-generation model, renders an HTML and plain text newsletter and sends it
through Resend.

Example usage:
  paperboy                            # one run with ./config.yaml
  paperboy --config news.yaml --dry-run
  paperboy --schedule "0 7 * * *"     # stay running, send every morning
  paperboy test-email                 # check RESEND_API_KEY, EMAIL_FROM, EMAIL_TO`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (default $PAPERBOY_CONFIG or config.yaml)")
	cmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "render and write output files without sending")
	cmd.Flags().StringVar(&f.schedule, "schedule", "", "cron expression; keep running and send on this schedule")

	cmd.AddCommand(&cobra.Command{
		Use:   "test-email",
		Short: "Send a fixed test email using RESEND_API_KEY, EMAIL_FROM and EMAIL_TO",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendTestEmail(cmd.Context(), cmd.OutOrStdout(), f.verbose, time.Now())
		},
	})

	return cmd
}

func run(ctx context.Context, out io.Writer, f flags) error {
	// .env is optional
	_ = godotenv.Load()

	boot := logging.NewWithWriter(out, "info", f.verbose)

	path := config.ResolvePath(f.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		boot.Error("load config failed", "path", path, "error", err)
		return reportedError{err}
	}

	logger := logging.NewWithWriter(out, cfg.Logging.Level, f.verbose)
	logger.Debug("configuration loaded", "sources", len(cfg.Sources), "max_articles", cfg.Project.MaxArticles, "provider", cfg.Model.Provider)

	application, err := app.New(cfg, app.Options{DryRun: f.dryRun, Schedule: f.schedule}, logger)
	if err != nil {
		logger.Error("build application failed", "error", err)
		return reportedError{err}
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		return reportedError{err}
	}
	return nil
}

func sendTestEmail(ctx context.Context, out io.Writer, verbose bool, now time.Time) error {
	_ = godotenv.Load()

	logger := logging.NewWithWriter(out, "info", verbose)

	email, err := config.EmailFromEnv()
	if err != nil {
		logger.Error("email settings missing", "error", err)
		return reportedError{err}
	}
	if email.APIKey == "" {
		logger.Error("email settings missing", "error", domain.ErrNoCredentials)
		return reportedError{domain.ErrNoCredentials}
	}

	id, err := mail.SendTestEmail(ctx, newMailer(email.APIKey), email.From, email.To, now)
	if err != nil {
		logger.Error("send test email failed", "error", err)
		return reportedError{err}
	}

	logger.Info("test email sent", "email_id", id, "from", email.From, "to", []string(email.To))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var logged reportedError
		if !errors.As(err, &logged) {
			logging.New("info", false).Error("paperboy failed", "error", err)
		}
		stop()
		os.Exit(1)
	}
}
