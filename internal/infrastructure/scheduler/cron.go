package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"Paperboy/internal/ports"
)

// CronScheduler triggers a job on a standard five-field cron expression in a
// fixed timezone. Runs never overlap: a trigger that fires while the previous
// run is still going is skipped.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu      sync.Mutex
	runner  *cron.Cron
	stopped chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for spec evaluated in loc.
func NewCronScheduler(spec string, loc *time.Location, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CronScheduler{spec: spec, location: loc, logger: logger}
}

// Validate reports whether spec parses as a cron expression.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start registers job and begins dispatching. It returns immediately; the
// scheduler stops on Stop or when ctx is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return errors.New("scheduler job is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runner != nil {
		return errors.New("scheduler already started")
	}

	logAdapter := cron.VerbosePrintfLogger(slogPrintf{c.logger})
	runner := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(logAdapter),
		cron.WithChain(cron.Recover(logAdapter), cron.SkipIfStillRunning(logAdapter)),
	)

	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.spec, err)
	}
	runner.Schedule(schedule, cron.FuncJob(func() {
		job(time.Now().In(c.location))
	}))

	runner.Start()
	c.runner = runner
	stopped := make(chan struct{})
	c.stopped = stopped
	c.logger.Info("scheduler started", "schedule", c.spec, "timezone", c.location.String(),
		"next", schedule.Next(time.Now().In(c.location)))

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-stopped:
		}
	}()

	return nil
}

// Stop halts dispatching and waits for a running job to finish or for ctx to
// expire.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.runner
	stopped := c.stopped
	c.runner = nil
	c.stopped = nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}
	close(stopped)

	done := runner.Stop()
	select {
	case <-done.Done():
		c.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// slogPrintf routes cron's printf-style diagnostics into slog at debug level.
type slogPrintf struct {
	logger *slog.Logger
}

func (s slogPrintf) Printf(format string, args ...interface{}) {
	s.logger.Debug(fmt.Sprintf(format, args...), "component", "cron")
}
