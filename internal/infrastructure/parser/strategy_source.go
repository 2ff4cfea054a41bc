package parser

import (
	"context"
	"log/slog"

	"Paperboy/internal/domain"
	"Paperboy/internal/ports"
	"Paperboy/internal/scanner"
)

// StrategySource implements StorySource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []domain.SourceDescriptor
	limit    int
	logger   *slog.Logger
}

var _ ports.StorySource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sources.
// limit bounds the number of stories taken from each source.
func NewStrategySource(reg *scanner.Registry, sources []domain.SourceDescriptor, limit int, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		limit:    limit,
		logger:   log,
	}
}

// FetchAll scans every source in order. A failing source is logged and
// contributes an empty batch; it never aborts the others.
func (s *StrategySource) FetchAll(ctx context.Context) []domain.SourceBatch {
	s.debug("fetch all", "sources", len(s.sources), "limit", s.limit)

	batches := make([]domain.SourceBatch, 0, len(s.sources))
	for _, src := range s.sources {
		batch := domain.SourceBatch{Source: src}

		stories, err := s.scan(ctx, src)
		if err != nil {
			s.warn("source fetch failed", "source", src.Name, "url", src.URL, "error", err)
			batches = append(batches, batch)
			continue
		}

		for i := range stories {
			if stories[i].Source == "" {
				stories[i].Source = src.Name
			}
		}
		batch.Stories = stories
		s.debug("source produced stories", "source", src.Name, "count", len(stories))
		batches = append(batches, batch)
	}

	return batches
}

func (s *StrategySource) scan(ctx context.Context, src domain.SourceDescriptor) ([]domain.RawStory, error) {
	if s.registry == nil {
		return nil, errNoRegistry
	}
	strategy, err := s.registry.Resolve(src.Kind)
	if err != nil {
		return nil, err
	}
	return strategy.Scan(ctx, scanner.Request{Source: src, Limit: s.limit})
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
