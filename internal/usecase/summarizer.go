package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Paperboy/internal/domain"
	"Paperboy/internal/ports"
	"Paperboy/internal/textnorm"
)

const promptTemplate = `Please provide a concise, engaging summary of this news story in 2-3 sentences.
Write in a casual, journalistic tone. Focus on the key facts and why they matter.

Title: %s
Source: %s
Content: %s

Summary:`

var errEmptySummary = errors.New("model returned an empty summary")

// Summarizer rewrites story summaries with a generative model, one request
// per story.
type Summarizer struct {
	generator     ports.TextGenerator
	maxInputChars int
	logger        *slog.Logger
}

// NewSummarizer wires a text generator. maxInputChars bounds the content
// embedded in each prompt; zero means unbounded.
func NewSummarizer(generator ports.TextGenerator, maxInputChars int, logger *slog.Logger) *Summarizer {
	return &Summarizer{generator: generator, maxInputChars: maxInputChars, logger: logger}
}

// Summarize returns the stories in the same order with model summaries
// applied. A failed story keeps its existing summary.
func (s *Summarizer) Summarize(ctx context.Context, stories []domain.Story) []domain.Story {
	out := make([]domain.Story, len(stories))
	copy(out, stories)
	if s == nil || s.generator == nil {
		return out
	}

	for i := range out {
		summary, err := s.summarizeOne(ctx, out[i])
		if err != nil {
			if s.logger != nil {
				s.logger.Error("summarize story failed", "title", out[i].Title, "url", out[i].URL, "error", err)
			}
			continue
		}
		out[i].Summary = summary
	}

	return out
}

func (s *Summarizer) summarizeOne(ctx context.Context, story domain.Story) (string, error) {
	raw, err := s.generator.Generate(ctx, BuildPrompt(story, s.maxInputChars))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	summary := textnorm.Clean(raw)
	if summary == "" {
		return "", errEmptySummary
	}
	return summary, nil
}

// BuildPrompt embeds title, source and the best available content.
func BuildPrompt(story domain.Story, maxInputChars int) string {
	content := story.Text
	if strings.TrimSpace(content) == "" {
		content = story.Summary
	}
	return fmt.Sprintf(promptTemplate, story.Title, story.Source, textnorm.Truncate(content, maxInputChars))
}
