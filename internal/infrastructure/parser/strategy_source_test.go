package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paperboy/internal/domain"
	"Paperboy/internal/logging"
	"Paperboy/internal/scanner"
)

type fakeScanner struct {
	kind    domain.SourceKind
	results map[string][]domain.RawStory
	fail    map[string]bool
	limits  []int
}

func (f *fakeScanner) Kind() domain.SourceKind { return f.kind }

func (f *fakeScanner) Scan(_ context.Context, req scanner.Request) ([]domain.RawStory, error) {
	f.limits = append(f.limits, req.Limit)
	if f.fail[req.Source.URL] {
		return nil, errors.New("connection refused")
	}
	return f.results[req.Source.URL], nil
}

func TestFetchAllToleratesFailingSource(t *testing.T) {
	t.Parallel()

	fake := &fakeScanner{
		kind: domain.KindFeed,
		results: map[string][]domain.RawStory{
			"https://one.example.com":   {{Title: "one-a"}, {Title: "one-b", Source: "One Feed"}},
			"https://three.example.com": {{Title: "three-a"}},
		},
		fail: map[string]bool{"https://two.example.com": true},
	}
	sources := []domain.SourceDescriptor{
		{Name: "One", Kind: domain.KindFeed, URL: "https://one.example.com"},
		{Name: "Two", Kind: domain.KindFeed, URL: "https://two.example.com"},
		{Name: "Three", Kind: domain.KindFeed, URL: "https://three.example.com"},
	}

	src := NewStrategySource(scanner.NewRegistry(fake), sources, 7, logging.Discard())
	batches := src.FetchAll(context.Background())

	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Stories, 2)
	assert.Empty(t, batches[1].Stories)
	assert.Equal(t, "Two", batches[1].Source.Name)
	assert.Len(t, batches[2].Stories, 1)

	assert.Equal(t, "One", batches[0].Stories[0].Source)
	assert.Equal(t, "One Feed", batches[0].Stories[1].Source)
	assert.Equal(t, []int{7, 7, 7}, fake.limits)
}

func TestFetchAllUnknownKind(t *testing.T) {
	t.Parallel()

	fake := &fakeScanner{
		kind:    domain.KindFeed,
		results: map[string][]domain.RawStory{"https://ok.example.com": {{Title: "ok"}}},
	}
	sources := []domain.SourceDescriptor{
		{Name: "Weird", Kind: domain.SourceKind("json"), URL: "https://weird.example.com"},
		{Name: "Ok", Kind: domain.KindFeed, URL: "https://ok.example.com"},
	}

	batches := NewStrategySource(scanner.NewRegistry(fake), sources, 5, nil).FetchAll(context.Background())

	require.Len(t, batches, 2)
	assert.Empty(t, batches[0].Stories)
	assert.Len(t, batches[1].Stories, 1)
}

func TestFetchAllWithoutRegistry(t *testing.T) {
	t.Parallel()

	sources := []domain.SourceDescriptor{{Name: "A", Kind: domain.KindFeed, URL: "https://a.example.com"}}
	batches := NewStrategySource(nil, sources, 5, nil).FetchAll(context.Background())

	require.Len(t, batches, 1)
	assert.Empty(t, batches[0].Stories)
}
