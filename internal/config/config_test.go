package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paperboy/internal/domain"
)

const validYAML = `
project:
  max_articles: 5
  timezone: UTC
sources:
  - name: Hacker News
    type: rss
    url: https://news.ycombinator.com/rss
    tags: [tech, startups]
  - name: Example
    type: html
    url: https://example.com/news
    include_images: false
    selectors:
      item: .card
      title: h2
      link: a
email:
  from: Paperboy <news@example.com>
  to: me@example.com
  subject: "Paperboy for {{ date }}"
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		resendAPIKeyEnv, emailFromEnv, emailToEnv,
		modelNameEnv, modelEndpointEnv, openAIAPIKeyEnv, configPathEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestParseValid(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Project.MaxArticles)
	assert.Equal(t, time.UTC, cfg.Project.Location())
	assert.Equal(t, "output", cfg.Project.OutputDir)
	assert.Equal(t, []string{"me@example.com"}, []string(cfg.Email.To))
	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, "http://localhost:11434/api/generate", cfg.Model.Endpoint)
	assert.Equal(t, "mixtral", cfg.Model.Name)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)

	descs := cfg.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, domain.KindFeed, descs[0].Kind)
	assert.True(t, descs[0].IncludeImages)
	assert.Equal(t, []string{"tech", "startups"}, descs[0].Tags)
	assert.Equal(t, domain.KindPage, descs[1].Kind)
	assert.False(t, descs[1].IncludeImages)
	assert.Equal(t, ".card", descs[1].Selectors.Item)
}

func TestParseMissingSection(t *testing.T) {
	clearEnv(t)

	for _, section := range requiredSections {
		t.Run(section, func(t *testing.T) {
			doc := dropSection(t, validYAML, section)

			_, err := Parse([]byte(doc))
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, KindMissingSection, cfgErr.Kind)
			assert.Equal(t, section, cfgErr.Section)
		})
	}
}

func TestParseNullSectionIsMissing(t *testing.T) {
	clearEnv(t)

	doc := "project:\nsources:\n  - url: https://x.com/rss\nemail:\n  from: a@b.c\n  to: d@e.f\n"
	_, err := Parse([]byte(doc))

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KindMissingSection, cfgErr.Kind)
	assert.Equal(t, "project", cfgErr.Section)
}

func TestParseMalformed(t *testing.T) {
	clearEnv(t)

	for name, doc := range map[string]string{
		"broken yaml":   "project: [unclosed",
		"not a mapping": "- a\n- b\n",
		"bad duration":  validYAML + "http:\n  timeout: soon\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, KindParse, cfgErr.Kind)
		})
	}
}

func TestParseInvalidValues(t *testing.T) {
	clearEnv(t)

	doc := `
project:
  max_articles: 0
sources: []
email:
  subject: hi
`
	_, err := Parse([]byte(doc))

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KindInvalid, cfgErr.Kind)
	msg := err.Error()
	assert.Contains(t, msg, "max_articles")
	assert.Contains(t, msg, "email.from")
	assert.Contains(t, msg, "email.to")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(resendAPIKeyEnv, "re_123")
	t.Setenv(emailFromEnv, "env@example.com")
	t.Setenv(emailToEnv, "a@example.com, b@example.com")
	t.Setenv(modelNameEnv, "llama3")

	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "re_123", cfg.Email.APIKey)
	assert.Equal(t, "env@example.com", cfg.Email.From)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, []string(cfg.Email.To))
	assert.Equal(t, "llama3", cfg.Model.Name)
}

func TestRecipientsList(t *testing.T) {
	clearEnv(t)

	doc := strings.Replace(validYAML, "to: me@example.com", "to: [one@example.com, two@example.com]", 1)
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"one@example.com", "two@example.com"}, []string(cfg.Email.To))
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KindParse, cfgErr.Kind)
}

func TestResolvePath(t *testing.T) {
	clearEnv(t)

	assert.Equal(t, "config.yaml", ResolvePath(""))
	assert.Equal(t, "x.yaml", ResolvePath("x.yaml"))

	t.Setenv(configPathEnv, "/etc/paperboy.yaml")
	assert.Equal(t, "/etc/paperboy.yaml", ResolvePath(""))
}

func TestKindFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.KindFeed, kindFor("RSS"))
	assert.Equal(t, domain.KindFeed, kindFor("atom"))
	assert.Equal(t, domain.KindPage, kindFor("html"))
	assert.Equal(t, domain.KindPage, kindFor(""))
	assert.Equal(t, domain.KindPage, kindFor("website"))
	assert.Equal(t, domain.KindPage, kindFor("json"))
}

func TestParseUnknownTypeScrapesPage(t *testing.T) {
	clearEnv(t)

	doc := strings.Replace(validYAML, "type: html", "type: website", 1)
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	descs := cfg.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, domain.KindPage, descs[1].Kind)
}

// dropSection removes a top-level section and its indented body.
func dropSection(t *testing.T, doc, section string) string {
	t.Helper()

	var out []string
	skipping := false
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, section+":") {
			skipping = true
			continue
		}
		if skipping && (strings.HasPrefix(line, " ") || line == "") {
			continue
		}
		skipping = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestParseBadTimezone(t *testing.T) {
	clearEnv(t)

	doc := strings.Replace(validYAML, "timezone: UTC", "timezone: Mars/Olympus_Mons", 1)
	_, err := Parse([]byte(doc))

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KindInvalid, cfgErr.Kind)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
}

func TestParseDefaultTimezone(t *testing.T) {
	clearEnv(t)

	doc := strings.Replace(validYAML, "  timezone: UTC\n", "", 1)
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", cfg.Project.Location().String())
}

func TestEmailFromEnv(t *testing.T) {
	clearEnv(t)

	_, err := EmailFromEnv()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KindInvalid, cfgErr.Kind)

	t.Setenv(resendAPIKeyEnv, "re_abc")
	t.Setenv(emailFromEnv, "news@example.com")
	t.Setenv(emailToEnv, "a@example.com,b@example.com")

	email, err := EmailFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "re_abc", email.APIKey)
	assert.Equal(t, "news@example.com", email.From)
	assert.Equal(t, Recipients{"a@example.com", "b@example.com"}, email.To)
}
