package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"Paperboy/internal/domain"
)

const (
	defaultConfigPath    = "config.yaml"
	defaultTimezone      = "America/New_York"
	defaultOutputDir     = "output"
	defaultModelProvider = "ollama"
	defaultModelEndpoint = "http://localhost:11434/api/generate"
	defaultModelName     = "mixtral"
	defaultModelTimeout  = 120 * time.Second
	defaultMaxInputChars = 6000
	defaultMJMLPath      = "mjml"
	defaultHTTPTimeout   = 20 * time.Second
	defaultUserAgent     = "Mozilla/5.0 (compatible; Paperboy/1.0)"

	configPathEnv    = "PAPERBOY_CONFIG"
	resendAPIKeyEnv  = "RESEND_API_KEY"
	emailFromEnv     = "EMAIL_FROM"
	emailToEnv       = "EMAIL_TO"
	modelNameEnv     = "PAPERBOY_MODEL"
	modelEndpointEnv = "PAPERBOY_MODEL_ENDPOINT"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
)

var requiredSections = []string{"project", "sources", "email"}

// Config holds every setting of a newsletter run.
type Config struct {
	Project ProjectConfig  `yaml:"project"`
	Sources []SourceConfig `yaml:"sources"`
	Email   EmailConfig    `yaml:"email"`
	Model   ModelConfig    `yaml:"model"`
	Render  RenderConfig   `yaml:"render"`
	HTTP    HTTPConfig     `yaml:"http"`
	Logging LoggingConfig  `yaml:"logging"`
}

// ProjectConfig holds run-wide settings.
type ProjectConfig struct {
	MaxArticles int            `yaml:"max_articles"`
	Timezone    string         `yaml:"timezone"`
	OutputDir   string         `yaml:"output_dir"`
	Schedule    string         `yaml:"schedule"`
	location    *time.Location `yaml:"-"`
}

// Location resolves the project timezone string to a time.Location.
func (p ProjectConfig) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SourceConfig describes a single news source.
type SourceConfig struct {
	Name          string          `yaml:"name"`
	Type          string          `yaml:"type"`
	URL           string          `yaml:"url"`
	Tags          []string        `yaml:"tags"`
	IncludeImages *bool           `yaml:"include_images"`
	Selectors     SelectorsConfig `yaml:"selectors"`
}

// SelectorsConfig is the explicit per-source extraction for page sources.
type SelectorsConfig struct {
	Item    string `yaml:"item"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Summary string `yaml:"summary"`
}

// EmailConfig addresses the newsletter.
type EmailConfig struct {
	From    string     `yaml:"from"`
	To      Recipients `yaml:"to"`
	Subject string     `yaml:"subject"`
	// APIKey is only ever read from the environment.
	APIKey string `yaml:"-"`
}

// Recipients accepts either a single address or a list in YAML.
type Recipients []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Recipients) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*r = splitAddresses(single)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*r = list
		return nil
	default:
		return fmt.Errorf("line %d: email.to must be a string or a list", value.Line)
	}
}

// ModelConfig selects the text generation backend.
type ModelConfig struct {
	Provider      string        `yaml:"provider"`
	Endpoint      string        `yaml:"endpoint"`
	Name          string        `yaml:"name"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxInputChars int           `yaml:"max_input_chars"`
}

// RenderConfig locates templates and the MJML compiler.
type RenderConfig struct {
	MJMLPath    string `yaml:"mjml_path"`
	TemplateDir string `yaml:"template_dir"`
}

// HTTPConfig tunes outbound fetches.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ResolvePath picks the config file: explicit flag, then env, then default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(configPathEnv); v != "" {
		return v
	}
	return defaultConfigPath
}

// Load reads and validates the YAML configuration at path and applies
// environment overrides.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Kind: KindParse, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return Parse(raw)
}

// Parse validates and decodes a YAML document.
func Parse(raw []byte) (Config, error) {
	var sections map[string]any
	if err := yaml.Unmarshal(raw, &sections); err != nil {
		return Config{}, &Error{Kind: KindParse, Err: err}
	}
	for _, name := range requiredSections {
		if v, ok := sections[name]; !ok || v == nil {
			return Config{}, &Error{Kind: KindMissingSection, Section: name}
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, &Error{Kind: KindParse, Err: err}
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	tzErr := cfg.bindTimezone()

	if err := cfg.validate(tzErr); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(resendAPIKeyEnv); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv(emailFromEnv); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		c.Email.To = splitAddresses(v)
	}
	if v := os.Getenv(modelNameEnv); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv(modelEndpointEnv); v != "" {
		c.Model.Endpoint = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" && c.Model.APIKey == "" {
		c.Model.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Project.OutputDir == "" {
		c.Project.OutputDir = defaultOutputDir
	}
	if c.Model.Provider == "" {
		c.Model.Provider = defaultModelProvider
	}
	c.Model.Provider = strings.ToLower(c.Model.Provider)
	if c.Model.Endpoint == "" && c.Model.Provider == defaultModelProvider {
		c.Model.Endpoint = defaultModelEndpoint
	}
	if c.Model.Name == "" {
		c.Model.Name = defaultModelName
	}
	if c.Model.Timeout <= 0 {
		c.Model.Timeout = defaultModelTimeout
	}
	if c.Model.MaxInputChars <= 0 {
		c.Model.MaxInputChars = defaultMaxInputChars
	}
	if c.Render.MJMLPath == "" {
		c.Render.MJMLPath = defaultMJMLPath
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = defaultHTTPTimeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Project.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.Project.location = time.UTC
		return fmt.Errorf("project.timezone %q: %w", tz, err)
	}
	c.Project.location = loc
	return nil
}

func (c *Config) validate(extra ...error) error {
	var problems []error
	for _, err := range extra {
		if err != nil {
			problems = append(problems, err)
		}
	}
	if c.Project.MaxArticles <= 0 {
		problems = append(problems, errors.New("project.max_articles must be positive"))
	}
	if len(c.Sources) == 0 {
		problems = append(problems, errors.New("sources must list at least one source"))
	}
	for i, src := range c.Sources {
		if strings.TrimSpace(src.URL) == "" {
			problems = append(problems, fmt.Errorf("sources[%d] (%s): url is required", i, src.Name))
		}
		if src.Selectors.Item != "" && (src.Selectors.Title == "" || src.Selectors.Link == "") {
			problems = append(problems, fmt.Errorf("sources[%d] (%s): selectors need title and link", i, src.Name))
		}
	}
	if c.Email.From == "" {
		problems = append(problems, errors.New("email.from is required (or EMAIL_FROM)"))
	}
	if len(c.Email.To) == 0 {
		problems = append(problems, errors.New("email.to is required (or EMAIL_TO)"))
	}
	if c.Model.Provider != "ollama" && c.Model.Provider != "openai" {
		problems = append(problems, fmt.Errorf("model.provider %q is not supported", c.Model.Provider))
	}
	if len(problems) > 0 {
		return &Error{Kind: KindInvalid, Err: errors.Join(problems...)}
	}
	return nil
}

// EmailFromEnv reads the Resend key and the sender and recipient addresses
// from the environment alone, without a config file.
func EmailFromEnv() (EmailConfig, error) {
	email := EmailConfig{
		From:   strings.TrimSpace(os.Getenv(emailFromEnv)),
		To:     splitAddresses(os.Getenv(emailToEnv)),
		APIKey: strings.TrimSpace(os.Getenv(resendAPIKeyEnv)),
	}
	if email.From == "" || len(email.To) == 0 {
		return email, &Error{Kind: KindInvalid, Section: "email", Err: errors.New("EMAIL_FROM and EMAIL_TO must be set")}
	}
	return email, nil
}

// Descriptors converts the configured sources into domain descriptors.
func (c Config) Descriptors() []domain.SourceDescriptor {
	out := make([]domain.SourceDescriptor, 0, len(c.Sources))
	for _, src := range c.Sources {
		out = append(out, src.Descriptor())
	}
	return out
}

// Descriptor converts a single source entry. include_images defaults to true.
func (s SourceConfig) Descriptor() domain.SourceDescriptor {
	includeImages := true
	if s.IncludeImages != nil {
		includeImages = *s.IncludeImages
	}
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = s.URL
	}
	return domain.SourceDescriptor{
		Name:          name,
		Kind:          kindFor(s.Type),
		URL:           strings.TrimSpace(s.URL),
		Tags:          append([]string(nil), s.Tags...),
		IncludeImages: includeImages,
		Selectors: domain.Selectors{
			Item:    s.Selectors.Item,
			Title:   s.Selectors.Title,
			Link:    s.Selectors.Link,
			Summary: s.Selectors.Summary,
		},
	}
}

// kindFor maps a configured type to a fetch strategy. Anything that is not a
// feed is scraped as an HTML page.
func kindFor(sourceType string) domain.SourceKind {
	switch strings.ToLower(strings.TrimSpace(sourceType)) {
	case "rss", "atom", "feed":
		return domain.KindFeed
	default:
		return domain.KindPage
	}
}

func splitAddresses(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
