package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"Paperboy/internal/domain"
	"Paperboy/internal/ports"
)

const (
	markupTemplateName = "newsletter.mjml.tmpl"
	textTemplateName   = "newsletter.txt.tmpl"
)

//go:embed templates/*.tmpl
var embedded embed.FS

var funcs = map[string]any{
	"join": strings.Join,
}

// Renderer produces the newsletter from MJML and plain text templates.
type Renderer struct {
	markup    *htmltemplate.Template
	text      *texttemplate.Template
	converter ports.MarkupConverter
}

var _ ports.Renderer = (*Renderer)(nil)

type storyView struct {
	Title     string
	URL       string
	Summary   string
	Image     string
	Source    string
	Tags      []string
	Published string
}

type letterView struct {
	Date    string
	Year    string
	Count   int
	Stories []storyView
}

// New loads templates from templateDir when given, otherwise the embedded
// defaults. converter compiles the MJML output into HTML.
func New(converter ports.MarkupConverter, templateDir string) (*Renderer, error) {
	if converter == nil {
		return nil, errors.New("markup converter is required")
	}

	markupSrc, err := readTemplate(templateDir, markupTemplateName)
	if err != nil {
		return nil, err
	}
	textSrc, err := readTemplate(templateDir, textTemplateName)
	if err != nil {
		return nil, err
	}

	markup, err := htmltemplate.New(markupTemplateName).Funcs(funcs).Parse(markupSrc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", markupTemplateName, err)
	}
	text, err := texttemplate.New(textTemplateName).Funcs(funcs).Parse(textSrc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", textTemplateName, err)
	}

	return &Renderer{markup: markup, text: text, converter: converter}, nil
}

// Render executes both templates and compiles the markup. An empty story list
// renders a document without story sections. Every failure is a render error.
func (r *Renderer) Render(ctx context.Context, stories []domain.Story, date, year string) (domain.Newsletter, error) {
	view := letterView{Date: date, Year: year, Count: len(stories), Stories: make([]storyView, 0, len(stories))}
	for _, s := range stories {
		view.Stories = append(view.Stories, storyView{
			Title:     s.Title,
			URL:       s.URL,
			Summary:   s.Summary,
			Image:     s.Image,
			Source:    s.Source,
			Tags:      s.Tags,
			Published: s.Published,
		})
	}

	var markup bytes.Buffer
	if err := r.markup.Execute(&markup, view); err != nil {
		return domain.Newsletter{}, domain.Fail(domain.ReasonRender, fmt.Errorf("execute markup template: %w", err))
	}

	var text bytes.Buffer
	if err := r.text.Execute(&text, view); err != nil {
		return domain.Newsletter{}, domain.Fail(domain.ReasonRender, fmt.Errorf("execute text template: %w", err))
	}

	html, err := r.converter.Convert(ctx, markup.String())
	if err != nil {
		return domain.Newsletter{}, domain.Fail(domain.ReasonRender, err)
	}

	return domain.Newsletter{
		HTML:    html,
		Text:    text.String(),
		Date:    date,
		Year:    year,
		Stories: len(stories),
	}, nil
}

func readTemplate(dir, name string) (string, error) {
	if dir != "" {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(raw), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	raw, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("read embedded template %s: %w", name, err)
	}
	return string(raw), nil
}
