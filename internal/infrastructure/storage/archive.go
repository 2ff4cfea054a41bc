package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"Paperboy/internal/domain"
	"Paperboy/internal/ports"
)

const (
	htmlFileName = "newsletter.html"
	textFileName = "newsletter.txt"
)

// FileArchive writes the rendered newsletter into a directory as an audit
// artifact of the last run.
type FileArchive struct {
	dir string
}

var _ ports.Archive = (*FileArchive)(nil)

// NewFileArchive targets dir, created on first save.
func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{dir: dir}
}

// Save writes newsletter.html and, when present, newsletter.txt.
func (a *FileArchive) Save(ctx context.Context, letter domain.Newsletter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	written := make([]string, 0, 2)

	htmlPath := filepath.Join(a.dir, htmlFileName)
	if err := os.WriteFile(htmlPath, []byte(letter.HTML), 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", htmlPath, err)
	}
	written = append(written, htmlPath)

	if letter.Text == "" {
		return written, nil
	}

	textPath := filepath.Join(a.dir, textFileName)
	if err := os.WriteFile(textPath, []byte(letter.Text), 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", textPath, err)
	}
	written = append(written, textPath)

	return written, nil
}
