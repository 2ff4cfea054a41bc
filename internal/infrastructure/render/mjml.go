package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"Paperboy/internal/ports"
)

// MJMLConverter compiles MJML by piping it through the mjml CLI.
type MJMLConverter struct {
	path string
	args []string
}

var _ ports.MarkupConverter = (*MJMLConverter)(nil)

// NewMJMLConverter uses the mjml binary at path, reading stdin and writing
// stdout.
func NewMJMLConverter(path string) *MJMLConverter {
	if path == "" {
		path = "mjml"
	}
	return &MJMLConverter{path: path, args: []string{"-i", "-s"}}
}

// Convert runs the compiler. A non-zero exit, or diagnostics without any
// output, is an error.
func (c *MJMLConverter) Convert(ctx context.Context, markup string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = strings.NewReader(markup)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("mjml conversion failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	html := stdout.String()
	if strings.TrimSpace(html) == "" {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("mjml conversion failed: %s", msg)
		}
		return "", errors.New("mjml conversion produced no output")
	}

	return html, nil
}
