package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PdftotextExtractor shells out to poppler's pdftotext. Pages are separated
// by form feeds in its output.
type PdftotextExtractor struct {
	Binary string
}

// NewPdftotextExtractor creates a PdftotextExtractor; an empty binary means "pdftotext" on PATH.
func NewPdftotextExtractor(binary string) *PdftotextExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PdftotextExtractor{Binary: binary}
}

// ExtractPages implements PDFExtractor.
func (e *PdftotextExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Binary, "-layout", "-enc", "UTF-8", pdfPath, "-") // #nosec G204 -- binary is configuration, path is a temp file
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return splitPages(stdout.String()), nil
}

func splitPages(out string) []string {
	pages := strings.Split(out, "\f")
	// pdftotext terminates the last page with a form feed
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
