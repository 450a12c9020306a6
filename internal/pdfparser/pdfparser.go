// Package pdfparser turns PDF documents into plain text for template matching.
package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/parsererror"
)

var pdfMagic = []byte("%PDF-")

// Extractor joins the pages of a PDF into one text. Blank pages are skipped;
// a document with no text on any page is an EmptyExtractionError.
type Extractor struct {
	backend PDFExtractor
	logger  logging.Logger
}

// NewExtractor creates an Extractor over backend. A nil backend uses NativeExtractor.
func NewExtractor(backend PDFExtractor, logger logging.Logger) *Extractor {
	if backend == nil {
		backend = NewNativeExtractor()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Extractor{backend: backend, logger: logger}
}

// Extract returns the text of the PDF at path, pages joined by a newline.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	return e.extract(ctx, path, path)
}

func (e *Extractor) extract(ctx context.Context, name, path string) (string, error) {
	pages, err := e.backend.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}

	var kept []string
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			e.logger.Debug("Skipping page without text",
				logging.F(logging.FieldDocument, name),
				logging.F(logging.FieldPage, i+1))
			continue
		}
		kept = append(kept, page)
	}

	if len(kept) == 0 {
		return "", &parsererror.EmptyExtractionError{File: name, Pages: len(pages)}
	}

	e.logger.Debug("Extracted text",
		logging.F(logging.FieldDocument, name),
		logging.F(logging.FieldPages, len(kept)))
	return strings.Join(kept, "\n"), nil
}

// ExtractReader copies r to a temporary file, extracts its text and removes
// the file before returning, whatever the outcome. name only labels diagnostics.
func (e *Extractor) ExtractReader(ctx context.Context, name string, r io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "invoice-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			e.logger.WithError(err).Warn("Failed to remove temporary file",
				logging.F(logging.FieldFile, tempPath))
		}
	}()

	_, copyErr := io.Copy(tempFile, r)
	closeErr := tempFile.Close()
	if copyErr != nil {
		return "", fmt.Errorf("failed to write temporary PDF file: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to close temporary PDF file: %w", closeErr)
	}

	return e.extract(ctx, name, tempPath)
}

// ValidateFormat reports whether the file at path starts with the PDF header.
func ValidateFormat(path string) (bool, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 1024)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	return bytes.Contains(header[:n], pdfMagic), nil
}

// CheckFormat is ValidateFormat returning an InvalidFormatError for non-PDF input.
func CheckFormat(path string) error {
	ok, err := ValidateFormat(path)
	if err != nil {
		return err
	}
	if !ok {
		return &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "PDF",
			Msg:            "missing %PDF- header",
		}
	}
	return nil
}
