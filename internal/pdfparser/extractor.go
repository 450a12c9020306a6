package pdfparser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor returns the text of every page of a PDF file, in page order.
// Pages that cannot be read come back as empty strings.
type PDFExtractor interface {
	ExtractPages(ctx context.Context, pdfPath string) ([]string, error)
}

// NativeExtractor reads PDFs in-process with ledongthuc/pdf.
type NativeExtractor struct{}

// NewNativeExtractor creates a NativeExtractor.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// ExtractPages implements PDFExtractor.
func (e *NativeExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	f, err := os.Open(pdfPath) // #nosec G304 -- path comes from the caller's upload or CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	r, err := openReader(f, info.Size())
	if err != nil {
		return nil, err
	}

	pages := make([]string, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages[i-1] = pageText(r, i)
	}
	return pages, nil
}

// openReader guards against malformed files that make the PDF reader panic.
func openReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("failed to read PDF structure: %v", rec)
		}
	}()
	r, err = pdf.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF structure: %w", err)
	}
	return r, nil
}

func pageText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, " \n")
}

// MockPDFExtractor returns fixed pages and records the paths it was asked to read.
type MockPDFExtractor struct {
	Pages []string
	Err   error
	Paths []string
	// SawFile is set when the requested path existed at extraction time.
	SawFile bool
}

// NewMockPDFExtractor creates a MockPDFExtractor.
func NewMockPDFExtractor(pages []string, err error) *MockPDFExtractor {
	return &MockPDFExtractor{Pages: pages, Err: err}
}

// ExtractPages implements PDFExtractor.
func (e *MockPDFExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	e.Paths = append(e.Paths, pdfPath)
	if _, err := os.Stat(pdfPath); err == nil {
		e.SawFile = true
	}
	if e.Err != nil {
		return nil, e.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Pages, nil
}
