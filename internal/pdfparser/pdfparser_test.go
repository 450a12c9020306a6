package pdfparser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/parsererror"
)

func TestExtractor_JoinsNonBlankPages(t *testing.T) {
	logger := logging.NewMockLogger()
	mock := NewMockPDFExtractor([]string{"ACME Corp\nInvoice", "   \n", "Total: 10.00"}, nil)
	e := NewExtractor(mock, logger)

	text, err := e.Extract(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ACME Corp\nInvoice\nTotal: 10.00", text)

	skipped := logger.GetEntriesByLevel("DEBUG")
	require.NotEmpty(t, skipped)
	page, ok := skipped[0].Field(logging.FieldPage)
	require.True(t, ok)
	assert.Equal(t, 2, page)
}

func TestExtractor_EmptyDocument(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
	}{
		{"zero pages", nil},
		{"only blank pages", []string{"", " \n\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(NewMockPDFExtractor(tt.pages, nil), logging.NewMockLogger())
			_, err := e.Extract(context.Background(), "scan.pdf")

			var empty *parsererror.EmptyExtractionError
			require.ErrorAs(t, err, &empty)
			assert.Equal(t, "scan.pdf", empty.File)
			assert.Equal(t, len(tt.pages), empty.Pages)
		})
	}
}

func TestExtractReader_RemovesTempFile(t *testing.T) {
	tests := []struct {
		name    string
		mock    *MockPDFExtractor
		wantErr bool
	}{
		{"success", NewMockPDFExtractor([]string{"text"}, nil), false},
		{"backend failure", NewMockPDFExtractor(nil, errors.New("corrupt xref")), true},
		{"empty document", NewMockPDFExtractor([]string{""}, nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.mock, logging.NewMockLogger())
			_, err := e.ExtractReader(context.Background(), "upload.pdf", strings.NewReader("%PDF-1.4 data"))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			require.Len(t, tt.mock.Paths, 1)
			assert.True(t, tt.mock.SawFile, "temp file must exist during extraction")
			_, statErr := os.Stat(tt.mock.Paths[0])
			assert.True(t, os.IsNotExist(statErr), "temp file must be removed")
		})
	}
}

func TestExtractReader_EmptyErrorNamesUpload(t *testing.T) {
	e := NewExtractor(NewMockPDFExtractor([]string{" "}, nil), logging.NewMockLogger())
	_, err := e.ExtractReader(context.Background(), "upload.pdf", strings.NewReader("x"))
	assert.EqualError(t, err, "no text extracted from 'upload.pdf' (1 pages)")
}

func TestExtractor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExtractor(NewMockPDFExtractor([]string{"text"}, nil), logging.NewMockLogger())
	_, err := e.Extract(ctx, "a.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateFormat(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.pdf")
	invalid := filepath.Join(dir, "invalid.txt")
	require.NoError(t, os.WriteFile(valid, []byte("%PDF-1.5\nSome PDF content"), 0644))
	require.NoError(t, os.WriteFile(invalid, []byte("This is not a PDF file"), 0644))

	ok, err := ValidateFormat(valid)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidateFormat(invalid)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = ValidateFormat(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)

	var formatErr *parsererror.InvalidFormatError
	assert.ErrorAs(t, CheckFormat(invalid), &formatErr)
	assert.NoError(t, CheckFormat(valid))
}

func TestNativeExtractor_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not really a pdf"), 0644))

	_, err := NewNativeExtractor().ExtractPages(context.Background(), path)
	assert.Error(t, err)
}

func TestPdftotextExtractor_MissingBinary(t *testing.T) {
	e := NewPdftotextExtractor(filepath.Join(t.TempDir(), "no-such-pdftotext"))
	_, err := e.ExtractPages(context.Background(), "a.pdf")
	assert.Error(t, err)
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, splitPages("one\ftwo\f"))
	assert.Equal(t, []string{"single"}, splitPages("single"))
	assert.Equal(t, []string{"one", "", "three"}, splitPages("one\f\fthree\f"))
}
