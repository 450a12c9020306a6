package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "empty extraction",
			err:      &EmptyExtractionError{File: "scan.pdf", Pages: 3},
			expected: "no text extracted from 'scan.pdf' (3 pages)",
		},
		{
			name: "field extraction with value and cause",
			err: &FieldExtractionError{
				Template: "ACME Corp",
				Field:    "date",
				Value:    "31/02/2024",
				Reason:   "unparseable date",
				Err:      errors.New("out of range"),
			},
			expected: "ACME Corp: field 'date': unparseable date (value '31/02/2024'): out of range",
		},
		{
			name:     "field extraction without value",
			err:      &FieldExtractionError{Template: "ACME Corp", Field: "amount", Reason: "pattern not found"},
			expected: "ACME Corp: field 'amount': pattern not found",
		},
		{
			name:     "incomplete match with missing required",
			err:      &IncompleteMatchError{Template: "ACME Corp", Missing: []string{"invoice_number", "amount"}},
			expected: "template 'ACME Corp' matched but required fields are missing: invoice_number, amount",
		},
		{
			name:     "incomplete match below minimum",
			err:      &IncompleteMatchError{Template: "ACME Corp", Extracted: 0, Minimum: 1},
			expected: "template 'ACME Corp' matched but only 0 of at least 1 fields were extracted",
		},
		{
			name:     "template error",
			err:      &TemplateError{File: "bad.yml", Reason: "missing issuer"},
			expected: "invalid template 'bad.yml': missing issuer",
		},
		{
			name:     "invalid format",
			err:      &InvalidFormatError{FilePath: "a.txt", ExpectedFormat: "PDF", Msg: "missing header"},
			expected: "invalid format in file 'a.txt': missing header. Expected: PDF",
		},
		{
			name:     "pipeline error",
			err:      &PipelineError{Document: "a.pdf", Stage: "extract", Err: errors.New("timeout")},
			expected: "a.pdf: extract failed: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrapChains(t *testing.T) {
	cause := errors.New("cause")

	assert.ErrorIs(t, &FieldExtractionError{Err: cause}, cause)
	assert.ErrorIs(t, &TemplateError{Err: cause}, cause)
	assert.ErrorIs(t, &PipelineError{Err: cause}, cause)

	wrapped := fmt.Errorf("processing: %w", &PipelineError{Document: "x", Stage: "match", Err: ErrNoMatch})
	assert.ErrorIs(t, wrapped, ErrNoMatch)
}

func TestPredicates(t *testing.T) {
	empty := fmt.Errorf("wrap: %w", &EmptyExtractionError{File: "a.pdf"})
	incomplete := fmt.Errorf("wrap: %w", &IncompleteMatchError{Template: "t"})

	assert.True(t, IsEmptyExtraction(empty))
	assert.False(t, IsEmptyExtraction(incomplete))
	assert.True(t, IsIncompleteMatch(incomplete))
	assert.False(t, IsIncompleteMatch(ErrNoMatch))
}
