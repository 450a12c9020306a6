// Package parsererror holds the typed errors of the extraction pipeline.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMatch is returned when no template's keywords are all present in a
// document's text. It is an expected outcome, not a failure of the pipeline.
var ErrNoMatch = errors.New("no template matched")

// EmptyExtractionError is returned when a PDF yields no text on any page.
type EmptyExtractionError struct {
	File  string
	Pages int
}

func (e *EmptyExtractionError) Error() string {
	return fmt.Sprintf("no text extracted from '%s' (%d pages)", e.File, e.Pages)
}

// FieldExtractionError describes one field rule that produced no usable value.
// The field is recorded as absent; the document is still processed.
type FieldExtractionError struct {
	Template string
	Field    string
	Value    string
	Reason   string
	Err      error
}

func (e *FieldExtractionError) Error() string {
	msg := fmt.Sprintf("%s: field '%s': %s", e.Template, e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value '%s')", e.Value)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *FieldExtractionError) Unwrap() error {
	return e.Err
}

// IncompleteMatchError is returned when a template matched but too few fields,
// or not every required field, could be extracted.
type IncompleteMatchError struct {
	Template  string
	Missing   []string
	Extracted int
	Minimum   int
}

func (e *IncompleteMatchError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("template '%s' matched but required fields are missing: %s",
			e.Template, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("template '%s' matched but only %d of at least %d fields were extracted",
		e.Template, e.Extracted, e.Minimum)
}

// TemplateError describes a template definition that could not be loaded.
type TemplateError struct {
	File   string
	Reason string
	Err    error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid template '%s': %s: %v", e.File, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid template '%s': %s", e.File, e.Reason)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// InvalidFormatError is returned when an input does not look like the expected format.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// PipelineError wraps any other failure of one document at a given stage.
type PipelineError struct {
	Document string
	Stage    string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Document, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsEmptyExtraction reports whether err wraps an EmptyExtractionError.
func IsEmptyExtraction(err error) bool {
	var target *EmptyExtractionError
	return errors.As(err, &target)
}

// IsIncompleteMatch reports whether err wraps an IncompleteMatchError.
func IsIncompleteMatch(err error) bool {
	var target *IncompleteMatchError
	return errors.As(err, &target)
}
