// Package store loads invoice templates from a directory of YAML or JSON definitions.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"fjacquet/invoice-extract/internal/fileutils"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/parsererror"
)

// TemplateExtensions are the definition file extensions read by LoadTemplates.
var TemplateExtensions = []string{".yml", ".yaml", ".json"}

// LoadReport lists what a load did with each definition file.
type LoadReport struct {
	Dir     string
	Loaded  []string
	Skipped []*parsererror.TemplateError
}

// TemplateStore reads template definitions from one directory.
type TemplateStore struct {
	Dir    string
	logger logging.Logger
	schema *jsonschema.Schema
}

// NewTemplateStore creates a store for dir.
func NewTemplateStore(dir string, logger logging.Logger) (*TemplateStore, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &TemplateStore{Dir: dir, logger: logger, schema: schema}, nil
}

// LoadTemplates reads every definition in the store's directory in lexical
// filename order, which is also the match priority order. A malformed file is
// skipped with a warning and listed in the report; it never aborts the load.
// A missing directory is an error.
func (s *TemplateStore) LoadTemplates() ([]models.Template, LoadReport, error) {
	report := LoadReport{Dir: s.Dir}

	files, err := fileutils.ListFilesWithExtensions(s.Dir, TemplateExtensions...)
	if err != nil {
		return nil, report, fmt.Errorf("error reading template directory: %w", err)
	}

	templates := make([]models.Template, 0, len(files))
	for _, file := range files {
		tmpl, err := s.LoadFile(file)
		if err != nil {
			tmplErr := asTemplateError(file, err)
			s.logger.WithError(tmplErr.Err).Warn("Skipping invalid template",
				logging.F(logging.FieldFile, file),
				logging.F(logging.FieldReason, tmplErr.Reason))
			report.Skipped = append(report.Skipped, tmplErr)
			continue
		}

		templates = append(templates, tmpl)
		report.Loaded = append(report.Loaded, file)
		s.logger.Debug("Loaded template",
			logging.F(logging.FieldFile, file),
			logging.F(logging.FieldIssuer, tmpl.Issuer),
			logging.F(logging.FieldKeywords, tmpl.Keywords))
	}

	if len(templates) == 0 {
		s.logger.Warn("No usable templates found",
			logging.F(logging.FieldFile, s.Dir),
			logging.F(logging.FieldCount, len(files)))
	} else {
		s.logger.Info("Loaded templates",
			logging.F(logging.FieldCount, len(templates)),
			logging.F(logging.FieldFile, s.Dir))
	}
	return templates, report, nil
}

// LoadFile reads, validates and compiles one definition file.
func (s *TemplateStore) LoadFile(path string) (models.Template, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- template directory is configuration
	if err != nil {
		return models.Template{}, &parsererror.TemplateError{File: path, Reason: "unreadable", Err: err}
	}
	return s.Parse(path, data)
}

// Parse validates and compiles a definition held in memory. source names it in errors.
func (s *TemplateStore) Parse(source string, data []byte) (models.Template, error) {
	if err := validateDocument(s.schema, data); err != nil {
		return models.Template{}, &parsererror.TemplateError{File: source, Reason: "schema validation failed", Err: err}
	}
	tmpl, err := compileTemplate(source, data)
	if err != nil {
		return models.Template{}, &parsererror.TemplateError{File: source, Reason: "invalid rule", Err: err}
	}
	return tmpl, nil
}

func asTemplateError(file string, err error) *parsererror.TemplateError {
	if te, ok := err.(*parsererror.TemplateError); ok {
		return te
	}
	return &parsererror.TemplateError{File: file, Reason: "load failed", Err: err}
}

// FindTemplateDir resolves a template directory: an absolute path as is,
// otherwise the first of ./name, ./config/name and
// $HOME/.config/invoice-extract/name that exists.
func FindTemplateDir(name string) (string, error) {
	if filepath.IsAbs(name) {
		if fileutils.DirectoryExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("template directory %s: %w", name, os.ErrNotExist)
	}

	locations := []string{
		name,
		filepath.Join("config", name),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "invoice-extract", name))
	}

	for _, location := range locations {
		if fileutils.DirectoryExists(location) {
			return location, nil
		}
	}
	return "", fmt.Errorf("template directory %s not found in %s: %w",
		name, strings.Join(locations, ", "), os.ErrNotExist)
}
