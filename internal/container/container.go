// Package container wires the application's dependencies from configuration.
package container

import (
	"fmt"

	"fjacquet/invoice-extract/internal/batch"
	"fjacquet/invoice-extract/internal/config"
	"fjacquet/invoice-extract/internal/export"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/matcher"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/pdfparser"
	"fjacquet/invoice-extract/internal/session"
	"fjacquet/invoice-extract/internal/store"
)

// Backend names a text extraction backend.
type Backend string

const (
	Native    Backend = "native"
	Pdftotext Backend = "pdftotext"
)

// Container holds every long-lived component. It is immutable after
// creation; components are reached through getters.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.TemplateStore
	templates []models.Template
	report    store.LoadReport
	extractor *pdfparser.Extractor
	matcher   *matcher.Matcher
	processor *batch.Processor
	sessions  *session.Manager
	exportOpt export.Options
}

// NewContainer creates and wires all application dependencies. Templates are
// loaded once here and shared read-only for the process lifetime.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.ConfigureLoggingFromConfig(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	dir, err := store.FindTemplateDir(cfg.Templates.Dir)
	if err != nil {
		return nil, err
	}
	templateStore, err := store.NewTemplateStore(dir, logger)
	if err != nil {
		return nil, err
	}
	templates, report, err := templateStore.LoadTemplates()
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg.Extraction)
	if err != nil {
		return nil, err
	}
	extractor := pdfparser.NewExtractor(backend, logger)

	m := matcher.New(templates, matcher.Options{
		CaseSensitive:   cfg.Matching.CaseSensitive,
		FoldAccents:     cfg.Matching.FoldAccents,
		MinFields:       cfg.Matching.MinFields,
		DefaultCurrency: cfg.Export.DefaultCurrency,
	}, logger)

	exportOpt := ExportOptions(cfg.Export)
	processor := batch.NewProcessor(extractor, m, batch.Options{
		Timeout: cfg.Extraction.Timeout(),
		Workers: cfg.Extraction.Workers,
		Export:  exportOpt,
	}, logger)

	logger.Info("Container initialized successfully",
		logging.F("templates_count", len(templates)),
		logging.F("templates_skipped", len(report.Skipped)),
		logging.F(logging.FieldBackend, cfg.Extraction.Backend))

	return &Container{
		logger:    logger,
		config:    cfg,
		store:     templateStore,
		templates: templates,
		report:    report,
		extractor: extractor,
		matcher:   m,
		processor: processor,
		sessions:  session.NewManager(cfg.Server.SessionTTL()),
		exportOpt: exportOpt,
	}, nil
}

func newBackend(cfg config.ExtractionConfig) (pdfparser.PDFExtractor, error) {
	switch Backend(cfg.Backend) {
	case Native, "":
		return pdfparser.NewNativeExtractor(), nil
	case Pdftotext:
		return pdfparser.NewPdftotextExtractor(cfg.PdftotextPath), nil
	default:
		return nil, fmt.Errorf("unknown extraction backend: %s", cfg.Backend)
	}
}

// ExportOptions converts the export section of the configuration.
func ExportOptions(cfg config.ExportConfig) export.Options {
	opts := export.DefaultOptions()
	if cfg.SheetName != "" {
		opts.SheetName = cfg.SheetName
	}
	if cfg.AbsentMarker != "" {
		opts.AbsentMarker = cfg.AbsentMarker
	}
	if cfg.HeaderLocale != "" {
		opts.HeaderLocale = cfg.HeaderLocale
	}
	if d := []rune(cfg.Delimiter); len(d) == 1 {
		opts.Delimiter = d[0]
	}
	return opts
}

// Encoder returns the encoder for format, or the configured default when empty.
func (c *Container) Encoder(format string) (export.Encoder, error) {
	if format == "" {
		format = c.config.Export.Format
	}
	return export.NewEncoder(format, c.exportOpt)
}

func (c *Container) GetLogger() logging.Logger { return c.logger }

func (c *Container) GetConfig() *config.Config { return c.config }

func (c *Container) GetStore() *store.TemplateStore { return c.store }

// GetTemplates returns the loaded templates in priority order.
func (c *Container) GetTemplates() []models.Template { return c.matcher.Templates() }

// GetLoadReport returns what happened while loading templates.
func (c *Container) GetLoadReport() store.LoadReport { return c.report }

func (c *Container) GetExtractor() *pdfparser.Extractor { return c.extractor }

func (c *Container) GetMatcher() *matcher.Matcher { return c.matcher }

func (c *Container) GetProcessor() *batch.Processor { return c.processor }

func (c *Container) GetSessions() *session.Manager { return c.sessions }

func (c *Container) GetExportOptions() export.Options { return c.exportOpt }

// Close releases container resources.
func (c *Container) Close() error {
	c.logger.Info("Container closed")
	return nil
}
