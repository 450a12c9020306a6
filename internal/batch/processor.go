// Package batch runs uploaded documents through extraction and matching and
// accumulates the results into a session.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"fjacquet/invoice-extract/internal/export"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/matcher"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/parsererror"
	"fjacquet/invoice-extract/internal/session"
)

// Status is the per-document outcome of a batch.
type Status string

const (
	StatusMatched    Status = "matched"
	StatusNoMatch    Status = "no_match"
	StatusEmpty      Status = "empty"
	StatusIncomplete Status = "incomplete"
	StatusFailed     Status = "failed"
)

// Document is one input of a batch. Open is called once; the processor closes
// what it returns.
type Document struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileDocument returns a Document reading the file at path, named by its base name.
func FileDocument(path string) Document {
	return Document{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Outcome reports what happened to one document.
type Outcome struct {
	Name     string          `json:"name"`
	Status   Status          `json:"status"`
	Template string          `json:"template,omitempty"`
	Err      error           `json:"-"`
	Invoice  *models.Invoice `json:"-"`
}

// Error returns the outcome's error message, or "".
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Report summarizes a batch. Outcomes are in input order.
type Report struct {
	Outcomes []Outcome
}

// Count returns how many outcomes have status st.
func (r Report) Count(st Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// TextExtractor turns PDF bytes into text.
type TextExtractor interface {
	ExtractReader(ctx context.Context, name string, r io.Reader) (string, error)
}

// InvoiceExtractor turns text into an invoice.
type InvoiceExtractor interface {
	Extract(sourceFile, text string) (matcher.Result, error)
}

// Options tune a Processor.
type Options struct {
	// Timeout bounds the extraction of a single document; zero means none.
	Timeout time.Duration
	// Workers > 1 extracts documents concurrently. Results are still
	// appended in input order.
	Workers int
	Export  export.Options
}

// Processor runs documents through extraction and matching.
type Processor struct {
	extractor TextExtractor
	matcher   InvoiceExtractor
	opts      Options
	logger    logging.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(extractor TextExtractor, m InvoiceExtractor, opts Options, logger logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Processor{extractor: extractor, matcher: m, opts: opts, logger: logger}
}

type result struct {
	outcome Outcome
	debug   session.DebugEntry
}

// Process handles docs and appends every matched invoice to sess in input
// order. One failing document never stops the others.
func (p *Processor) Process(ctx context.Context, docs []Document, sess *session.Session) Report {
	start := time.Now()
	results := make([]result, len(docs))

	if p.opts.Workers > 1 && len(docs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.Workers)
		for i, doc := range docs {
			g.Go(func() error {
				results[i] = p.run(gctx, doc)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, doc := range docs {
			results[i] = p.run(ctx, doc)
		}
	}

	report := Report{Outcomes: make([]Outcome, 0, len(docs))}
	var (
		added []models.Invoice
		debug = make([]session.DebugEntry, 0, len(results))
	)
	for _, r := range results {
		if r.outcome.Invoice != nil {
			added = append(added, *r.outcome.Invoice)
		}
		debug = append(debug, r.debug)
		report.Outcomes = append(report.Outcomes, r.outcome)
	}
	sess.AppendAll(added, debug)

	p.logDuplicates(sess, added)
	p.logger.Info("Batch processed",
		logging.F(logging.FieldCount, len(docs)),
		logging.F("matched", report.Count(StatusMatched)),
		logging.F("skipped", len(docs)-report.Count(StatusMatched)),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return report
}

// ProcessOne handles a single document.
func (p *Processor) ProcessOne(ctx context.Context, doc Document, sess *session.Session) Outcome {
	return p.Process(ctx, []Document{doc}, sess).Outcomes[0]
}

// run never panics; a panic inside one document becomes a failed outcome.
func (p *Processor) run(ctx context.Context, doc Document) (res result) {
	log := logging.ForDocument(p.logger, doc.Name)
	res.outcome = Outcome{Name: doc.Name}
	res.debug = session.DebugEntry{Document: doc.Name}

	defer func() {
		if r := recover(); r != nil {
			err := &parsererror.PipelineError{Document: doc.Name, Stage: "process", Err: fmt.Errorf("panic: %v", r)}
			log.WithError(err).Error("Document processing panicked")
			res.outcome.Status, res.outcome.Err, res.outcome.Invoice = StatusFailed, err, nil
			res.debug.Status, res.debug.Error = string(StatusFailed), err.Error()
		}
	}()

	text, err := p.extract(ctx, doc)
	res.debug.Text = text
	if err != nil {
		res.outcome.Err = err
		res.debug.Error = err.Error()
		if parsererror.IsEmptyExtraction(err) {
			res.outcome.Status = StatusEmpty
			log.Warn("No text extracted, skipping document", logging.F(logging.FieldReason, err.Error()))
		} else {
			res.outcome.Status = StatusFailed
			log.WithError(err).Error("Text extraction failed")
		}
		res.debug.Status = string(res.outcome.Status)
		return res
	}

	m, err := p.matcher.Extract(doc.Name, text)
	res.debug.Fields = m.Fields
	for _, d := range m.Diagnostics {
		res.debug.Absent = append(res.debug.Absent, d.Field)
	}
	if m.Template != nil {
		res.outcome.Template = m.Template.Issuer
		res.debug.Template = m.Template.Issuer
	}

	switch {
	case err == nil:
		inv := m.Invoice
		res.outcome.Status = StatusMatched
		res.outcome.Invoice = &inv
		res.debug.Row = export.Row(inv, p.opts.Export)
		log.Info("Invoice accumulated", logging.F(logging.FieldStatus, string(StatusMatched)))
	case errors.Is(err, parsererror.ErrNoMatch):
		res.outcome.Status = StatusNoMatch
		res.outcome.Err = err
	case parsererror.IsIncompleteMatch(err):
		res.outcome.Status = StatusIncomplete
		res.outcome.Err = err
	default:
		res.outcome.Status = StatusFailed
		res.outcome.Err = &parsererror.PipelineError{Document: doc.Name, Stage: "match", Err: err}
		log.WithError(err).Error("Field extraction failed")
	}

	res.debug.Status = string(res.outcome.Status)
	if res.outcome.Err != nil {
		res.debug.Error = res.outcome.Err.Error()
	}
	return res
}

func (p *Processor) extract(ctx context.Context, doc Document) (string, error) {
	if doc.Open == nil {
		return "", &parsererror.PipelineError{Document: doc.Name, Stage: "open", Err: errors.New("no content")}
	}
	rc, err := doc.Open()
	if err != nil {
		return "", &parsererror.PipelineError{Document: doc.Name, Stage: "open", Err: err}
	}
	defer func() { _ = rc.Close() }()

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	text, err := p.extractor.ExtractReader(ctx, doc.Name, rc)
	if err != nil {
		if parsererror.IsEmptyExtraction(err) {
			return "", err
		}
		return "", &parsererror.PipelineError{Document: doc.Name, Stage: "extract", Err: err}
	}
	return text, nil
}

// logDuplicates warns about duplicate groups that involve an invoice from the
// current batch. Duplicates are kept.
func (p *Processor) logDuplicates(sess *session.Session, added []models.Invoice) {
	keys := make(map[string]bool, len(added))
	for _, inv := range added {
		if key, ok := inv.DuplicateKey(); ok {
			keys[key] = true
		}
	}
	if len(keys) == 0 {
		return
	}

	found := 0
	for _, d := range sess.PotentialDuplicates() {
		if !keys[d.Key] {
			continue
		}
		found++
		p.logger.Warn("Potential duplicate invoice",
			logging.F("key", d.Key),
			logging.F(logging.FieldFile, d.Files))
	}
	if found > 0 {
		p.logger.Warn("Found potential duplicate invoices", logging.F(logging.FieldCount, found))
	}
}
