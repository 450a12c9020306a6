// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fjacquet/invoice-extract/internal/batch"
	"fjacquet/invoice-extract/internal/container"
	"fjacquet/invoice-extract/internal/fileutils"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/pdfparser"
	"fjacquet/invoice-extract/internal/session"
)

// RunOptions says where a command writes its results.
type RunOptions struct {
	// Output is the spreadsheet path; empty uses the configured file name.
	Output string
	// Format is "xlsx" or "csv"; empty infers it from Output, then config.
	Format string
	// DebugReport, when set, receives the per-document debug trail as YAML.
	DebugReport string
	// Validate skips files that do not start with a PDF header.
	Validate bool
}

// Result summarizes a command run.
type Result struct {
	Report     batch.Report
	OutputFile string
	Rows       int
}

// ProcessFiles runs the PDFs at paths through the pipeline into a fresh
// session and writes the aggregated spreadsheet. Per-document failures are
// reported, never fatal; only failing to write the output is an error.
func ProcessFiles(ctx context.Context, c *container.Container, paths []string, opts RunOptions) (Result, error) {
	log := c.GetLogger()

	docs := make([]batch.Document, 0, len(paths))
	for _, p := range paths {
		if opts.Validate {
			if err := pdfparser.CheckFormat(p); err != nil {
				docs = append(docs, rejected(p, err))
				continue
			}
		}
		docs = append(docs, batch.FileDocument(p))
	}

	sess := session.New(uuid.NewString())
	report := c.GetProcessor().Process(ctx, docs, sess)
	LogReport(log, report)

	format := opts.Format
	if format == "" {
		format = formatFromPath(opts.Output)
	}
	enc, err := c.Encoder(format)
	if err != nil {
		return Result{Report: report}, err
	}

	out := opts.Output
	if out == "" {
		out = c.GetConfig().Export.FileName
	}
	if filepath.Ext(out) == "" {
		out += enc.Extension()
	}

	data, err := enc.Encode(sess.All())
	if err != nil {
		return Result{Report: report}, fmt.Errorf("failed to encode %s: %w", out, err)
	}
	if err := fileutils.WriteFile(out, data, 0o644); err != nil {
		return Result{Report: report}, err
	}
	log.Info("Spreadsheet written",
		logging.F(logging.FieldOutputFile, out),
		logging.F(logging.FieldCount, sess.Len()))

	if opts.DebugReport != "" {
		debug, err := sess.DebugReport()
		if err != nil {
			return Result{Report: report, OutputFile: out, Rows: sess.Len()}, err
		}
		if err := fileutils.WriteFile(opts.DebugReport, debug, 0o644); err != nil {
			return Result{Report: report, OutputFile: out, Rows: sess.Len()}, err
		}
		log.Info("Debug report written", logging.F(logging.FieldOutputFile, opts.DebugReport))
	}

	totals, err := sess.Totals()
	logTotals(log, totals, err)

	return Result{Report: report, OutputFile: out, Rows: sess.Len()}, nil
}

func logTotals(log logging.Logger, totals []session.Total, err error) {
	if err != nil {
		log.WithError(err).Warn("Failed to compute totals")
		return
	}
	for _, t := range totals {
		log.Info("Total", logging.F("currency", t.Currency), logging.F(logging.FieldCount, t.Count), logging.F("amount", t.Formatted))
	}
}

// LogReport logs one line per document that was not accumulated, then a summary.
func LogReport(log logging.Logger, report batch.Report) {
	for _, o := range report.Outcomes {
		if o.Status == batch.StatusMatched {
			continue
		}
		log.Warn("Document not accumulated",
			logging.F(logging.FieldDocument, o.Name),
			logging.F(logging.FieldStatus, string(o.Status)),
			logging.F(logging.FieldReason, o.Error()))
	}
	log.Info("Processing summary",
		logging.F(string(batch.StatusMatched), report.Count(batch.StatusMatched)),
		logging.F(string(batch.StatusNoMatch), report.Count(batch.StatusNoMatch)),
		logging.F(string(batch.StatusEmpty), report.Count(batch.StatusEmpty)),
		logging.F(string(batch.StatusIncomplete), report.Count(batch.StatusIncomplete)),
		logging.F(string(batch.StatusFailed), report.Count(batch.StatusFailed)))
}

// rejected is a document that fails as soon as it is opened, so it still
// shows up in the report.
func rejected(path string, err error) batch.Document {
	return batch.Document{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return nil, err },
	}
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	default:
		return ""
	}
}
