package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gocarina/gocsv"

	"fjacquet/invoice-extract/internal/models"
)

// CSVEncoder writes the same columns as the workbook as delimited text.
type CSVEncoder struct {
	Options Options
}

func (e CSVEncoder) ContentType() string { return "text/csv; charset=utf-8" }

func (e CSVEncoder) Extension() string { return ".csv" }

// Encode implements Encoder.
func (e CSVEncoder) Encode(invoices []models.Invoice) ([]byte, error) {
	return EncodeCSV(invoices, e.Options)
}

func delimiter(opts Options) rune {
	if opts.Delimiter == 0 {
		return ','
	}
	return opts.Delimiter
}

// EncodeCSV renders invoices as CSV with a localized header row.
func EncodeCSV(invoices []models.Invoice, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter(opts)

	if err := w.Write(Headers(opts.HeaderLocale)); err != nil {
		return nil, fmt.Errorf("error writing CSV header: %w", err)
	}
	w.Flush()

	records := make([]Record, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, ToRecord(inv, opts.AbsentMarker))
	}
	if len(records) > 0 {
		if err := gocsv.MarshalCSVWithoutHeaders(records, gocsv.NewSafeCSVWriter(w)); err != nil {
			return nil, fmt.Errorf("error writing CSV data: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeCSV reads invoices back from EncodeCSV output.
func DecodeCSV(data []byte, opts Options) ([]models.Invoice, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter(opts)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []Record
	if err := gocsv.UnmarshalCSVWithoutHeaders(r, &records); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}

	invoices := make([]models.Invoice, 0, len(records))
	for _, rec := range records {
		inv, err := rec.ToInvoice(opts.AbsentMarker)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
