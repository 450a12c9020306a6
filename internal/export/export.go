// Package export renders accumulated invoices as a spreadsheet.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/invoice-extract/internal/dateutils"
	"fjacquet/invoice-extract/internal/models"
)

// DefaultFileName is the fixed name of the aggregate download.
const DefaultFileName = "aggregated_invoices.xlsx"

// Column order is fixed.
var (
	headersEN = []string{"Filename", "Invoice Number", "Date", "Amount", "Client", "Issuer"}
	headersFR = []string{"Nom du fichier", "Numéro de facture", "Date de facturation", "Montant total", "Nom du client", "Nom du vendeur"}
)

// Options control how records are rendered.
type Options struct {
	SheetName    string
	AbsentMarker string
	// HeaderLocale is "en" or "fr".
	HeaderLocale string
	Delimiter    rune
}

// DefaultOptions returns the rendering used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SheetName:    "Invoices",
		AbsentMarker: "N/A",
		HeaderLocale: "en",
		Delimiter:    ',',
	}
}

// Headers returns the header row for a locale; unknown locales get English.
func Headers(locale string) []string {
	if strings.EqualFold(locale, "fr") {
		return append([]string(nil), headersFR...)
	}
	return append([]string(nil), headersEN...)
}

// Record is the flat, string form of one exported row.
type Record struct {
	Filename      string `csv:"filename"`
	InvoiceNumber string `csv:"invoice_number"`
	Date          string `csv:"date"`
	Amount        string `csv:"amount"`
	Client        string `csv:"client"`
	Issuer        string `csv:"issuer"`
}

// ToRecord renders an invoice; absent fields become marker.
func ToRecord(inv models.Invoice, marker string) Record {
	r := Record{
		Filename:      inv.SourceFile,
		InvoiceNumber: marker,
		Date:          marker,
		Amount:        marker,
		Client:        marker,
		Issuer:        marker,
	}
	if inv.InvoiceNumber != nil {
		r.InvoiceNumber = *inv.InvoiceNumber
	}
	if inv.Date != nil {
		r.Date = dateutils.ToISODate(*inv.Date)
	}
	if inv.Amount != nil {
		r.Amount = inv.Amount.StringFixed(amountPlaces(*inv.Amount))
	}
	if inv.Client != nil {
		r.Client = *inv.Client
	}
	if inv.Issuer != nil {
		r.Issuer = *inv.Issuer
	}
	return r
}

// amountPlaces is at least two, more when the amount carries more digits.
func amountPlaces(d decimal.Decimal) int32 {
	if places := -d.Exponent(); places > 2 {
		return places
	}
	return 2
}

// Values returns the record's cells in column order.
func (r Record) Values() []string {
	return []string{r.Filename, r.InvoiceNumber, r.Date, r.Amount, r.Client, r.Issuer}
}

// Row renders an invoice as cells in column order.
func Row(inv models.Invoice, opts Options) []string {
	return ToRecord(inv, opts.AbsentMarker).Values()
}

// ToInvoice parses a record back; cells equal to marker (or empty) are absent.
func (r Record) ToInvoice(marker string) (models.Invoice, error) {
	present := func(s string) bool { return s != "" && s != marker }

	b := models.NewInvoiceBuilder(r.Filename)
	if present(r.InvoiceNumber) {
		b.WithInvoiceNumber(r.InvoiceNumber)
	}
	if present(r.Date) {
		d, _, err := dateutils.ParseDate(r.Date, dateutils.DateLayoutISO)
		if err != nil {
			return models.Invoice{}, fmt.Errorf("row %s: %w", r.Filename, err)
		}
		b.WithDate(d)
	}
	if present(r.Amount) {
		a, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return models.Invoice{}, fmt.Errorf("row %s: invalid amount %q: %w", r.Filename, r.Amount, err)
		}
		b.WithAmount(a)
	}
	if present(r.Client) {
		b.WithClient(r.Client)
	}
	if present(r.Issuer) {
		b.WithIssuer(r.Issuer)
	}
	return b.Build(), nil
}

func recordFromCells(cells []string) Record {
	padded := make([]string, len(headersEN))
	copy(padded, cells)
	return Record{
		Filename:      padded[0],
		InvoiceNumber: padded[1],
		Date:          padded[2],
		Amount:        padded[3],
		Client:        padded[4],
		Issuer:        padded[5],
	}
}

func checkHeader(cells []string) error {
	for _, want := range [][]string{headersEN, headersFR} {
		if len(cells) >= len(want) && equalFold(cells[:len(want)], want) {
			return nil
		}
	}
	return fmt.Errorf("unexpected header row: %v", cells)
}

func equalFold(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(strings.TrimSpace(a[i]), b[i]) {
			return false
		}
	}
	return true
}

// Encoder turns invoices into a downloadable document.
type Encoder interface {
	Encode(invoices []models.Invoice) ([]byte, error)
	ContentType() string
	Extension() string
}

// NewEncoder returns the encoder for format "xlsx" or "csv".
func NewEncoder(format string, opts Options) (Encoder, error) {
	switch strings.ToLower(format) {
	case "", "xlsx":
		return XLSXEncoder{Options: opts}, nil
	case "csv":
		return CSVEncoder{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// FileName returns base with the encoder's extension.
func FileName(base string, enc Encoder) string {
	if base == "" {
		base = DefaultFileName
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + enc.Extension()
}
