package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fjacquet/invoice-extract/internal/models"
)

const amountColumn = 4

// XLSXEncoder writes one worksheet with a header row and one row per invoice.
type XLSXEncoder struct {
	Options Options
}

func (e XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e XLSXEncoder) Extension() string { return ".xlsx" }

// Encode implements Encoder.
func (e XLSXEncoder) Encode(invoices []models.Invoice) ([]byte, error) {
	return EncodeXLSX(invoices, e.Options)
}

// EncodeXLSX renders invoices as an XLSX workbook. Amounts are numeric cells,
// dates are ISO strings, absent fields hold the absent marker.
func EncodeXLSX(invoices []models.Invoice, opts Options) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultOptions().SheetName
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	amountStyles := make(map[int32]int)
	amountStyle := func(places int32) (int, error) {
		if id, ok := amountStyles[places]; ok {
			return id, nil
		}
		style := &excelize.Style{NumFmt: 2}
		if places > 2 {
			format := "0." + strings.Repeat("0", int(places))
			style = &excelize.Style{CustomNumFmt: &format}
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return 0, err
		}
		amountStyles[places] = id
		return id, nil
	}

	headers := Headers(opts.HeaderLocale)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("xlsx header style: %w", err)
	}

	for i, inv := range invoices {
		row := i + 2
		for col, v := range Row(inv, opts) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			var value any = v
			if col+1 == amountColumn && inv.Amount != nil {
				value = amountCell(*inv.Amount, v)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("xlsx row %d: %w", row, err)
			}
		}
		if inv.Amount != nil {
			style, err := amountStyle(amountPlaces(*inv.Amount))
			if err != nil {
				return nil, fmt.Errorf("xlsx style: %w", err)
			}
			cell, _ := excelize.CoordinatesToCellName(amountColumn, row)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return nil, fmt.Errorf("xlsx amount style: %w", err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // filename
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 14) // amount
	_ = f.SetColWidth(sheet, "E", "F", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// amountCell is the amount as a number, or as its text when a float64 would
// not hold it exactly.
func amountCell(amount decimal.Decimal, text string) any {
	f := amount.InexactFloat64()
	if !decimal.NewFromFloat(f).Equal(amount) {
		return text
	}
	return f
}

// DecodeXLSX reads invoices back from a workbook written by EncodeXLSX.
// Only the six exported columns survive the round trip.
func DecodeXLSX(data []byte, opts Options) ([]models.Invoice, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]
	if opts.SheetName != "" {
		if idx, _ := f.GetSheetIndex(opts.SheetName); idx >= 0 {
			sheet = opts.SheetName
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx sheet %s is empty", sheet)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	invoices := make([]models.Invoice, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		inv, err := recordFromCells(cells).ToInvoice(opts.AbsentMarker)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
