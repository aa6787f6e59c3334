package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// Supported report formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// NewEncoder returns the encoder for a configured format. Empty means CSV.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case FormatCSV, "":
		return CSVEncoder{}, nil
	case FormatXLSX:
		return XLSXEncoder{Sheet: "Report"}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}

// CSVEncoder writes a header row and one comma-separated row per item
type CSVEncoder struct{}

func (CSVEncoder) Extension() string   { return FormatCSV }
func (CSVEncoder) ContentType() string { return "text/csv; charset=utf-8" }

// Encode renders rows as UTF-8 CSV with no index column
func (CSVEncoder) Encode(rows []domain.ReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(domain.Columns()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row.Values()); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// XLSXEncoder writes the same table into a single worksheet
type XLSXEncoder struct {
	Sheet string
}

func (XLSXEncoder) Extension() string { return FormatXLSX }
func (XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Encode renders rows into an XLSX workbook
func (e XLSXEncoder) Encode(rows []domain.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.Sheet
	if sheet == "" {
		sheet = "Report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellStr(sheet, cell, v)
	}

	for i, h := range domain.Columns() {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("write xlsx header: %w", err)
		}
	}
	for r, row := range rows {
		for c, v := range row.Values() {
			if err := write(c+1, r+2, v); err != nil {
				return nil, fmt.Errorf("write xlsx row %d: %w", r, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
