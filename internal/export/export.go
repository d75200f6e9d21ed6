// Package export converts downloaded CSV reports into other formats. PDF
// reports are rendered by the server and only passed through.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"

	defaultSheet = "Sheet1"
)

// ErrNotPDF is returned when a pdf is requested from a download that is not one.
var ErrNotPDF = errors.New("pdf is only available for your own timesheets; use csv or xlsx")

// ParseFormat accepts csv, xlsx or pdf, case-insensitively.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Filename swaps the extension of name for format.
func Filename(name, format string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
}

// CSVToXLSX writes every CSV record as a row of a single sheet. The first
// record is treated as the header.
func CSVToXLSX(data []byte, sheet string) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	widths := map[int]int{}
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
			if len(v) > widths[j] {
				widths[j] = len(v)
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(records) > 0 && len(records[0]) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(records[0]), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		// wide enough for the content, capped for long free text
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, 60))); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// Convert returns data in format along with the matching filename.
func Convert(data []byte, filename, format string) ([]byte, string, error) {
	switch format {
	case FormatXLSX:
		out, err := CSVToXLSX(data, "Timesheets")
		if err != nil {
			return nil, "", err
		}
		return out, Filename(filename, FormatXLSX), nil
	case FormatPDF:
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return nil, "", ErrNotPDF
		}
		return data, Filename(filename, FormatPDF), nil
	default:
		return data, filename, nil
	}
}
