package timesheet

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const PDFContentType = "application/pdf"

type pdfColumn struct {
	title string
	width float64
	value func(Timesheet) string
}

var pdfColumns = []pdfColumn{
	{"Date", 24, Timesheet.Day},
	{"Planned Work", 70, func(t Timesheet) string { return t.PlannedWork }},
	{"Actual Work", 70, func(t Timesheet) string { return t.ActualWork }},
	{"Remarks", 50, func(t Timesheet) string { return t.Remarks }},
	{"Status", 22, func(t Timesheet) string { return string(t.Status) }},
	{"Admin Comments", 41, func(t Timesheet) string { return t.AdminComments }},
}

// EncodePDF renders timesheets as a landscape A4 table, one row per entry.
// Long cells are cut to the first line that fits the column.
func EncodePDF(title string, items []Timesheet) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(items) == 0 {
		pdf.CellFormat(0, 7, "No timesheets found.", "1", 1, "L", false, 0, "")
	}
	for _, t := range items {
		for _, c := range pdfColumns {
			text := tr(c.value(t))
			if lines := pdf.SplitText(text, c.width-2); len(lines) > 0 {
				text = lines[0]
			}
			pdf.CellFormat(c.width, 7, text, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
