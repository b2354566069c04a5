package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	landscapeWidth = 277.0
	firstColumns   = 2
	firstColWidth  = 32.0
)

// PDFExporter renders datasets into a landscape A4 table. The core fonts only cover Latin-1, so
// every cell passes through Transliterate when it is set.
type PDFExporter struct {
	Transliterate func(string) string
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(transliterate func(string) string) *PDFExporter {
	return &PDFExporter{Transliterate: transliterate}
}

func (e *PDFExporter) text(value string) string {
	if e.Transliterate == nil {
		return value
	}
	return e.Transliterate(value)
}

// columnWidths gives the leading label columns a fixed width and shares the rest evenly.
func columnWidths(n int) []float64 {
	widths := make([]float64, n)
	lead := firstColumns
	if n <= lead {
		lead = 0
	}
	rest := landscapeWidth - float64(lead)*firstColWidth
	for i := range widths {
		if i < lead {
			widths[i] = firstColWidth
			continue
		}
		widths[i] = rest / float64(n-lead)
	}
	return widths
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	widths := columnWidths(len(data.Headers))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(37, 99, 235)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, e.text(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, e.text(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
	header()

	row := func(values []string, style string, fill bool) {
		pdf.SetFont("Arial", style, 8)
		for i, value := range values {
			align := "C"
			if i < firstColumns {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, e.text(value), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	for _, r := range data.Rows {
		row(data.record(r), "", false)
	}
	if data.Footer != nil {
		pdf.SetFillColor(239, 246, 255)
		row(data.record(data.Footer), "B", true)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
