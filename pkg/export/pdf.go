package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders an A4 portrait table with a bold header and footer row.
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

func (PDF) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	if t.Title != "" {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
		doc.Ln(3)
	}

	width := 190.0 / float64(len(t.Columns))
	row := func(cells []string, style string, height float64) {
		doc.SetFont("Helvetica", style, 9)
		for _, cell := range cells {
			doc.CellFormat(width, height, tr(cell), "1", 0, "L", style == "B", 0, "")
		}
		doc.Ln(-1)
	}

	doc.SetFillColor(235, 235, 235)
	row(t.Columns, "B", 8)
	for _, r := range t.Rows {
		row(r, "", 7)
	}
	if len(t.Footer) > 0 {
		footer := make([]string, len(t.Columns))
		copy(footer, t.Footer)
		row(footer, "B", 8)
	}

	buf := &bytes.Buffer{}
	if err := doc.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
