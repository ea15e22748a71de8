package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Renderer turns a summary into a document of one format.
type Renderer interface {
	Format() string
	Render(w io.Writer, s Summary) error
}

// PDF renders an A4 report with a grid table.
type PDF struct {
	// Compress enables stream compression. Off keeps the content stream
	// greppable.
	Compress bool
}

func (PDF) Format() string { return "pdf" }

func (r PDF) Render(w io.Writer, s Summary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(Title, true)
	pdf.SetCreator("heartcheck", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	const (
		featureW = 60.0
		valueW   = 70.0
		rowH     = 7.0
	)
	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.2)
	pdf.SetFillColor(211, 211, 211)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(featureW, rowH, "Feature", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueW, rowH, "Value", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range s.Table {
		pdf.CellFormat(featureW, rowH, tr(row.Feature), "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, rowH, tr(row.Value), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	closing := []Row{
		{Feature: "Prediction:", Value: s.Prediction},
		{Feature: "Confidence:", Value: s.Confidence},
	}
	for _, line := range closing {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(28, rowH, line.Feature, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, rowH, tr(line.Value), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
