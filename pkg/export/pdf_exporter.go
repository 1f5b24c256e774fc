package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFLayout positions a simple vertical text document. Units are millimetres.
type PDFLayout struct {
	FontSize   float64
	Left       float64
	TitleY     float64
	FirstLineY float64
	LineStep   float64
	// BottomLimit is the lowest baseline allowed before a new page starts.
	BottomLimit float64
	Compress    bool
}

// DefaultPDFLayout places the title at 10mm and lines every 10mm from 20mm on A4.
func DefaultPDFLayout() PDFLayout {
	return PDFLayout{
		FontSize:    12,
		Left:        10,
		TitleY:      10,
		FirstLineY:  20,
		LineStep:    10,
		BottomLimit: 287,
		Compress:    true,
	}
}

// PDFExporter renders a title followed by one text line per entry.
type PDFExporter struct {
	layout PDFLayout
}

// NewPDFExporter constructs a PDF exporter with the given layout.
func NewPDFExporter(layout PDFLayout) *PDFExporter {
	def := DefaultPDFLayout()
	if layout.FontSize <= 0 {
		layout.FontSize = def.FontSize
	}
	if layout.LineStep <= 0 {
		layout.LineStep = def.LineStep
	}
	if layout.BottomLimit <= layout.FirstLineY {
		layout.BottomLimit = def.BottomLimit
	}
	return &PDFExporter{layout: layout}
}

// Pages reports how many pages lineCount lines occupy.
func (e *PDFExporter) Pages(lineCount int) int {
	perPage := e.linesPerPage()
	if lineCount <= 0 {
		return 1
	}
	return (lineCount + perPage - 1) / perPage
}

// Render lays out the title and lines, starting a new page whenever the next line
// would pass the bottom limit.
func (e *PDFExporter) Render(title string, lines []string) ([]byte, error) {
	l := e.layout
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(l.Compress)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "", l.FontSize)
	pdf.AddPage()
	pdf.Text(l.Left, l.TitleY, tr(title))

	perPage := e.linesPerPage()
	for i, line := range lines {
		slot := i % perPage
		if i > 0 && slot == 0 {
			pdf.AddPage()
		}
		pdf.Text(l.Left, l.FirstLineY+float64(slot)*l.LineStep, tr(line))
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) linesPerPage() int {
	l := e.layout
	n := int((l.BottomLimit-l.FirstLineY)/l.LineStep) + 1
	if n < 1 {
		return 1
	}
	return n
}
