package export

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 15.0
	pdfFontSize   = 12.0
	pdfLineHeight = 8.0
	pdfSpacer     = 4.0
	pdfCoreFont   = "Helvetica"
	pdfUTF8Font   = "Body"
)

// PDF renders A4 portrait pages with automatic page breaks.
type PDF struct {
	fontPath string
	title    string
}

// NewPDF returns the PDF renderer.
func NewPDF(opts Options) *PDF {
	return &PDF{fontPath: opts.PDFFontPath, title: opts.Title}
}

func (p *PDF) Format() Format { return FormatPDF }

func (p *PDF) ContentType() string { return "application/pdf" }

func (p *PDF) Extension() string { return ".pdf" }

// Render writes the document to w.
func (p *PDF) Render(w io.Writer, items []Item) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.SetCreator("quizbank", true)
	if p.title != "" {
		doc.SetTitle(p.title, true)
	}

	translate := func(s string) string { return s }
	if p.fontPath != "" {
		doc.AddUTF8Font(pdfUTF8Font, "", p.fontPath)
		doc.SetFont(pdfUTF8Font, "", pdfFontSize)
	} else {
		translate = doc.UnicodeTranslatorFromDescriptor("")
		doc.SetFont(pdfCoreFont, "", pdfFontSize)
	}
	doc.AddPage()

	for _, it := range items {
		doc.MultiCell(0, pdfLineHeight, translate(it.Heading()), "", "", false)
		if line := it.OptionsLine(); line != "" {
			doc.MultiCell(0, pdfLineHeight, translate(line), "", "", false)
		}
		doc.Ln(pdfSpacer)
	}
	if err := doc.Error(); err != nil {
		return err
	}
	return doc.Output(w)
}
