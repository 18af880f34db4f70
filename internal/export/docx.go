package export

import (
	"fmt"
	"io"

	"github.com/gomutex/godocx"
)

// DOCX renders one paragraph per line and an empty paragraph as the
// spacer after each item.
type DOCX struct{}

// NewDOCX returns the DOCX renderer. The document is built from the
// library's default template, so Options only affect the PDF.
func NewDOCX(Options) *DOCX {
	return &DOCX{}
}

func (d *DOCX) Format() Format { return FormatDOCX }

func (d *DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (d *DOCX) Extension() string { return ".docx" }

// Render writes the package to w.
func (d *DOCX) Render(w io.Writer, items []Item) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new docx document: %w", err)
	}
	defer func() { _ = doc.Close() }()

	for _, line := range Lines(items) {
		if line == "" {
			doc.AddEmptyParagraph()
			continue
		}
		doc.AddParagraph(line)
	}
	return doc.Write(w)
}
