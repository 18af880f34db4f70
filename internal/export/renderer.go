package export

import (
	"fmt"
	"io"
	"strings"
)

// Format names an export document type.
type Format string

const (
	// FormatPDF is the flat page-based format.
	FormatPDF Format = "pdf"
	// FormatDOCX is the paginated word-processor format.
	FormatDOCX Format = "docx"
)

// ParseFormat accepts a format name in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatPDF, FormatDOCX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Renderer writes a complete document for a list of items.
type Renderer interface {
	Format() Format
	ContentType() string
	// Extension includes the leading dot.
	Extension() string
	Render(w io.Writer, items []Item) error
}

// Options tunes the built-in renderers.
type Options struct {
	// PDFFontPath points at a TTF registered as a UTF-8 font. When empty
	// the PDF uses a core font and only cp1252 text renders.
	PDFFontPath string
	// Title is stored in the PDF document metadata.
	Title string
}

// Registry resolves renderers by format.
type Registry struct {
	renderers map[Format]Renderer
}

// NewRegistry returns a registry holding the PDF and DOCX renderers.
func NewRegistry(opts Options) *Registry {
	r := &Registry{renderers: make(map[Format]Renderer)}
	r.Register(NewPDF(opts))
	r.Register(NewDOCX(opts))
	return r
}

// Register adds or replaces the renderer for its format.
func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Format()] = renderer
}

// Lookup returns the renderer for f.
func (r *Registry) Lookup(f Format) (Renderer, error) {
	renderer, ok := r.renderers[f]
	if !ok {
		return nil, fmt.Errorf("no renderer for format %s", f)
	}
	return renderer, nil
}
