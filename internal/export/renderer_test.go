package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quizbank/pkg/domain"
)

func sampleItems() []Item {
	return Layout([]domain.Record{
		{Question: "What is 2+2?", Option1: "3", Option2: "4", Option3: "5"},
		{Question: "Is 1 < 2 & 3 > 2?"},
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"pdf": FormatPDF, ".PDF": FormatPDF, " docx ": FormatDOCX} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("odt")
	require.Error(t, err)
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(Options{})
	pdf, err := reg.Lookup(FormatPDF)
	require.NoError(t, err)
	require.Equal(t, ".pdf", pdf.Extension())
	require.Equal(t, "application/pdf", pdf.ContentType())

	docx, err := reg.Lookup(FormatDOCX)
	require.NoError(t, err)
	require.Equal(t, ".docx", docx.Extension())

	_, err = reg.Lookup(Format("odt"))
	require.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDF(Options{Title: "Sheet"}).Render(&buf, sampleItems()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	require.Contains(t, buf.String(), "%%EOF")
}

func TestPDFRenderEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDF(Options{}).Render(&buf, nil))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFRenderMissingFontFails(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDF(Options{PDFFontPath: filepath.Join(t.TempDir(), "missing.ttf")}).Render(&buf, sampleItems())
	require.Error(t, err)
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

// docxParagraphs returns the text of every body paragraph in order.
func docxParagraphs(t *testing.T, data []byte) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(readZipPart(t, data, "word/document.xml")))
	var (
		paras   []string
		current *strings.Builder
		inText  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return paras
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				current = &strings.Builder{}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				paras = append(paras, current.String())
				current = nil
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && current != nil {
				current.Write(el)
			}
		}
	}
}

func TestDOCXRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDOCX(Options{Title: "Q & A"}).Render(&buf, sampleItems()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	require.Equal(t, []string{
		"1. What is 2+2?",
		"A) 3    B) 4    C) 5",
		"",
		"2. Is 1 < 2 & 3 > 2?",
		"",
	}, docxParagraphs(t, buf.Bytes()))
	require.Contains(t, readZipPart(t, buf.Bytes(), "word/document.xml"), "1 &lt; 2 &amp; 3")
	require.Contains(t, readZipPart(t, buf.Bytes(), "[Content_Types].xml"), "/word/document.xml")
}

func TestDOCXRenderEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDOCX(Options{}).Render(&buf, nil))
	require.Empty(t, docxParagraphs(t, buf.Bytes()))
}
