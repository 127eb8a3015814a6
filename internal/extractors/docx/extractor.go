// Package docx extracts text from Word (.docx) resumes.
//
// A .docx file is a ZIP archive; the body lives in word/document.xml.
// Paragraph text comes first, followed by the text of every table cell,
// one non-empty chunk per line.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor reads .docx files.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the paragraph and table text of the document.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", domain.ErrExtractionFailed, path, err)
	}
	defer reader.Close()

	content, err := readDocumentXML(&reader.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailed, path, err)
	}

	text, err := parseDocumentXML(content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailed, path, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: %s has no text", domain.ErrExtractionFailed, path)
	}
	return text, nil
}

// readDocumentXML returns the raw contents of word/document.xml.
func readDocumentXML(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", documentPart)
}

// documentXML represents the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
			Tables     []table     `xml:"tbl"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type paragraph struct {
	Runs       []run `xml:"r"`
	Hyperlinks []struct {
		Runs []run `xml:"r"`
	} `xml:"hyperlink"`
}

type run struct {
	Text []textElement `xml:"t"`
	Tabs []struct{}    `xml:"tab"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func (p paragraph) text() string {
	var sb strings.Builder
	write := func(runs []run) {
		for _, r := range runs {
			if len(r.Tabs) > 0 && sb.Len() > 0 {
				sb.WriteString(" ")
			}
			for _, t := range r.Text {
				sb.WriteString(t.Content)
			}
		}
	}
	write(p.Runs)
	for _, h := range p.Hyperlinks {
		write(h.Runs)
	}
	return strings.TrimSpace(sb.String())
}

// cellTexts walks a table row by row, recursing into nested tables.
func (t table) cellTexts() []string {
	var out []string
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			parts := make([]string, 0, len(cell.Paragraphs))
			for _, para := range cell.Paragraphs {
				if s := para.text(); s != "" {
					parts = append(parts, s)
				}
			}
			if s := strings.Join(parts, " "); s != "" {
				out = append(out, s)
			}
			for _, nested := range cell.Tables {
				out = append(out, nested.cellTexts()...)
			}
		}
	}
	return out
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPart, err)
	}

	var lines []string
	for _, para := range doc.Body.Paragraphs {
		if s := para.text(); s != "" {
			lines = append(lines, s)
		}
	}
	for _, tbl := range doc.Body.Tables {
		lines = append(lines, tbl.cellTexts()...)
	}

	return strings.Join(lines, "\n"), nil
}
