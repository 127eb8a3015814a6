// Package html extracts text from HTML resumes, such as exported
// profile pages or resumes saved from a web browser.
package html

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const (
	noiseSelector = "script, style, noscript, template, nav, iframe, svg"
	blockSelector = "p, div, section, article, header, footer, li, ul, ol, dl, dt, dd, " +
		"h1, h2, h3, h4, h5, h6, tr, table, blockquote, pre, address"
	cellSelector = "td, th"
)

// Extractor reads .html files.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract returns the visible text of the page, one block per line.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", domain.ErrExtractionFailed, path, err)
	}

	text := extractText(doc)
	if text == "" {
		return "", fmt.Errorf("%w: %s has no visible text", domain.ErrExtractionFailed, path)
	}
	return text, nil
}

func extractText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	// Mark block boundaries so Text() keeps the line structure.
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})
	doc.Find(cellSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return cleanWhitespace(root.Text())
}

// cleanWhitespace collapses runs of spaces within lines and drops blank lines.
func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
