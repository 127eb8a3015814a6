package driven

import "context"

// TextExtractor reads plain text out of a resume file.
// Each extractor handles specific file extensions (e.g. ".pdf", ".docx").
type TextExtractor interface {
	// Extensions returns the lower-case file extensions handled, including the dot.
	Extensions() []string

	// Extract returns the text content of the file at path.
	// Returns domain.ErrExtractionFailed when no text could be read.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects a TextExtractor for a file.
type ExtractorRegistry interface {
	// Register adds an extractor for its extensions.
	Register(e TextExtractor)

	// For returns the extractor for path.
	// Returns domain.ErrUnsupportedType when no extractor matches.
	For(path string) (TextExtractor, error)

	// Supports reports whether any extractor handles path.
	Supports(path string) bool
}
