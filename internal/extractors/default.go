package extractors

import (
	"github.com/custodia-labs/resume-warehouse/internal/extractors/docx"
	"github.com/custodia-labs/resume-warehouse/internal/extractors/html"
	"github.com/custodia-labs/resume-warehouse/internal/extractors/markdown"
	"github.com/custodia-labs/resume-warehouse/internal/extractors/pdf"
	"github.com/custodia-labs/resume-warehouse/internal/extractors/plaintext"
)

// Default returns a registry with every built-in extractor.
func Default() *Registry {
	return NewRegistry(
		pdf.New(),
		docx.New(),
		plaintext.New(),
		markdown.New(),
		html.New(),
	)
}
